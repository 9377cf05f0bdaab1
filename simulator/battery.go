package simulator

import (
	"math"
	"sync"
	"time"

	"github.com/kilianp07/powermanager/core/model"
)

// Battery models a stationary battery with charge/discharge limits.
type Battery struct {
	ID             uint64
	CapacityWh     float64 // total capacity
	Soc            float64 // state of charge [0,1]
	ChargeRateW    float64 // maximum charging power
	DischargeRateW float64 // maximum discharging power
	// ExclusionW is the magnitude of the band around zero the battery
	// cannot operate in.
	ExclusionW float64
	mu         sync.Mutex
}

// ApplyPower updates the SoC according to the requested power and duration.
// Positive power means discharge, negative means charging.
// It returns the actual power applied after enforcing limits.
func (b *Battery) ApplyPower(powerW float64, dt time.Duration) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	hours := dt.Hours()
	if hours <= 0 {
		return 0
	}

	actual := powerW
	if powerW > 0 { // discharge
		if powerW > b.DischargeRateW {
			actual = b.DischargeRateW
		}
		maxEnergy := b.Soc * b.CapacityWh
		needed := actual * hours
		if needed > maxEnergy {
			needed = maxEnergy
			actual = needed / hours
		}
		b.Soc -= needed / b.CapacityWh
	} else if powerW < 0 { // charge
		p := math.Abs(powerW)
		if p > b.ChargeRateW {
			p = b.ChargeRateW
		}
		avail := (1 - b.Soc) * b.CapacityWh
		needed := p * hours
		if needed > avail {
			needed = avail
			p = needed / hours
		}
		b.Soc += needed / b.CapacityWh
		actual = -p
	}

	b.Soc = math.Min(math.Max(b.Soc, 0), 1)
	return actual
}

// SoC returns the state of charge.
func (b *Battery) SoC() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.Soc
}

// Bounds returns the power the battery can take given its SoC.
func (b *Battery) Bounds() (inclusion, exclusion model.Bounds) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Soc < 1 {
		inclusion.Lower = -b.ChargeRateW
	}
	if b.Soc > 0 {
		inclusion.Upper = b.DischargeRateW
	}
	return inclusion, model.Bounds{Lower: -b.ExclusionW, Upper: b.ExclusionW}
}

// Inverter connects a battery to the grid and limits its power.
type Inverter struct {
	ID         uint64
	RatedW     float64
	ExclusionW float64
}

// Bounds returns the active power limits of the inverter.
func (i Inverter) Bounds() (inclusion, exclusion model.Bounds) {
	return model.Bounds{Lower: -i.RatedW, Upper: i.RatedW},
		model.Bounds{Lower: -i.ExclusionW, Upper: i.ExclusionW}
}
