package simulator

import (
	"errors"
	"fmt"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/powermanager/core/model"
)

// ErrUnknownBattery is returned for groups naming a battery the pool does
// not simulate.
var ErrUnknownBattery = errors.New("simulator: unknown battery")

type pair struct {
	battery   *Battery
	inverters []Inverter
}

// Pool holds the simulated batteries and their inverters.
type Pool struct {
	pairs map[uint64]pair
	now   func() time.Time
}

// NewPool builds the pool described by cfg.
func NewPool(cfg Config) (*Pool, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Pool{pairs: make(map[uint64]pair, len(cfg.Batteries)), now: time.Now}
	for _, bc := range cfg.Batteries {
		invs := make([]Inverter, len(bc.Inverters))
		for i, ic := range bc.Inverters {
			invs[i] = Inverter{ID: ic.ID, RatedW: ic.RatedW, ExclusionW: ic.ExclusionW}
		}
		p.pairs[bc.ID] = pair{
			battery: &Battery{
				ID:             bc.ID,
				CapacityWh:     bc.CapacityWh,
				Soc:            bc.Soc,
				ChargeRateW:    bc.ChargeRateW,
				DischargeRateW: bc.DischargeRateW,
				ExclusionW:     bc.ExclusionW,
			},
			inverters: invs,
		}
	}
	return p, nil
}

// Battery returns the simulated battery with the given id.
func (p *Pool) Battery(id uint64) (*Battery, bool) {
	pr, ok := p.pairs[id]
	return pr.battery, ok
}

func (p *Pool) lookup(g model.BatteryGroup) ([]pair, error) {
	if g.IsZero() {
		return nil, model.ErrEmptyGroup
	}
	out := make([]pair, 0, g.Len())
	for _, id := range g.IDs() {
		pr, ok := p.pairs[id]
		if !ok {
			return nil, fmt.Errorf("%w %d", ErrUnknownBattery, id)
		}
		out = append(out, pr)
	}
	return out, nil
}

// Bounds aggregates the limits of the group. Each battery contributes what
// both it and its inverters allow; the exclusion band is the widest of the
// summed battery and summed inverter bands.
func (p *Pool) Bounds(g model.BatteryGroup) (model.PowerMetrics, error) {
	pairs, err := p.lookup(g)
	if err != nil {
		return model.PowerMetrics{}, err
	}
	var (
		inclLower, inclUpper       = make([]float64, len(pairs)), make([]float64, len(pairs))
		batExclLower, batExclUpper = make([]float64, len(pairs)), make([]float64, len(pairs))
		invExclLower, invExclUpper []float64
		invInclLower, invInclUpper []float64
	)
	for i, pr := range pairs {
		bIncl, bExcl := pr.battery.Bounds()
		invInclLower, invInclUpper = invInclLower[:0], invInclUpper[:0]
		for _, inv := range pr.inverters {
			iIncl, iExcl := inv.Bounds()
			invInclLower = append(invInclLower, iIncl.Lower)
			invInclUpper = append(invInclUpper, iIncl.Upper)
			invExclLower = append(invExclLower, iExcl.Lower)
			invExclUpper = append(invExclUpper, iExcl.Upper)
		}
		inclLower[i] = max(bIncl.Lower, floats.Sum(invInclLower))
		inclUpper[i] = min(bIncl.Upper, floats.Sum(invInclUpper))
		batExclLower[i], batExclUpper[i] = bExcl.Lower, bExcl.Upper
	}
	return model.PowerMetrics{
		Timestamp: p.now(),
		Inclusion: model.Bounds{Lower: floats.Sum(inclLower), Upper: floats.Sum(inclUpper)},
		Exclusion: model.Bounds{
			Lower: min(floats.Sum(batExclLower), floats.Sum(invExclLower)),
			Upper: max(floats.Sum(batExclUpper), floats.Sum(invExclUpper)),
		},
	}, nil
}

// Apply splits power equally across the batteries of the group for dt and
// returns the power actually applied.
func (p *Pool) Apply(g model.BatteryGroup, power float64, dt time.Duration) (float64, error) {
	pairs, err := p.lookup(g)
	if err != nil {
		return 0, err
	}
	share := power / float64(len(pairs))
	applied := make([]float64, len(pairs))
	for i, pr := range pairs {
		applied[i] = pr.battery.ApplyPower(share, dt)
	}
	return floats.Sum(applied), nil
}
