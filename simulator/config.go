package simulator

import (
	"fmt"
	"time"
)

// InverterConfig describes one simulated inverter.
type InverterConfig struct {
	ID         uint64  `json:"id"`
	RatedW     float64 `json:"rated_w"`
	ExclusionW float64 `json:"exclusion_w"`
}

// BatteryConfig describes one simulated battery and its inverters.
type BatteryConfig struct {
	ID             uint64           `json:"id"`
	CapacityWh     float64          `json:"capacity_wh"`
	Soc            float64          `json:"soc"`
	ChargeRateW    float64          `json:"charge_rate_w"`
	DischargeRateW float64          `json:"discharge_rate_w"`
	ExclusionW     float64          `json:"exclusion_w"`
	Inverters      []InverterConfig `json:"inverters"`
}

// Config holds parameters for the simulator.
type Config struct {
	Batteries []BatteryConfig `json:"batteries"`
	// IntervalMS is the period of bounds updates.
	IntervalMS int `json:"interval_ms"`
	// StepMS is the duration an actuation request is applied for.
	StepMS int `json:"step_ms"`
}

// SetDefaults applies sane defaults. Without batteries three identical
// batteries with ids 1 to 3 are simulated.
func (c *Config) SetDefaults() {
	if len(c.Batteries) == 0 {
		for id := uint64(1); id <= 3; id++ {
			c.Batteries = append(c.Batteries, BatteryConfig{
				ID:             id,
				CapacityWh:     10000,
				Soc:            0.5,
				ChargeRateW:    5000,
				DischargeRateW: 5000,
				ExclusionW:     100,
				Inverters:      []InverterConfig{{ID: 100 + id, RatedW: 4000, ExclusionW: 50}},
			})
		}
	}
	if c.IntervalMS <= 0 {
		c.IntervalMS = 1000
	}
	if c.StepMS <= 0 {
		c.StepMS = c.IntervalMS
	}
}

// Validate checks the battery definitions.
func (c Config) Validate() error {
	seen := make(map[uint64]bool, len(c.Batteries))
	for _, b := range c.Batteries {
		if seen[b.ID] {
			return fmt.Errorf("simulator: duplicate battery %d", b.ID)
		}
		seen[b.ID] = true
		if b.CapacityWh <= 0 {
			return fmt.Errorf("simulator: battery %d capacity must be positive", b.ID)
		}
		if b.Soc < 0 || b.Soc > 1 {
			return fmt.Errorf("simulator: battery %d soc must be within [0,1]", b.ID)
		}
		if len(b.Inverters) == 0 {
			return fmt.Errorf("simulator: battery %d has no inverter", b.ID)
		}
	}
	return nil
}

// Interval returns the bounds update period.
func (c Config) Interval() time.Duration { return time.Duration(c.IntervalMS) * time.Millisecond }

// Step returns the duration an actuation request is applied for.
func (c Config) Step() time.Duration { return time.Duration(c.StepMS) * time.Millisecond }
