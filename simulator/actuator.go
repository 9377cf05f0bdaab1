package simulator

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/powermanager/core/model"
	"github.com/kilianp07/powermanager/infra/logger"
)

// Actuator applies actuation requests to the pool.
type Actuator struct {
	pool *Pool
	step time.Duration
	log  logger.Logger
}

// NewActuator creates an actuator applying every request for step.
func NewActuator(pool *Pool, step time.Duration, log logger.Logger) *Actuator {
	if step <= 0 {
		step = time.Second
	}
	return &Actuator{pool: pool, step: step, log: log}
}

// Distribute applies req to the batteries of its group. Unless AdjustPower is
// set, a power outside the group bounds is rejected.
func (a *Actuator) Distribute(ctx context.Context, req model.Request) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	bounds, err := a.pool.Bounds(req.Group)
	if err != nil {
		return err
	}
	power := req.Power
	if !bounds.Inclusion.Contains(power) {
		if !req.AdjustPower {
			return fmt.Errorf("simulator: power %.1f W outside [%.1f, %.1f]", power, bounds.Inclusion.Lower, bounds.Inclusion.Upper)
		}
		power = bounds.Inclusion.Clamp(power)
	}
	applied, err := a.pool.Apply(req.Group, power, a.step)
	if err != nil {
		return err
	}
	a.log.Debugw("request applied", map[string]any{
		"group":     req.Group.Key(),
		"requested": req.Power,
		"applied":   applied,
	})
	return nil
}
