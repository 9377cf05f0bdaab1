package simulator

import (
	"context"
	"time"

	"github.com/kilianp07/powermanager/core/model"
	"github.com/kilianp07/powermanager/infra/logger"
)

// Source publishes the pool bounds of a group on every tick.
type Source struct {
	pool     *Pool
	interval time.Duration
	log      logger.Logger
}

// NewSource creates a bounds source for pool.
func NewSource(pool *Pool, interval time.Duration, log logger.Logger) *Source {
	if interval <= 0 {
		interval = time.Second
	}
	return &Source{pool: pool, interval: interval, log: log}
}

// Subscribe sends the current bounds of g immediately and then once per
// interval until ctx is done.
func (s *Source) Subscribe(ctx context.Context, g model.BatteryGroup) (<-chan model.PowerMetrics, error) {
	first, err := s.pool.Bounds(g)
	if err != nil {
		return nil, err
	}
	ch := make(chan model.PowerMetrics, 1)
	ch <- first
	go func() {
		defer close(ch)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				b, err := s.pool.Bounds(g)
				if err != nil {
					s.log.Errorf("bounds of %s: %v", g, err)
					continue
				}
				select {
				case ch <- b:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}
