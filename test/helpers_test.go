package test

import (
	"context"
	"testing"
	"time"

	"github.com/kilianp07/powermanager/core/events"
	"github.com/kilianp07/powermanager/core/model"
	"github.com/kilianp07/powermanager/core/powermanager"
	"github.com/kilianp07/powermanager/infra/logger"
	"github.com/kilianp07/powermanager/internal/eventbus"
	"github.com/kilianp07/powermanager/simulator"
)

// simManager runs a power manager against the default simulated battery pool
// until the test ends.
type simManager struct {
	*powermanager.PowerManager
	bus       *eventbus.TypedBus[events.Event]
	reports   *eventbus.Registry[model.Report]
	proposals chan model.Proposal
	requests  chan model.ReportRequest
}

func startSimManager(t *testing.T) *simManager {
	t.Helper()
	cfg := simulator.Config{IntervalMS: 50}
	cfg.SetDefaults()
	pool, err := simulator.NewPool(cfg)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	m := &simManager{
		bus:       eventbus.NewTyped[events.Event](),
		reports:   eventbus.NewRegistry[model.Report](),
		proposals: make(chan model.Proposal, 4),
		requests:  make(chan model.ReportRequest, 4),
	}
	m.PowerManager, err = powermanager.NewPowerManager(powermanager.Config{},
		simulator.NewSource(pool, cfg.Interval(), logger.NopLogger{}),
		simulator.NewActuator(pool, cfg.Step(), logger.NopLogger{}),
		m.reports, nil, m.bus, logger.NopLogger{})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx, m.proposals, m.requests) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("run: %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Error("manager did not stop")
		}
		m.reports.Close()
		m.bus.Close()
	})
	return m
}

// waitFor polls cond until it holds or the timeout expires.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
