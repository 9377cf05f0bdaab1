package mqtt

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/kilianp07/powermanager/core/model"
	"github.com/kilianp07/powermanager/infra/logger"
	"github.com/kilianp07/powermanager/internal/eventbus"
)

// ReportForwarder republishes the reports of a subscription on its report
// topic, retained, so late MQTT subscribers get the latest state.
type ReportForwarder struct {
	cli      *PahoClient
	registry *eventbus.Registry[model.Report]
	log      logger.Logger

	mu     sync.Mutex
	active map[string]struct{}
	wg     sync.WaitGroup
}

// NewReportForwarder creates a forwarder reading from registry.
func NewReportForwarder(cli *PahoClient, registry *eventbus.Registry[model.Report], log logger.Logger) *ReportForwarder {
	return &ReportForwarder{cli: cli, registry: registry, log: log, active: make(map[string]struct{})}
}

// Forward attaches a receiver to the channel of r, once per channel, and
// publishes its reports until ctx is done. It must run before the request
// reaches the power manager so the initial report is not missed.
func (f *ReportForwarder) Forward(ctx context.Context, r model.ReportRequest) {
	name := r.ChannelName()
	f.mu.Lock()
	if _, ok := f.active[name]; ok {
		f.mu.Unlock()
		return
	}
	f.active[name] = struct{}{}
	f.mu.Unlock()

	ch := f.registry.Receiver(name, 1)
	topic := ReportTopic(f.cli.Prefix(), r.Group, r.Priority)
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		defer f.registry.Release(name, ch)
		for {
			select {
			case <-ctx.Done():
				return
			case rep, ok := <-ch:
				if !ok {
					return
				}
				payload, err := json.Marshal(rep)
				if err != nil {
					f.log.Errorf("encode report: %v", err)
					continue
				}
				if err := f.cli.Publish(ctx, topic, f.cli.cfg.qos("report"), true, payload); err != nil && ctx.Err() == nil {
					f.log.Errorf("forward report to %s: %v", topic, err)
				}
			}
		}
	}()
}

// Wait blocks until every forwarding goroutine stopped.
func (f *ReportForwarder) Wait() { f.wg.Wait() }
