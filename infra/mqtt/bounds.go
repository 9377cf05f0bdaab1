package mqtt

import (
	"context"
	"encoding/json"
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/powermanager/core/model"
	"github.com/kilianp07/powermanager/infra/logger"
)

// BoundsSource streams the bounds published on the retained bounds topic of
// each group. Payloads are JSON encoded model.PowerMetrics.
type BoundsSource struct {
	cli    *PahoClient
	log    logger.Logger
	buffer int
}

// NewBoundsSource creates a source reading from cli.
func NewBoundsSource(cli *PahoClient, log logger.Logger) *BoundsSource {
	return &BoundsSource{cli: cli, log: log, buffer: 4}
}

// Subscribe streams the bounds of g until ctx is done, then closes the
// channel. When the consumer lags behind, the oldest pending value is
// discarded.
func (s *BoundsSource) Subscribe(ctx context.Context, g model.BatteryGroup) (<-chan model.PowerMetrics, error) {
	topic := BoundsTopic(s.cli.Prefix(), g)
	f := &feed{ch: make(chan model.PowerMetrics, s.buffer)}
	handler := func(_ paho.Client, msg paho.Message) {
		var m model.PowerMetrics
		if err := json.Unmarshal(msg.Payload(), &m); err != nil {
			s.log.Errorf("invalid bounds on %s: %v", msg.Topic(), err)
			return
		}
		f.push(m)
	}
	if err := s.cli.Subscribe(topic, s.cli.cfg.qos("bounds"), handler); err != nil {
		return nil, err
	}
	go func() {
		<-ctx.Done()
		if err := s.cli.Unsubscribe(topic); err != nil {
			s.log.Warnf("%v", err)
		}
		f.close()
	}()
	return f.ch, nil
}

type feed struct {
	mu     sync.Mutex
	ch     chan model.PowerMetrics
	closed bool
}

func (f *feed) push(m model.PowerMetrics) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	for {
		select {
		case f.ch <- m:
			return
		default:
		}
		select {
		case <-f.ch:
		default:
		}
	}
}

func (f *feed) close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.ch)
	}
}
