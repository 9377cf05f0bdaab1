package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/powermanager/api"
	"github.com/kilianp07/powermanager/config"
	"github.com/kilianp07/powermanager/core/decisionlog"
	"github.com/kilianp07/powermanager/core/events"
	coremetrics "github.com/kilianp07/powermanager/core/metrics"
	"github.com/kilianp07/powermanager/core/model"
	coremon "github.com/kilianp07/powermanager/core/monitoring"
	"github.com/kilianp07/powermanager/core/powermanager"
	"github.com/kilianp07/powermanager/infra/logger"
	"github.com/kilianp07/powermanager/infra/metrics"
	"github.com/kilianp07/powermanager/infra/monitoring"
	"github.com/kilianp07/powermanager/infra/mqtt"
	"github.com/kilianp07/powermanager/internal/eventbus"
	"github.com/kilianp07/powermanager/simulator"
)

const flushTimeout = 2 * time.Second

// requestIngress feeds proposals and report requests to the manager.
type requestIngress interface {
	Start(ctx context.Context) error
	Proposals() <-chan model.Proposal
	Requests() <-chan model.ReportRequest
}

// Service orchestrates the power manager and its MQTT edges.
type Service struct {
	Manager *powermanager.PowerManager

	cfg       *config.Config
	client    *mqtt.PahoClient
	ingress   requestIngress
	forwarder *mqtt.ReportForwarder
	reports   *eventbus.Registry[model.Report]
	bus       *eventbus.TypedBus[events.Event]
	sink      coremetrics.DecisionSink
	store     decisionlog.LogStore
	log       logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	store, err := decisionlog.Open(cfg.Logging, logger.New("decisionlog"))
	if err != nil {
		return nil, fmt.Errorf("decision log: %w", err)
	}

	client, err := mqtt.NewPahoClient(cfg.MQTT)
	if err != nil {
		closeStore(store, logg)
		return nil, fmt.Errorf("mqtt client: %w", err)
	}
	source, actuator, err := newEdges(cfg, client)
	if err != nil {
		client.Disconnect()
		closeStore(store, logg)
		return nil, err
	}

	bus := eventbus.NewTyped[events.Event]()
	reports := eventbus.NewRegistry[model.Report]()
	manager, err := powermanager.NewPowerManager(cfg.PowerManager, source, actuator, reports, sink, bus, logger.New("powermanager"))
	if err != nil {
		client.Disconnect()
		closeStore(store, logg)
		return nil, fmt.Errorf("power manager: %w", err)
	}

	return &Service{
		Manager:   manager,
		cfg:       cfg,
		client:    client,
		ingress:   mqtt.NewIngress(client, logger.New("ingress")),
		forwarder: mqtt.NewReportForwarder(client, reports, logger.New("reports")),
		reports:   reports,
		bus:       bus,
		sink:      sink,
		store:     store,
		log:       logg,
	}, nil
}

// newEdges selects the bounds source and the actuator.
func newEdges(cfg *config.Config, client *mqtt.PahoClient) (powermanager.BoundsSource, powermanager.Actuator, error) {
	switch cfg.Source.Type {
	case config.SourceSimulator:
		pool, err := simulator.NewPool(cfg.Simulator)
		if err != nil {
			return nil, nil, fmt.Errorf("simulator: %w", err)
		}
		log := logger.New("simulator")
		return simulator.NewSource(pool, cfg.Simulator.Interval(), log),
			simulator.NewActuator(pool, cfg.Simulator.Step(), log), nil
	case config.SourceMQTT, "":
		if client == nil {
			return nil, nil, fmt.Errorf("mqtt source requires a client")
		}
		return mqtt.NewBoundsSource(client, logger.New("bounds")),
			mqtt.NewActuator(client, logger.New("actuator")), nil
	default:
		return nil, nil, fmt.Errorf("unknown source type %s", cfg.Source.Type)
	}
}

// Run starts the service and blocks until the context is cancelled or the
// power manager fails.
func (s *Service) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	if err := s.ingress.Start(ctx); err != nil {
		return fmt.Errorf("ingress: %w", err)
	}
	recorded := decisionlog.StartRecorder(ctx, s.bus, s.store, s.log)
	metrics.StartEventCollector(ctx, s.bus, s.sink)

	// Report forwarding must be attached before the manager sends the
	// initial report of a subscription.
	requests := make(chan model.ReportRequest)
	g.Go(func() error {
		defer close(requests)
		for {
			select {
			case <-ctx.Done():
				return nil
			case r := <-s.ingress.Requests():
				s.forwarder.Forward(ctx, r)
				select {
				case requests <- r:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})

	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		g.Go(func() error {
			if err := metrics.StartPromServer(ctx, addr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
			return nil
		})
	}

	if addr := s.cfg.API.Addr; addr != "" {
		mux := api.NewMux(s.store, s.Manager, s.cfg.API.Token)
		g.Go(func() error {
			if err := api.Serve(ctx, addr, mux); err != nil {
				s.log.Errorf("api server: %v", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		return s.Manager.Run(ctx, s.ingress.Proposals(), requests)
	})

	s.log.Infof("power manager started (source=%s, algorithm=%s)", s.cfg.Source.Type, s.cfg.PowerManager.Algorithm)
	err := g.Wait()
	s.forwarder.Wait()
	<-recorded
	return err
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	s.reports.Close()
	s.client.Disconnect()
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	coremon.Flush(flushTimeout)
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

func closeStore(store decisionlog.LogStore, log logger.Logger) {
	if store == nil {
		return
	}
	if err := store.Close(); err != nil {
		log.Errorf("close decision log: %v", err)
	}
}
