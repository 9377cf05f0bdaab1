package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/powermanager/config"
	"github.com/kilianp07/powermanager/core/events"
	"github.com/kilianp07/powermanager/core/model"
	"github.com/kilianp07/powermanager/core/powermanager"
	"github.com/kilianp07/powermanager/infra/logger"
	"github.com/kilianp07/powermanager/internal/eventbus"
	"github.com/kilianp07/powermanager/simulator"
)

var simulateOpts struct {
	group    string
	priority int
	power    float64
	duration time.Duration
	interval time.Duration
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the power manager against an in-process battery pool",
	Long: `Runs the power manager with the simulated battery pool of the
configuration (or three default batteries when no configuration file exists),
submits one proposal and prints the reports of the group.`,
	RunE: runSimulate,
}

func init() {
	f := simulateCmd.Flags()
	f.StringVarP(&simulateOpts.group, "group", "g", "1,2", "battery ids, comma separated")
	f.IntVarP(&simulateOpts.priority, "priority", "p", 1, "proposal priority")
	f.Float64Var(&simulateOpts.power, "power", 2000, "preferred power in watts")
	f.DurationVarP(&simulateOpts.duration, "duration", "d", 5*time.Second, "how long to simulate")
	f.DurationVar(&simulateOpts.interval, "interval", 0, "bounds update period, overrides the configuration")
	rootCmd.AddCommand(simulateCmd)
}

func simulatorConfig() (simulator.Config, powermanager.Config) {
	var (
		simCfg simulator.Config
		pmCfg  powermanager.Config
	)
	if cfg, err := config.Load(cfgPath); err == nil {
		simCfg, pmCfg = cfg.Simulator, cfg.PowerManager
	}
	if simulateOpts.interval > 0 {
		simCfg.IntervalMS = int(simulateOpts.interval.Milliseconds())
		simCfg.StepMS = simCfg.IntervalMS
	}
	simCfg.SetDefaults()
	return simCfg, pmCfg
}

func runSimulate(cmd *cobra.Command, args []string) error {
	g, err := model.ParseBatteryGroup(simulateOpts.group)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, simulateOpts.duration)
	defer cancel()

	simCfg, pmCfg := simulatorConfig()
	return simulate(ctx, cmd, simCfg, pmCfg, g)
}

func simulate(ctx context.Context, cmd *cobra.Command, simCfg simulator.Config, pmCfg powermanager.Config, g model.BatteryGroup) error {
	pool, err := simulator.NewPool(simCfg)
	if err != nil {
		return err
	}
	log := logger.New("simulate")
	reports := eventbus.NewRegistry[model.Report]()
	defer reports.Close()
	bus := eventbus.NewTyped[events.Event]()
	defer bus.Close()

	manager, err := powermanager.NewPowerManager(pmCfg,
		simulator.NewSource(pool, simCfg.Interval(), log),
		simulator.NewActuator(pool, simCfg.Step(), log),
		reports, nil, bus, log)
	if err != nil {
		return err
	}

	req := model.ReportRequest{SourceID: "simulate", Group: g, Priority: simulateOpts.priority}
	received := reports.Receiver(req.ChannelName(), 1)
	proposals := make(chan model.Proposal, 1)
	requests := make(chan model.ReportRequest, 1)
	requests <- req
	proposals <- model.Proposal{SourceID: "simulate", Group: g, Priority: simulateOpts.priority, Power: simulateOpts.power}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error { return manager.Run(ctx, proposals, requests) })
	eg.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case r, ok := <-received:
				if !ok {
					return nil
				}
				if err := printSimulated(cmd, pool, r); err != nil {
					return err
				}
			}
		}
	})
	if err := eg.Wait(); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

func printSimulated(cmd *cobra.Command, pool *simulator.Pool, r model.Report) error {
	target := "none"
	if r.TargetPower != nil {
		target = fmt.Sprintf("%.1f W", *r.TargetPower)
	}
	line := fmt.Sprintf("%s target=%s inclusion=[%.1f, %.1f]", r.Group, target, r.Inclusion.Lower, r.Inclusion.Upper)
	for _, id := range r.Group.IDs() {
		if b, ok := pool.Battery(id); ok {
			line += fmt.Sprintf(" soc[%d]=%.3f", id, b.SoC())
		}
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), line)
	return err
}
