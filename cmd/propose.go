package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/powermanager/core/model"
)

var proposeOpts struct {
	group    string
	source   string
	priority int
	power    float64
	lower    float64
	upper    float64
	bounded  bool
	timeout  time.Duration
	broken   bool
}

var proposeCmd = &cobra.Command{
	Use:   "propose",
	Short: "Submit a power proposal for a battery group",
	RunE:  runPropose,
}

func init() {
	f := proposeCmd.Flags()
	f.StringVarP(&proposeOpts.group, "group", "g", "", "battery ids, comma separated")
	f.StringVar(&proposeOpts.source, "source", "cli", "source id of the proposal")
	f.IntVarP(&proposeOpts.priority, "priority", "p", 0, "proposal priority")
	f.Float64Var(&proposeOpts.power, "power", 0, "preferred power in watts")
	f.Float64Var(&proposeOpts.lower, "lower", 0, "lower bound left to lower priorities")
	f.Float64Var(&proposeOpts.upper, "upper", 0, "upper bound left to lower priorities")
	f.BoolVar(&proposeOpts.bounded, "bounded", false, "restrict lower priorities to [lower, upper]")
	f.DurationVar(&proposeOpts.timeout, "timeout", 0, "request timeout")
	f.BoolVar(&proposeOpts.broken, "include-broken", false, "include broken batteries")
	_ = proposeCmd.MarkFlagRequired("group")
	rootCmd.AddCommand(proposeCmd)
}

func buildProposal() (model.Proposal, error) {
	g, err := model.ParseBatteryGroup(proposeOpts.group)
	if err != nil {
		return model.Proposal{}, err
	}
	p := model.Proposal{
		SourceID:       proposeOpts.source,
		Group:          g,
		Priority:       proposeOpts.priority,
		Power:          proposeOpts.power,
		RequestTimeout: proposeOpts.timeout,
		IncludeBroken:  proposeOpts.broken,
	}
	if proposeOpts.bounded {
		p.Bounds = &model.Bounds{Lower: proposeOpts.lower, Upper: proposeOpts.upper}
	}
	return p, p.Validate()
}

func runPropose(cmd *cobra.Command, args []string) error {
	p, err := buildProposal()
	if err != nil {
		return fmt.Errorf("invalid proposal: %w", err)
	}
	cli, err := connect("propose")
	if err != nil {
		return fmt.Errorf("mqtt client: %w", err)
	}
	defer cli.Disconnect()

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()
	if err := cli.Propose(ctx, p); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "proposed %.1f W for %s at priority %d\n", p.Power, p.Group, p.Priority)
	return err
}
