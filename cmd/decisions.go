package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/powermanager/config"
	"github.com/kilianp07/powermanager/core/decisionlog"
	"github.com/kilianp07/powermanager/core/model"
	"github.com/kilianp07/powermanager/infra/logger"
	"github.com/kilianp07/powermanager/pkg/export"
)

var decisionsOpts struct {
	since  time.Duration
	group  string
	source string
	format string
}

var decisionsCmd = &cobra.Command{
	Use:   "decisions",
	Short: "Query the decision log",
	RunE:  runDecisions,
}

func init() {
	f := decisionsCmd.Flags()
	f.DurationVar(&decisionsOpts.since, "since", time.Hour, "how far back to look")
	f.StringVarP(&decisionsOpts.group, "group", "g", "", "only decisions of this battery group")
	f.StringVar(&decisionsOpts.source, "source", "", "only decisions on proposals of this source")
	f.StringVarP(&decisionsOpts.format, "output", "o", "json", "output format: "+strings.Join(export.Formats, ", "))
	rootCmd.AddCommand(decisionsCmd)
}

func runDecisions(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	store, err := decisionlog.Open(cfg.Logging, logger.New("decisions"))
	if err != nil {
		return err
	}
	if store == nil {
		return fmt.Errorf("decision log is disabled")
	}
	defer store.Close()

	q := decisionlog.LogQuery{Start: time.Now().Add(-decisionsOpts.since), SourceID: decisionsOpts.source}
	if decisionsOpts.group != "" {
		g, err := model.ParseBatteryGroup(decisionsOpts.group)
		if err != nil {
			return err
		}
		q.GroupKey = g.Key()
	}
	recs, err := store.Query(cmd.Context(), q)
	if err != nil {
		return err
	}
	return export.Write(cmd.OutOrStdout(), decisionsOpts.format, recs)
}
