package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/spf13/cobra"

	"github.com/kilianp07/powermanager/core/model"
	"github.com/kilianp07/powermanager/infra/mqtt"
)

var reportsOpts struct {
	group    string
	priority int
	count    int
}

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Subscribe to the reports of a battery group and print them",
	RunE:  runReports,
}

func init() {
	f := reportsCmd.Flags()
	f.StringVarP(&reportsOpts.group, "group", "g", "", "battery ids, comma separated")
	f.IntVarP(&reportsOpts.priority, "priority", "p", 0, "priority the reports are computed for")
	f.IntVarP(&reportsOpts.count, "count", "n", 0, "stop after n reports, 0 runs until interrupted")
	_ = reportsCmd.MarkFlagRequired("group")
	rootCmd.AddCommand(reportsCmd)
}

func runReports(cmd *cobra.Command, args []string) error {
	g, err := model.ParseBatteryGroup(reportsOpts.group)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli, err := connect("reports")
	if err != nil {
		return fmt.Errorf("mqtt client: %w", err)
	}
	defer cli.Disconnect()

	received := make(chan []byte, 16)
	topic := mqtt.ReportTopic(cli.Prefix(), g, reportsOpts.priority)
	if err := cli.Subscribe(topic, 1, func(_ paho.Client, msg paho.Message) {
		select {
		case received <- msg.Payload():
		default:
		}
	}); err != nil {
		return err
	}

	req := model.ReportRequest{SourceID: "cli", Group: g, Priority: reportsOpts.priority}
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	err = cli.RequestReports(pctx, req)
	cancel()
	if err != nil {
		return err
	}

	for n := 0; reportsOpts.count == 0 || n < reportsOpts.count; n++ {
		select {
		case <-ctx.Done():
			return nil
		case payload := <-received:
			if err := printReport(cmd, payload); err != nil {
				return err
			}
		}
	}
	return nil
}

func printReport(cmd *cobra.Command, payload []byte) error {
	var r model.Report
	if err := json.Unmarshal(payload, &r); err != nil {
		return fmt.Errorf("decode report: %w", err)
	}
	target := "none"
	if r.TargetPower != nil {
		target = fmt.Sprintf("%.1f W", *r.TargetPower)
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s prio=%d target=%s inclusion=[%.1f, %.1f] exclusion=[%.1f, %.1f]\n",
		r.Timestamp.Format(time.RFC3339), r.Group, r.Priority, target,
		r.Inclusion.Lower, r.Inclusion.Upper, r.Exclusion.Lower, r.Exclusion.Upper)
	return err
}
