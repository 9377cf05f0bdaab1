package test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kilianp07/powermanager/core/model"
	"github.com/kilianp07/powermanager/core/powermanager"
)

func TestMetricsHTTPExposure(t *testing.T) {
	reg := prometheus.NewRegistry()
	powermanager.ResetMetrics(reg)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	m := startSimManager(t)
	g := model.MustBatteryGroup(1)
	receiver := m.reports.Receiver(model.ReportChannelName(g, 0), 4)
	m.requests <- model.ReportRequest{SourceID: "test", Group: g}
	m.proposals <- model.Proposal{SourceID: "ems", Group: g, Priority: 1, Power: 1000}

	waitFor(t, 5*time.Second, func() bool {
		select {
		case r := <-receiver:
			return r.TargetPower != nil
		default:
			return false
		}
	})

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	out := string(body)
	for _, name := range []string{
		`power_manager_proposals_total{outcome="accepted"} 1`,
		"power_manager_bounds_trackers 1",
		"power_manager_subscriptions 1",
		`power_manager_target_power_watts{group="1"} 1000`,
	} {
		if !strings.Contains(out, name) {
			t.Errorf("metrics output missing %q:\n%s", name, out)
		}
	}
}
