package decisionlog

import (
	"github.com/prometheus/client_golang/prometheus"
)

var skippedLines prometheus.Counter

func newSkippedLines() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "decision_log_skipped_lines_total",
		Help: "Number of decision log lines that could not be decoded",
	})
}

func init() {
	skippedLines = newSkippedLines()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers decision log metrics on the provided
// registry. If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(skippedLines)
}

// ResetMetrics reinitializes the collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	skippedLines = newSkippedLines()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
