// Package metrics defines the recorders used to observe power manager
// decisions. Sinks like PromSink and InfluxSink (infra/metrics) record
// arbitration decisions, delivered reports and bounds updates and can be
// combined with NewMultiSink. NewMetricsSink builds sinks from configuration
// and returns a MultiSink automatically when several are configured.
package metrics
