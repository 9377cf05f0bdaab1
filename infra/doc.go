// Package infra groups the adapters the power manager talks to: the
// zerolog logger, the MQTT bounds feeds and request ingress, the Prometheus
// and InfluxDB decision sinks, and Sentry. Subpackages implement interfaces
// from core; the zerolog adapter is the only one the others share.
package infra
