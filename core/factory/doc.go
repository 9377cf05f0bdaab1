// Package factory provides a generic registry used to build pluggable modules
// (arbitration algorithms, metrics sinks, decision log stores) from their
// configured type name and raw configuration map.
package factory
