// Package simulator provides an in-process battery pool that can stand in
// for the bounds feed and the actuation channel of the power manager.
//
// Pool aggregates battery and inverter limits per battery group, Source
// streams those bounds on a ticker and Actuator applies requests by
// splitting the power equally across the batteries of the group.
package simulator
