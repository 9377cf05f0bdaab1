package model

import (
	"fmt"
	"time"
)

// ReportRequest asks for the reports of a battery group as seen from a
// given priority.
type ReportRequest struct {
	SourceID string       `json:"source_id"`
	Group    BatteryGroup `json:"battery_ids"`
	Priority int          `json:"priority"`
}

// ChannelName returns the name of the destination reports are delivered to.
func (r ReportRequest) ChannelName() string {
	return ReportChannelName(r.Group, r.Priority)
}

// ReportChannelName builds the report destination name for a group and priority.
func ReportChannelName(g BatteryGroup, priority int) string {
	return fmt.Sprintf("power_manager.report.%s.%d", g.Key(), priority)
}

// Report is the arbitration status of a battery group for one priority.
type Report struct {
	Group    BatteryGroup `json:"battery_ids"`
	Priority int          `json:"priority"`
	// TargetPower is nil until a proposal has been arbitrated for the group.
	TargetPower *float64  `json:"target_power,omitempty"`
	Inclusion   Bounds    `json:"inclusion_bounds"`
	Exclusion   Bounds    `json:"exclusion_bounds"`
	Timestamp   time.Time `json:"timestamp"`
}
