package mqtt

import (
	"fmt"

	"github.com/kilianp07/powermanager/core/model"
)

// BoundsTopic is where the bounds of a group are published, retained.
func BoundsTopic(prefix string, g model.BatteryGroup) string {
	return fmt.Sprintf("%s/%s/bounds", prefix, g.Key())
}

// RequestTopic receives the actuation requests of a group.
func RequestTopic(prefix string, g model.BatteryGroup) string {
	return fmt.Sprintf("%s/%s/request", prefix, g.Key())
}

// ReportTopic receives the reports of a group for one priority.
func ReportTopic(prefix string, g model.BatteryGroup, priority int) string {
	return fmt.Sprintf("%s/%s/report/%d", prefix, g.Key(), priority)
}

// ProposalsTopic receives proposals for every group.
func ProposalsTopic(prefix string) string { return prefix + "/proposals" }

// SubscriptionsTopic receives report requests for every group.
func SubscriptionsTopic(prefix string) string { return prefix + "/subscriptions" }
