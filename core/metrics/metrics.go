package metrics

import (
	"time"

	"github.com/kilianp07/powermanager/core/model"
)

// Decision is one arbitrated proposal and the request it produced.
type Decision struct {
	Proposal    model.Proposal
	Bounds      model.PowerMetrics
	TargetPower float64
	Request     model.Request
	Time        time.Time
}

// DecisionSink records arbitration decisions for observability purposes.
type DecisionSink interface {
	RecordDecision(d Decision) error
}

// ReportRecorder records reports delivered to subscribers.
type ReportRecorder interface {
	RecordReport(r model.Report) error
}

// BoundsUpdate is a bounds value applied to the cache of a group.
type BoundsUpdate struct {
	Group   model.BatteryGroup
	Metrics model.PowerMetrics
}

// BoundsRecorder records bounds updates.
type BoundsRecorder interface {
	RecordBounds(u BoundsUpdate) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordDecision(Decision) error     { return nil }
func (NopSink) RecordReport(model.Report) error   { return nil }
func (NopSink) RecordBounds(BoundsUpdate) error   { return nil }
func (NopSink) RecordTracker(TrackerChange) error { return nil }

// TrackerChange is a bounds tracker lifecycle change.
type TrackerChange struct {
	Group  model.BatteryGroup
	Action string
	Error  string
	Time   time.Time
}

// TrackerRecorder records bounds tracker lifecycle changes.
type TrackerRecorder interface {
	RecordTracker(c TrackerChange) error
}
