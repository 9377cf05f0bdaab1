package events

import (
	"time"

	"github.com/kilianp07/powermanager/core/model"
)

// Event is implemented by every power manager event.
type Event interface {
	GroupKey() string
}

// DecisionEvent is published after a proposal was arbitrated.
type DecisionEvent struct {
	Proposal    model.Proposal
	Bounds      model.PowerMetrics
	TargetPower float64
	Request     model.Request
	Time        time.Time
}

func (e DecisionEvent) GroupKey() string { return e.Proposal.Group.Key() }

// TrackerEvent reports bounds tracker lifecycle changes.
// Action is "started" or "failed".
type TrackerEvent struct {
	Group  model.BatteryGroup
	Action string
	Err    error
}

func (e TrackerEvent) GroupKey() string { return e.Group.Key() }

// RequestDroppedEvent is published when a queued actuation request was
// superseded before it could be sent.
type RequestDroppedEvent struct {
	Request model.Request
}

func (e RequestDroppedEvent) GroupKey() string { return e.Request.Group.Key() }
