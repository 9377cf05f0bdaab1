package model

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Proposal is a priority-tagged request for a target power on a battery group.
type Proposal struct {
	// SourceID identifies the actor submitting the proposal. A newer proposal
	// from the same source replaces the older one.
	SourceID string       `json:"source_id"`
	Group    BatteryGroup `json:"battery_ids"`
	// Priority orders proposals of a group; higher values win.
	Priority int `json:"priority"`
	// Power is the preferred power in watts.
	Power float64 `json:"power"`
	// Bounds optionally restricts what lower priority proposals can get.
	Bounds         *Bounds       `json:"bounds,omitempty"`
	RequestTimeout time.Duration `json:"request_timeout"`
	IncludeBroken  bool          `json:"include_broken_batteries"`
}

// SourceKey returns the identity used to replace older proposals. Proposals
// without a source are keyed by their priority.
func (p Proposal) SourceKey() string {
	if p.SourceID != "" {
		return p.SourceID
	}
	return "priority:" + strconv.Itoa(p.Priority)
}

// Validate checks the proposal is usable for arbitration.
func (p Proposal) Validate() error {
	if p.Group.IsZero() {
		return ErrEmptyGroup
	}
	if math.IsNaN(p.Power) || math.IsInf(p.Power, 0) {
		return fmt.Errorf("invalid power %v", p.Power)
	}
	if p.Bounds != nil && p.Bounds.Empty() {
		return errors.New("proposal bounds lower is above upper")
	}
	if p.RequestTimeout < 0 {
		return errors.New("request timeout must not be negative")
	}
	return nil
}
