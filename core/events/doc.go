// Package events defines the power manager events emitted on the event bus.
//
// Available event types:
//   - DecisionEvent: a proposal was arbitrated and an actuation request queued
//   - TrackerEvent: a bounds tracker started or lost its feed
//   - RequestDroppedEvent: the actuation outbox overflowed
package events
