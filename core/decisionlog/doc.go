// Package decisionlog persists arbitration decisions.
//
// Records are appended off the run loop by StartRecorder, which consumes
// DecisionEvents from the event bus. Stores can be queried by time window,
// battery group and proposal source.
package decisionlog
