// Package powermanager arbitrates power proposals for battery groups.
//
// A PowerManager merges two event streams, proposals and report requests,
// and handles them one at a time. The first time a battery group shows up it
// subscribes to the group's bounds feed, waits for the first value and
// starts a tracker goroutine that keeps the bounds cache current and fans
// reports out to every subscriber of the group. Proposals are resolved by a
// pluggable Algorithm and the resulting target power is queued for the
// Actuator without waiting for the actuation to complete.
//
// Ownership of the shared tables:
//   - bounds cache: written by the tracker of the group (and by the run loop
//     once, before the tracker starts), read by the run loop and fanouts.
//   - tracker table: run loop only, so a group never gets two trackers.
//   - subscription table: written by the run loop, read by fanouts.
//
// Fanouts of a group run on its tracker only. Proposals ask the tracker for
// a fanout without waiting, so a slow subscriber stalls its own group but
// neither the other trackers nor the run loop. A new subscription gets its
// first report from the run loop, bounded by Config.InitialReportTimeout.
package powermanager
