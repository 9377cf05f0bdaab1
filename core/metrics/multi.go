package metrics

import (
	"errors"

	"github.com/kilianp07/powermanager/core/model"
)

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []DecisionSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...DecisionSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordDecision forwards the decision to every sink. All sinks are tried and
// their errors joined.
func (m *MultiSink) RecordDecision(d Decision) error {
	var errs []error
	for _, s := range m.Sinks {
		errs = append(errs, s.RecordDecision(d))
	}
	return errors.Join(errs...)
}

// RecordReport forwards the report to the sinks able to record it.
func (m *MultiSink) RecordReport(r model.Report) error {
	var errs []error
	for _, s := range m.Sinks {
		if rr, ok := s.(ReportRecorder); ok {
			errs = append(errs, rr.RecordReport(r))
		}
	}
	return errors.Join(errs...)
}

// RecordBounds forwards the update to the sinks able to record it.
func (m *MultiSink) RecordBounds(u BoundsUpdate) error {
	var errs []error
	for _, s := range m.Sinks {
		if br, ok := s.(BoundsRecorder); ok {
			errs = append(errs, br.RecordBounds(u))
		}
	}
	return errors.Join(errs...)
}

// RecordTracker forwards the change to the sinks able to record it.
func (m *MultiSink) RecordTracker(c TrackerChange) error {
	var errs []error
	for _, s := range m.Sinks {
		if tr, ok := s.(TrackerRecorder); ok {
			errs = append(errs, tr.RecordTracker(c))
		}
	}
	return errors.Join(errs...)
}

// Close releases the sinks holding resources.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
