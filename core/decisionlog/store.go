package decisionlog

import (
	"context"
	"time"

	"github.com/kilianp07/powermanager/core/model"
)

// LogRecord captures one arbitrated proposal and the request it produced.
type LogRecord struct {
	Timestamp   time.Time          `json:"timestamp"`
	Proposal    model.Proposal     `json:"proposal"`
	Bounds      model.PowerMetrics `json:"bounds"`
	TargetPower float64            `json:"target_power"`
	Request     model.Request      `json:"request"`
}

// LogQuery defines filters for retrieving records. Zero fields match all.
type LogQuery struct {
	Start    time.Time
	End      time.Time
	GroupKey string
	SourceID string
}

// Match reports whether r passes the filters.
func (q LogQuery) Match(r LogRecord) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.GroupKey != "" && r.Proposal.Group.Key() != q.GroupKey {
		return false
	}
	if q.SourceID != "" && r.Proposal.SourceID != q.SourceID {
		return false
	}
	return true
}

// LogStore persists LogRecords and supports querying.
type LogStore interface {
	Append(ctx context.Context, rec LogRecord) error
	Query(ctx context.Context, q LogQuery) ([]LogRecord, error)
	Close() error
}
