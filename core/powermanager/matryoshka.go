package powermanager

import (
	"cmp"
	"slices"
	"sync"

	"github.com/kilianp07/powermanager/core/model"
)

// Matryoshka nests the proposals of a group by priority. Every proposal may
// restrict the bounds left to lower priorities; the target power is the
// lowest priority proposal's power clamped into what the higher priorities
// left available.
type Matryoshka struct {
	mu      sync.Mutex
	buckets map[string][]model.Proposal
	targets map[string]float64
}

// NewMatryoshka returns an empty Matryoshka.
func NewMatryoshka() *Matryoshka {
	return &Matryoshka{
		buckets: make(map[string][]model.Proposal),
		targets: make(map[string]float64),
	}
}

// HandleProposal stores p, replacing the previous proposal of the same
// source, and recomputes the target power of the group.
func (m *Matryoshka) HandleProposal(p model.Proposal, bounds model.PowerMetrics) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := p.Group.Key()
	src := p.SourceKey()
	bucket := slices.DeleteFunc(m.buckets[key], func(o model.Proposal) bool { return o.SourceKey() == src })
	// newest first so that it wins ties after the stable sort
	bucket = append([]model.Proposal{p}, bucket...)
	slices.SortStableFunc(bucket, func(a, b model.Proposal) int { return cmp.Compare(b.Priority, a.Priority) })
	m.buckets[key] = bucket

	available := bounds.Inclusion
	target := 0.0
	for _, q := range bucket {
		if available.Empty() {
			break
		}
		target = available.Clamp(q.Power)
		if q.Bounds != nil {
			available = available.Intersect(*q.Bounds)
		}
	}
	m.targets[key] = target
	return target
}

// GetStatus reports the bounds available to priority, which are the system
// bounds narrowed by every proposal of strictly higher priority.
func (m *Matryoshka) GetStatus(group model.BatteryGroup, priority int, bounds model.PowerMetrics) model.Report {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := group.Key()
	available := bounds.Inclusion
	for _, q := range m.buckets[key] {
		if q.Priority <= priority {
			break
		}
		if q.Bounds != nil {
			available = available.Intersect(*q.Bounds)
		}
	}
	r := model.Report{
		Group:     group,
		Priority:  priority,
		Inclusion: available,
		Exclusion: bounds.Exclusion,
		Timestamp: bounds.Timestamp,
	}
	if t, ok := m.targets[key]; ok {
		r.TargetPower = &t
	}
	return r
}
