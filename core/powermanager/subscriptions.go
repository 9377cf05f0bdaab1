package powermanager

import (
	"cmp"
	"slices"
	"sync"

	"github.com/kilianp07/powermanager/core/model"
	"github.com/kilianp07/powermanager/internal/eventbus"
)

type subscription struct {
	priority int
	channel  string
	sender   eventbus.Sender[model.Report]
}

// subscriptionTable maps group key -> priority -> destination. The run loop
// writes, fanouts read a copy.
type subscriptionTable struct {
	mu      sync.RWMutex
	byGroup map[string]map[int]subscription
	count   int
}

func newSubscriptionTable() *subscriptionTable {
	return &subscriptionTable{byGroup: make(map[string]map[int]subscription)}
}

// set registers the destination of (group, priority), replacing any previous
// one. It reports whether the pair was already known.
func (t *subscriptionTable) set(key string, s subscription) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	prios, ok := t.byGroup[key]
	if !ok {
		prios = make(map[int]subscription)
		t.byGroup[key] = prios
	}
	_, existed := prios[s.priority]
	prios[s.priority] = s
	if !existed {
		t.count++
	}
	return existed
}

// snapshot returns the subscriptions of a group, highest priority first.
func (t *subscriptionTable) snapshot(key string) []subscription {
	t.mu.RLock()
	out := make([]subscription, 0, len(t.byGroup[key]))
	for _, s := range t.byGroup[key] {
		out = append(out, s)
	}
	t.mu.RUnlock()
	slices.SortFunc(out, func(a, b subscription) int { return cmp.Compare(b.priority, a.priority) })
	return out
}

func (t *subscriptionTable) len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.count
}
