package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ErrEmptyGroup is returned when a battery group would have no members.
var ErrEmptyGroup = errors.New("battery group must not be empty")

// BatteryGroup is an immutable set of battery component IDs. Two groups are
// equal when they hold the same members, whatever order they were given in.
type BatteryGroup struct {
	ids []uint64
	key string
}

// NewBatteryGroup builds a canonical group from the given IDs. Duplicates are
// removed and the members are kept sorted.
func NewBatteryGroup(ids ...uint64) (BatteryGroup, error) {
	if len(ids) == 0 {
		return BatteryGroup{}, ErrEmptyGroup
	}
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.FormatUint(id, 10)
	}
	return BatteryGroup{ids: sorted, key: strings.Join(parts, ",")}, nil
}

// MustBatteryGroup is like NewBatteryGroup but panics on error. Intended for
// tests and static configuration.
func MustBatteryGroup(ids ...uint64) BatteryGroup {
	g, err := NewBatteryGroup(ids...)
	if err != nil {
		panic(err)
	}
	return g
}

// ParseBatteryGroup parses the canonical key form ("1,2,3").
func ParseBatteryGroup(s string) (BatteryGroup, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return BatteryGroup{}, ErrEmptyGroup
	}
	fields := strings.Split(s, ",")
	ids := make([]uint64, 0, len(fields))
	for _, f := range fields {
		id, err := strconv.ParseUint(strings.TrimSpace(f), 10, 64)
		if err != nil {
			return BatteryGroup{}, fmt.Errorf("parse battery id %q: %w", f, err)
		}
		ids = append(ids, id)
	}
	return NewBatteryGroup(ids...)
}

// Key returns the canonical identity of the group. It is stable across
// processes and is used as map key and topic segment.
func (g BatteryGroup) Key() string { return g.key }

// IDs returns a copy of the sorted members.
func (g BatteryGroup) IDs() []uint64 { return slices.Clone(g.ids) }

// Len returns the number of batteries in the group.
func (g BatteryGroup) Len() int { return len(g.ids) }

// IsZero reports whether the group was never initialised.
func (g BatteryGroup) IsZero() bool { return len(g.ids) == 0 }

// Contains reports whether id is a member of the group.
func (g BatteryGroup) Contains(id uint64) bool {
	_, ok := slices.BinarySearch(g.ids, id)
	return ok
}

// Equal reports whether both groups have the same members.
func (g BatteryGroup) Equal(o BatteryGroup) bool { return g.key == o.key }

func (g BatteryGroup) String() string { return "{" + g.key + "}" }

// MarshalJSON encodes the group as a sorted array of IDs.
func (g BatteryGroup) MarshalJSON() ([]byte, error) {
	if g.ids == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(g.ids)
}

// UnmarshalJSON decodes an array of IDs into a canonical group. An empty
// array or null decodes to the zero group; callers that need members check
// IsZero.
func (g *BatteryGroup) UnmarshalJSON(b []byte) error {
	var ids []uint64
	if err := json.Unmarshal(b, &ids); err != nil {
		return err
	}
	if len(ids) == 0 {
		*g = BatteryGroup{}
		return nil
	}
	ng, err := NewBatteryGroup(ids...)
	if err != nil {
		return err
	}
	*g = ng
	return nil
}
