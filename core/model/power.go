package model

import "time"

// Bounds is a closed power interval in watts. Positive values discharge the
// batteries, negative values charge them.
type Bounds struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Empty reports whether the interval contains no value.
func (b Bounds) Empty() bool { return b.Upper < b.Lower }

// Contains reports whether p lies within the bounds.
func (b Bounds) Contains(p float64) bool { return p >= b.Lower && p <= b.Upper }

// Clamp returns p limited to the bounds.
func (b Bounds) Clamp(p float64) float64 {
	if p > b.Upper {
		return b.Upper
	}
	if p < b.Lower {
		return b.Lower
	}
	return p
}

// Intersect narrows b by o. The result may be empty.
func (b Bounds) Intersect(o Bounds) Bounds {
	return Bounds{Lower: max(b.Lower, o.Lower), Upper: min(b.Upper, o.Upper)}
}

// PowerMetrics is the latest known power envelope of a battery group.
//
// Inclusion bounds are the limits the group can reach. Exclusion bounds
// describe a band around zero the group cannot operate in.
type PowerMetrics struct {
	Timestamp time.Time `json:"timestamp"`
	Inclusion Bounds    `json:"inclusion_bounds"`
	Exclusion Bounds    `json:"exclusion_bounds"`
}
