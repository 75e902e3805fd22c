// Package model contains domain models passed between layers.
package model

import (
	"sort"
)

// ServicePeriod is one (period, team) entry of a career, e.g. {"1990-1992", "Ajax"}.
// Periods are compared by exact string equality of both fields.
type ServicePeriod struct {
	Label string
	Team  string
}

// PeriodSet is a deduplicated, unordered set of service periods.
type PeriodSet map[ServicePeriod]struct{}

// NewPeriodSet builds a set from the given periods; duplicates collapse.
func NewPeriodSet(periods ...ServicePeriod) PeriodSet {
	s := make(PeriodSet, len(periods))
	for _, p := range periods {
		s[p] = struct{}{}
	}
	return s
}

// Add inserts p into the set.
func (s PeriodSet) Add(p ServicePeriod) { s[p] = struct{}{} }

// Has reports whether p is in the set.
func (s PeriodSet) Has(p ServicePeriod) bool {
	_, ok := s[p]
	return ok
}

// Len returns the number of distinct periods.
func (s PeriodSet) Len() int { return len(s) }

// Intersect returns the periods present in both sets. Nil sets behave as empty.
func (s PeriodSet) Intersect(other PeriodSet) PeriodSet {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	out := make(PeriodSet)
	for p := range small {
		if _, ok := large[p]; ok {
			out[p] = struct{}{}
		}
	}
	return out
}

// Overlaps reports whether the sets share at least one period without
// allocating the intersection.
func (s PeriodSet) Overlaps(other PeriodSet) bool {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	for p := range small {
		if _, ok := large[p]; ok {
			return true
		}
	}
	return false
}

// Sorted returns the periods ordered by label, then team.
func (s PeriodSet) Sorted() []ServicePeriod {
	out := make([]ServicePeriod, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Label != out[j].Label {
			return out[i].Label < out[j].Label
		}
		return out[i].Team < out[j].Team
	})
	return out
}

// PlayerRecord is a player as seen by the engine.
type PlayerRecord struct {
	Key         string // canonical key, names.Normalize(DisplayName)
	DisplayName string
	SourceURL   string
	Biography   string
	Club        PeriodSet
	Intl        PeriodSet
}

// RawRecord is the persisted shape of a player. Career fields hold JSON arrays
// of [label, team] pairs.
type RawRecord struct {
	Key         string `json:"key"`
	DisplayName string `json:"display_name"`
	SourceURL   string `json:"source_url"`
	Biography   string `json:"biography"`
	ClubCareer  string `json:"club_career"`
	IntlCareer  string `json:"intl_career"`
}
