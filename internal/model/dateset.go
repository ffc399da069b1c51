package model

import (
	"slices"
	"time"
)

// DayFormat is the calendar-day layout used throughout: ISO dates
// without a time component.
const DayFormat = "2006-01-02"

// ValidDay reports whether day is a well-formed ISO calendar day.
func ValidDay(day string) bool {
	_, err := time.Parse(DayFormat, day)
	return err == nil
}

// DateSet is a set of ISO calendar days. Membership is binary: a day is
// either marked or it is not, never counted.
type DateSet map[string]struct{}

// NewDateSet builds a set from the given days. Duplicates collapse.
func NewDateSet(days ...string) DateSet {
	s := make(DateSet, len(days))
	for _, d := range days {
		s[d] = struct{}{}
	}
	return s
}

// Has reports whether day is marked.
func (s DateSet) Has(day string) bool {
	_, ok := s[day]
	return ok
}

// Toggle flips membership of day and reports the resulting membership.
// Applying it twice restores the original state.
func (s DateSet) Toggle(day string) bool {
	if s.Has(day) {
		delete(s, day)
		return false
	}
	s[day] = struct{}{}
	return true
}

// Days returns the marked days in ascending order. ISO days sort
// lexicographically in chronological order.
func (s DateSet) Days() []string {
	days := make([]string, 0, len(s))
	for d := range s {
		days = append(days, d)
	}
	slices.Sort(days)
	return days
}

// Clone returns an independent copy of the set.
func (s DateSet) Clone() DateSet {
	c := make(DateSet, len(s))
	for d := range s {
		c[d] = struct{}{}
	}
	return c
}
