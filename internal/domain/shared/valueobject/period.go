package valueobject

import (
	"errors"
	"time"
)

// Period is an inclusive calendar range. Both bounds are truncated to days.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewPeriod creates a Period, rejecting an end before the start
func NewPeriod(start, end time.Time) (Period, error) {
	p := Period{Start: StartOfDay(start), End: StartOfDay(end)}
	if p.End.Before(p.Start) {
		return Period{}, errors.New("period end must not be before start")
	}
	return p, nil
}

// Contains reports whether t falls on a day within the period
func (p Period) Contains(t time.Time) bool {
	d := StartOfDay(t)
	return !d.Before(p.Start) && !d.After(p.End)
}

// Overlaps reports whether the range [from, to] shares at least one day
// with the period. A zero to means open-ended.
func (p Period) Overlaps(from, to time.Time) bool {
	if StartOfDay(from).After(p.End) {
		return false
	}
	if !to.IsZero() && StartOfDay(to).Before(p.Start) {
		return false
	}
	return true
}

// Days returns the number of days between start and end, at least 1
func (p Period) Days() int {
	d := DaysBetween(p.Start, p.End)
	if d < 1 {
		return 1
	}
	return d
}

// StartOfDay truncates t to midnight in its own location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysBetween returns whole calendar days from a to b (negative if b is before a)
func DaysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// AbsDaysBetween returns the absolute number of calendar days between a and b
func AbsDaysBetween(a, b time.Time) int {
	d := DaysBetween(a, b)
	if d < 0 {
		return -d
	}
	return d
}
