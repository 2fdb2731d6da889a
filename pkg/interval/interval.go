package interval

import "time"

// Interval is a closed date interval. A nil End means the interval is open
// ended and extends indefinitely.
type Interval struct {
	Start time.Time
	End   *time.Time
}

// New builds an interval from a start and an optional end.
func New(start time.Time, end *time.Time) Interval {
	return Interval{Start: start, End: end}
}

// NormalizeDate truncates a value to midnight UTC so date-only and
// date-time inputs compare on the same granularity.
func NormalizeDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Overlap reports whether two intervals share at least one instant.
// Boundaries are inclusive: an interval ending on day N overlaps one
// starting on day N. A nil end behaves as an unbounded upper limit.
func Overlap(a, b Interval) bool {
	aStart := NormalizeDate(a.Start)
	bStart := NormalizeDate(b.Start)

	// Both open ended intervals always share the later start onward.
	if a.End == nil && b.End == nil {
		return true
	}
	if a.End == nil {
		return !NormalizeDate(*b.End).Before(aStart)
	}
	if b.End == nil {
		return !NormalizeDate(*a.End).Before(bStart)
	}
	aEnd := NormalizeDate(*a.End)
	bEnd := NormalizeDate(*b.End)
	return !(aEnd.Before(bStart) || bEnd.Before(aStart))
}

// Overlaps reports whether the interval shares an instant with other.
func (i Interval) Overlaps(other Interval) bool {
	return Overlap(i, other)
}
