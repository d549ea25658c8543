package recurrence

import (
	"time"

	"github.com/staffrota/shiftplanner/pkg/core/model"
)

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two intervals share any instant. Boundaries are
// exclusive: an interval ending exactly when another starts does not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// ExpandBlockedTime unrolls a blocked-time entry into concrete intervals that
// overlap the window [from, until). Recurring entries use the same stepping
// rules as shift templates; full-day entries are widened to whole days.
// Malformed recurrence rules on blocked times are ignored rather than
// rejected: unavailability data comes from external CRUD and a bad rule must
// not wedge every evaluation that touches the member.
func ExpandBlockedTime(bt model.BlockedTime, from, until time.Time) []Interval {
	var out []Interval
	window := Interval{Start: from, End: until}

	if base := blockedInterval(bt, bt.Start); base.Overlaps(window) {
		out = append(out, base)
	}

	rule := bt.Recurrence
	if rule == nil || validateRule(rule) != nil {
		return out
	}

	boundary := horizonEnd(bt.Start, rule)
	if boundary.After(until) {
		boundary = until
	}

	iterate(bt.Start, *rule, func(start time.Time, _ bool) bool {
		if start.After(boundary) {
			return false
		}
		if start.Equal(bt.Start) {
			return true
		}
		if inst := blockedInterval(bt, start); inst.Overlaps(window) {
			out = append(out, inst)
		}
		return true
	})

	return out
}

// blockedInterval materializes one instance of the entry at the given start.
func blockedInterval(bt model.BlockedTime, start time.Time) Interval {
	if bt.IsFullDay {
		s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
		// Widen to cover every day the original window touches.
		days := 1
		if bt.End.After(bt.Start) {
			endDay := time.Date(bt.End.Year(), bt.End.Month(), bt.End.Day(), 0, 0, 0, 0, bt.End.Location())
			startDay := time.Date(bt.Start.Year(), bt.Start.Month(), bt.Start.Day(), 0, 0, 0, 0, bt.Start.Location())
			days = int(endDay.Sub(startDay).Hours()/24) + 1
		}
		return Interval{Start: s, End: s.AddDate(0, 0, days)}
	}
	return Interval{Start: start, End: start.Add(bt.End.Sub(bt.Start))}
}
