// Package recurrence expands recurring shift templates and blocked-time
// entries into concrete dated instances.
package recurrence

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/staffrota/shiftplanner/pkg/core/model"
)

// DefaultHorizonMonths bounds expansion when a recurrence has no end date.
const DefaultHorizonMonths = 12

// occurrenceNamespace is the fixed uuid v5 namespace for occurrence ids.
var occurrenceNamespace = uuid.MustParse("9f2c1e7a-5b4d-4c3e-8a21-7d0f64d1b6aa")

// OccurrenceID derives the stable id for an occurrence of a template.
// The same (template id, start, index) triple always yields the same id,
// so regeneration reuses ids instead of minting duplicates.
func OccurrenceID(templateID string, start time.Time, index int) string {
	key := fmt.Sprintf("%s|%d|%d", templateID, start.UTC().Unix(), index)
	return uuid.NewSHA1(occurrenceNamespace, []byte(key)).String()
}

// Expand generates the full occurrence series for a template: the base
// occurrence at index 0 plus every recurrence instance up to the rule's end
// date, or DefaultHorizonMonths from the template start when no end date is
// set. The result is ordered by start time and carries no staff assignments.
func Expand(tpl model.ShiftTemplate) ([]model.ShiftOccurrence, error) {
	if tpl.ID == "" {
		return nil, fmt.Errorf("template has no id")
	}
	if !tpl.End.After(tpl.Start) {
		return nil, fmt.Errorf("template %q: end %s is not after start %s", tpl.Name, tpl.End, tpl.Start)
	}

	duration := tpl.End.Sub(tpl.Start)

	occurrences := []model.ShiftOccurrence{
		newOccurrence(tpl, tpl.Start, duration, 0, false),
	}

	rule := tpl.Recurrence
	if rule == nil {
		return occurrences, nil
	}
	if err := validateRule(rule); err != nil {
		return nil, fmt.Errorf("template %q: %w", tpl.Name, err)
	}

	boundary := horizonEnd(tpl.Start, rule)

	iterate(tpl.Start, *rule, func(start time.Time, adjusted bool) bool {
		if start.After(boundary) {
			return false
		}
		// A recurrence can land back on the base timestamp (e.g. an explicit
		// weekday set containing the start's own weekday). Never duplicate it.
		if start.Equal(tpl.Start) {
			return true
		}
		index := len(occurrences)
		occurrences = append(occurrences, newOccurrence(tpl, start, duration, index, adjusted))
		return true
	})

	return occurrences, nil
}

func newOccurrence(tpl model.ShiftTemplate, start time.Time, duration time.Duration, index int, adjusted bool) model.ShiftOccurrence {
	return model.ShiftOccurrence{
		ID:           OccurrenceID(tpl.ID, start, index),
		TemplateID:   tpl.ID,
		Name:         tpl.Name,
		Start:        start,
		End:          start.Add(duration),
		Requirements: copyRequirements(tpl.Requirements),
		DayAdjusted:  adjusted,
	}
}

// Occurrences inherit requirements by value; aliasing the template's slices
// would let a later manual edit leak across the whole series.
func copyRequirements(r model.Requirements) model.Requirements {
	out := model.Requirements{Headcount: r.Headcount}
	if len(r.Traits) > 0 {
		out.Traits = make([]model.TraitRequirement, len(r.Traits))
		copy(out.Traits, r.Traits)
	}
	if len(r.ExcludedTraitIDs) > 0 {
		out.ExcludedTraitIDs = make([]string, len(r.ExcludedTraitIDs))
		copy(out.ExcludedTraitIDs, r.ExcludedTraitIDs)
	}
	return out
}

func validateRule(rule *model.RecurrenceRule) error {
	if !rule.Kind.IsValid() {
		return fmt.Errorf("invalid recurrence kind %q", rule.Kind)
	}
	if rule.Interval <= 0 {
		return fmt.Errorf("invalid recurrence interval %d", rule.Interval)
	}
	return nil
}

// horizonEnd returns the last instant a candidate start may occupy. An
// explicit end date is inclusive of its whole day.
func horizonEnd(base time.Time, rule *model.RecurrenceRule) time.Time {
	if rule.Until != nil {
		u := *rule.Until
		return time.Date(u.Year(), u.Month(), u.Day(), 23, 59, 59, 0, u.Location())
	}
	return base.AddDate(0, DefaultHorizonMonths, 0)
}

// iterate produces successive recurrence starts after base, calling yield for
// each. Iteration stops when yield returns false. Candidates are strictly
// increasing, so termination is the caller's boundary check.
func iterate(base time.Time, rule model.RecurrenceRule, yield func(start time.Time, adjusted bool) bool) {
	switch rule.Kind {
	case model.RecurrenceDaily:
		for cur := base.AddDate(0, 0, rule.Interval); ; cur = cur.AddDate(0, 0, rule.Interval) {
			if !yield(cur, false) {
				return
			}
		}
	case model.RecurrenceWeekly:
		if len(rule.Weekdays) == 0 {
			for cur := base.AddDate(0, 0, 7*rule.Interval); ; cur = cur.AddDate(0, 0, 7*rule.Interval) {
				if !yield(cur, false) {
					return
				}
			}
		}
		iterateWeekdays(base, rule, yield)
	case model.RecurrenceMonthly:
		iterateMonthly(base, rule, yield)
	}
}

// iterateWeekdays walks an explicit weekday set: the next configured weekday
// later in the same week, or the first configured weekday once the series
// jumps Interval weeks ahead.
func iterateWeekdays(base time.Time, rule model.RecurrenceRule, yield func(start time.Time, adjusted bool) bool) {
	offsets := weekdayOffsets(rule.Weekdays)
	for cur := base; ; {
		curOffset := isoOffset(cur.Weekday())

		next := time.Time{}
		for _, o := range offsets {
			if o > curOffset {
				next = cur.AddDate(0, 0, o-curOffset)
				break
			}
		}
		if next.IsZero() {
			// Nothing left this week: jump to the first configured weekday
			// after advancing Interval-1 additional weeks.
			next = cur.AddDate(0, 0, 7*rule.Interval-curOffset+offsets[0])
		}

		if !yield(next, false) {
			return
		}
		cur = next
	}
}

// iterateMonthly steps by Interval months while preserving the base
// day-of-month, clamping to the last day of shorter months. Clamping is
// anchored on the base day so a 31st series resumes the 31st after a
// 30-day month rather than drifting.
func iterateMonthly(base time.Time, rule model.RecurrenceRule, yield func(start time.Time, adjusted bool) bool) {
	day := base.Day()
	for step := 1; ; step++ {
		first := time.Date(base.Year(), base.Month()+time.Month(step*rule.Interval), 1,
			base.Hour(), base.Minute(), base.Second(), base.Nanosecond(), base.Location())
		d := day
		adjusted := false
		if last := daysInMonth(first); d > last {
			d = last
			adjusted = true
		}
		next := first.AddDate(0, 0, d-1)
		if !yield(next, adjusted) {
			return
		}
	}
}

func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// isoOffset maps a weekday to its offset within an ISO week (Monday=0).
func isoOffset(w time.Weekday) int {
	return (int(w) + 6) % 7
}

// weekdayOffsets converts a weekday set to sorted ISO offsets, deduplicated.
func weekdayOffsets(weekdays []time.Weekday) []int {
	seen := make(map[int]bool, len(weekdays))
	var offsets []int
	for _, w := range weekdays {
		o := isoOffset(w)
		if !seen[o] {
			seen[o] = true
			offsets = append(offsets, o)
		}
	}
	for i := 1; i < len(offsets); i++ {
		for j := i; j > 0 && offsets[j] < offsets[j-1]; j-- {
			offsets[j], offsets[j-1] = offsets[j-1], offsets[j]
		}
	}
	return offsets
}
