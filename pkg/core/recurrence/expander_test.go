package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffrota/shiftplanner/pkg/core/model"
)

func date(y int, m time.Month, d, hour int) time.Time {
	return time.Date(y, m, d, hour, 0, 0, 0, time.UTC)
}

func TestExpand_NoRecurrence(t *testing.T) {
	tpl := model.ShiftTemplate{
		ID:    "tpl-1",
		Name:  "One-off",
		Start: date(2026, time.January, 5, 9),
		End:   date(2026, time.January, 5, 13),
	}

	occurrences, err := Expand(tpl)
	require.NoError(t, err)
	require.Len(t, occurrences, 1)

	assert.Equal(t, "tpl-1", occurrences[0].TemplateID)
	assert.Equal(t, tpl.Start, occurrences[0].Start)
	assert.Equal(t, tpl.End, occurrences[0].End)
	assert.Equal(t, OccurrenceID("tpl-1", tpl.Start, 0), occurrences[0].ID)
}

func TestExpand_WeeklyWithWeekdays(t *testing.T) {
	// Base on a Monday, repeating Mon/Wed/Fri for two weeks.
	until := date(2026, time.January, 16, 0)
	tpl := model.ShiftTemplate{
		ID:    "tpl-1",
		Name:  "Morning cover",
		Start: date(2026, time.January, 5, 9), // Monday
		End:   date(2026, time.January, 5, 13),
		Recurrence: &model.RecurrenceRule{
			Kind:     model.RecurrenceWeekly,
			Interval: 1,
			Until:    &until,
			Weekdays: []time.Weekday{time.Monday, time.Wednesday, time.Friday},
		},
	}

	occurrences, err := Expand(tpl)
	require.NoError(t, err)
	require.Len(t, occurrences, 6)

	var days []int
	for _, occ := range occurrences {
		days = append(days, occ.Start.Day())
		assert.Equal(t, 9, occ.Start.Hour())
		assert.Equal(t, 4*time.Hour, occ.End.Sub(occ.Start))
	}
	assert.Equal(t, []int{5, 7, 9, 12, 14, 16}, days)
}

func TestExpand_WeeklyDoesNotDuplicateBase(t *testing.T) {
	// The weekday set contains the base's own weekday; the base occurrence
	// must appear exactly once.
	until := date(2026, time.January, 12, 0)
	tpl := model.ShiftTemplate{
		ID:    "tpl-1",
		Name:  "Morning cover",
		Start: date(2026, time.January, 5, 9), // Monday
		End:   date(2026, time.January, 5, 13),
		Recurrence: &model.RecurrenceRule{
			Kind:     model.RecurrenceWeekly,
			Interval: 1,
			Until:    &until,
			Weekdays: []time.Weekday{time.Monday},
		},
	}

	occurrences, err := Expand(tpl)
	require.NoError(t, err)
	require.Len(t, occurrences, 2)
	assert.Equal(t, 5, occurrences[0].Start.Day())
	assert.Equal(t, 12, occurrences[1].Start.Day())
}

func TestExpand_MonthlyClampsShortMonths(t *testing.T) {
	until := date(2026, time.April, 30, 0)
	tpl := model.ShiftTemplate{
		ID:    "tpl-1",
		Name:  "Month end",
		Start: date(2026, time.January, 31, 18),
		End:   date(2026, time.January, 31, 21),
		Recurrence: &model.RecurrenceRule{
			Kind:     model.RecurrenceMonthly,
			Interval: 1,
			Until:    &until,
		},
	}

	occurrences, err := Expand(tpl)
	require.NoError(t, err)
	require.Len(t, occurrences, 4)

	assert.Equal(t, date(2026, time.January, 31, 18), occurrences[0].Start)
	assert.False(t, occurrences[0].DayAdjusted)

	// February clamps to the 28th and is flagged.
	assert.Equal(t, date(2026, time.February, 28, 18), occurrences[1].Start)
	assert.True(t, occurrences[1].DayAdjusted)

	// March resumes the 31st rather than drifting to the 28th.
	assert.Equal(t, date(2026, time.March, 31, 18), occurrences[2].Start)
	assert.False(t, occurrences[2].DayAdjusted)

	assert.Equal(t, date(2026, time.April, 30, 18), occurrences[3].Start)
	assert.True(t, occurrences[3].DayAdjusted)
}

func TestExpand_DefaultHorizon(t *testing.T) {
	tpl := model.ShiftTemplate{
		ID:    "tpl-1",
		Name:  "Daily",
		Start: date(2026, time.January, 5, 9),
		End:   date(2026, time.January, 5, 13),
		Recurrence: &model.RecurrenceRule{
			Kind:     model.RecurrenceDaily,
			Interval: 1,
		},
	}

	occurrences, err := Expand(tpl)
	require.NoError(t, err)

	// Base plus one instance per day until twelve months out, inclusive.
	assert.Len(t, occurrences, 366)
	last := occurrences[len(occurrences)-1]
	assert.Equal(t, date(2027, time.January, 5, 9), last.Start)
}

func TestExpand_DeterministicIDs(t *testing.T) {
	until := date(2026, time.March, 5, 0)
	tpl := model.ShiftTemplate{
		ID:    "tpl-1",
		Name:  "Weekly",
		Start: date(2026, time.January, 5, 9),
		End:   date(2026, time.January, 5, 13),
		Recurrence: &model.RecurrenceRule{
			Kind:     model.RecurrenceWeekly,
			Interval: 1,
			Until:    &until,
		},
	}

	first, err := Expand(tpl)
	require.NoError(t, err)
	second, err := Expand(tpl)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}

	// Different templates never collide even on identical timing.
	other := tpl
	other.ID = "tpl-2"
	third, err := Expand(other)
	require.NoError(t, err)
	assert.NotEqual(t, first[0].ID, third[0].ID)
}

func TestExpand_CopiesRequirements(t *testing.T) {
	until := date(2026, time.January, 12, 0)
	tpl := model.ShiftTemplate{
		ID:    "tpl-1",
		Name:  "Weekly",
		Start: date(2026, time.January, 5, 9),
		End:   date(2026, time.January, 5, 13),
		Recurrence: &model.RecurrenceRule{
			Kind:     model.RecurrenceWeekly,
			Interval: 1,
			Until:    &until,
		},
		Requirements: model.Requirements{
			Headcount: 2,
			Traits:    []model.TraitRequirement{{TraitID: "first-aid", MinCount: 1}},
		},
	}

	occurrences, err := Expand(tpl)
	require.NoError(t, err)
	require.Len(t, occurrences, 2)

	occurrences[0].Requirements.Traits[0].MinCount = 99
	assert.Equal(t, 1, occurrences[1].Requirements.Traits[0].MinCount)
	assert.Equal(t, 1, tpl.Requirements.Traits[0].MinCount)
}

func TestExpand_InvalidRules(t *testing.T) {
	base := model.ShiftTemplate{
		ID:    "tpl-1",
		Name:  "Broken",
		Start: date(2026, time.January, 5, 9),
		End:   date(2026, time.January, 5, 13),
	}

	badInterval := base
	badInterval.Recurrence = &model.RecurrenceRule{Kind: model.RecurrenceDaily, Interval: 0}
	_, err := Expand(badInterval)
	assert.ErrorContains(t, err, "invalid recurrence interval")

	badKind := base
	badKind.Recurrence = &model.RecurrenceRule{Kind: "fortnightly", Interval: 1}
	_, err = Expand(badKind)
	assert.ErrorContains(t, err, "invalid recurrence kind")

	backwards := base
	backwards.End = backwards.Start.Add(-time.Hour)
	_, err = Expand(backwards)
	assert.ErrorContains(t, err, "is not after start")

	noID := base
	noID.ID = ""
	_, err = Expand(noID)
	assert.ErrorContains(t, err, "no id")
}
