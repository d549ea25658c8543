package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/staffrota/shiftplanner/pkg/core/model"
)

// mockScheduleStore implements AutoScheduleStore and CheckAssignmentStore for
// testing
type mockScheduleStore struct {
	occurrences []model.ShiftOccurrence
	staff       []model.StaffMember
	traits      []model.Trait
	upserted    []model.ShiftOccurrence
}

func (m *mockScheduleStore) GetOccurrencesInRange(ctx context.Context, from, to time.Time) ([]model.ShiftOccurrence, error) {
	var out []model.ShiftOccurrence
	for _, occ := range m.occurrences {
		if !occ.Start.Before(from) && occ.Start.Before(to) {
			out = append(out, occ)
		}
	}
	return out, nil
}

func (m *mockScheduleStore) GetOccurrence(ctx context.Context, id string) (*model.ShiftOccurrence, error) {
	for i := range m.occurrences {
		if m.occurrences[i].ID == id {
			return &m.occurrences[i], nil
		}
	}
	return nil, errors.New("occurrence not found")
}

func (m *mockScheduleStore) GetStaff(ctx context.Context) ([]model.StaffMember, error) {
	return m.staff, nil
}

func (m *mockScheduleStore) GetStaffMember(ctx context.Context, id string) (*model.StaffMember, error) {
	for i := range m.staff {
		if m.staff[i].ID == id {
			return &m.staff[i], nil
		}
	}
	return nil, errors.New("staff member not found")
}

func (m *mockScheduleStore) GetTraits(ctx context.Context) ([]model.Trait, error) {
	return m.traits, nil
}

func (m *mockScheduleStore) UpsertOccurrences(ctx context.Context, occurrences []model.ShiftOccurrence) error {
	m.upserted = append(m.upserted, occurrences...)
	return nil
}

func weekShift(id string, day, hour, headcount int, staffIDs ...string) model.ShiftOccurrence {
	start := time.Date(2026, time.January, 5+day, hour, 0, 0, 0, time.UTC)
	return model.ShiftOccurrence{
		ID:               id,
		TemplateID:       "tpl-1",
		Name:             "Drop-in",
		Start:            start,
		End:              start.Add(3 * time.Hour),
		Requirements:     model.Requirements{Headcount: headcount},
		AssignedStaffIDs: staffIDs,
	}
}

func TestAutoSchedule_FillsAndSaves(t *testing.T) {
	store := &mockScheduleStore{
		occurrences: []model.ShiftOccurrence{
			weekShift("occ-1", 0, 9, 1),
			weekShift("occ-2", 2, 9, 1),
			weekShift("occ-3", 9, 9, 1), // next week, out of range
		},
		staff: []model.StaffMember{
			{ID: "alice", Name: "Alice"},
			{ID: "bob", Name: "Bob"},
		},
	}

	weekStart := time.Date(2026, time.January, 7, 12, 0, 0, 0, time.UTC) // mid-week Wednesday
	result, err := AutoSchedule(context.Background(), store, testConfig(), zap.NewNop(), weekStart, false, false)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.True(t, result.Saved)
	assert.Equal(t, time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC), result.WeekStart)

	// Both in-range occurrences changed and were saved. They stay
	// unmodified: the merge keeps assignments through regeneration, and
	// isModified is reserved for manual edits.
	require.Len(t, store.upserted, 2)
	for _, occ := range store.upserted {
		assert.False(t, occ.IsModified)
		assert.Len(t, occ.AssignedStaffIDs, 1)
	}
}

func TestAutoSchedule_TemplateEditsPropagateToSavedAssignments(t *testing.T) {
	tpl := weeklyTemplate(21)
	generated := generatedSeries(t, tpl)

	store := &mockScheduleStore{
		occurrences: generated[:1],
		staff:       []model.StaffMember{{ID: "alice", Name: "Alice"}},
	}
	store.occurrences[0].Requirements.Headcount = 1

	_, err := AutoSchedule(context.Background(), store, testConfig(), zap.NewNop(),
		generated[0].Start, false, false)
	require.NoError(t, err)
	require.Len(t, store.upserted, 1)

	// A later non-destructive rename regenerates over the saved occurrence:
	// the new name wins while the scheduled assignment survives.
	renamed := tpl
	renamed.Name = "Evening drop-in"
	regenerated := generatedSeries(t, renamed)

	merged := MergeOccurrences(regenerated, store.upserted)
	require.NotEmpty(t, merged)
	assert.Equal(t, "Evening drop-in", merged[0].Name)
	assert.Equal(t, []string{"alice"}, merged[0].AssignedStaffIDs)
}

func TestAutoSchedule_DryRunDoesNotSave(t *testing.T) {
	store := &mockScheduleStore{
		occurrences: []model.ShiftOccurrence{weekShift("occ-1", 0, 9, 1)},
		staff:       []model.StaffMember{{ID: "alice", Name: "Alice"}},
	}

	result, err := AutoSchedule(context.Background(), store, testConfig(), zap.NewNop(),
		time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC), true, false)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.False(t, result.Saved)
	assert.Empty(t, store.upserted)
}

func TestAutoSchedule_IncompleteNotSavedWithoutForce(t *testing.T) {
	store := &mockScheduleStore{
		occurrences: []model.ShiftOccurrence{weekShift("occ-1", 0, 9, 2)},
		staff:       []model.StaffMember{{ID: "alice", Name: "Alice"}},
	}
	weekStart := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)

	result, err := AutoSchedule(context.Background(), store, testConfig(), zap.NewNop(), weekStart, false, false)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.False(t, result.Saved)
	assert.Empty(t, store.upserted)

	// force-commit saves the partial fill.
	result, err = AutoSchedule(context.Background(), store, testConfig(), zap.NewNop(), weekStart, false, true)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.True(t, result.Saved)
	require.Len(t, store.upserted, 1)
	assert.Equal(t, []string{"alice"}, store.upserted[0].AssignedStaffIDs)
}

func TestAutoSchedule_UnchangedOccurrencesNotRewritten(t *testing.T) {
	store := &mockScheduleStore{
		occurrences: []model.ShiftOccurrence{
			weekShift("occ-1", 0, 9, 1, "alice"),
			weekShift("occ-2", 2, 9, 1),
		},
		staff: []model.StaffMember{
			{ID: "alice", Name: "Alice"},
			{ID: "bob", Name: "Bob"},
		},
	}

	result, err := AutoSchedule(context.Background(), store, testConfig(), zap.NewNop(),
		time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC), false, false)
	require.NoError(t, err)
	assert.True(t, result.Success)

	// occ-1 was already staffed and untouched; only occ-2 is written.
	require.Len(t, store.upserted, 1)
	assert.Equal(t, "occ-2", store.upserted[0].ID)
}

func TestAutoSchedule_AppliesOrgDefaults(t *testing.T) {
	one := 1
	cfg := testConfig()
	cfg.DefaultMaxShiftsPerWeek = &one

	store := &mockScheduleStore{
		occurrences: []model.ShiftOccurrence{
			weekShift("occ-1", 0, 9, 1),
			weekShift("occ-2", 2, 9, 1),
		},
		staff: []model.StaffMember{{ID: "alice", Name: "Alice"}},
	}

	result, err := AutoSchedule(context.Background(), store, cfg, zap.NewNop(),
		time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC), false, false)
	require.NoError(t, err)

	// The org-wide weekly cap is soft: both seats fill, with a warning for
	// the second.
	assert.True(t, result.Success)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "exceeding the maximum of 1")
}

func TestCheckAssignment_ReportsViolations(t *testing.T) {
	occ := weekShift("occ-1", 0, 9, 2, "bob")
	store := &mockScheduleStore{
		occurrences: []model.ShiftOccurrence{occ},
		staff: []model.StaffMember{
			{ID: "alice", Name: "Alice", Constraints: model.StaffConstraints{IncompatibleWith: []string{"bob"}}},
			{ID: "bob", Name: "Bob"},
		},
	}

	result, err := CheckAssignment(context.Background(), store, zap.NewNop(), "alice", "occ-1")
	require.NoError(t, err)

	assert.Equal(t, "Alice", result.StaffName)
	assert.Equal(t, "Drop-in", result.ShiftName)
	require.Len(t, result.Violations, 1)
	assert.Contains(t, result.Violations[0].Detail(), "Bob")
}

func TestCheckAssignment_CleanAssignment(t *testing.T) {
	store := &mockScheduleStore{
		occurrences: []model.ShiftOccurrence{weekShift("occ-1", 0, 9, 2)},
		staff:       []model.StaffMember{{ID: "alice", Name: "Alice"}},
	}

	result, err := CheckAssignment(context.Background(), store, zap.NewNop(), "alice", "occ-1")
	require.NoError(t, err)
	assert.Empty(t, result.Violations)
}

func TestCheckAssignment_DeletedOccurrence(t *testing.T) {
	occ := weekShift("occ-1", 0, 9, 2)
	occ.IsDeleted = true
	store := &mockScheduleStore{
		occurrences: []model.ShiftOccurrence{occ},
		staff:       []model.StaffMember{{ID: "alice", Name: "Alice"}},
	}

	_, err := CheckAssignment(context.Background(), store, zap.NewNop(), "alice", "occ-1")
	assert.ErrorContains(t, err, "is deleted")
}
