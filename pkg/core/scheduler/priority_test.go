package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffrota/shiftplanner/pkg/core/model"
)

func newSchedule(work []model.ShiftOccurrence, roster []model.StaffMember) *schedule {
	return &schedule{
		work:   work,
		roster: roster,
		result: &Result{Assignments: map[string][]string{}},
	}
}

func candidateIDs(pool []candidate) []string {
	ids := make([]string, 0, len(pool))
	for _, c := range pool {
		ids = append(ids, c.member.ID)
	}
	return ids
}

func TestCandidates_TraitHolderRanksFirst(t *testing.T) {
	occ := requireTrait(occurrence("occ-1", 0, 9, 2), "first-aid", 1)
	roster := []model.StaffMember{
		{ID: "alice", Name: "Alice"},
		{ID: "bob", Name: "Bob", TraitIDs: []string{"first-aid"}},
	}
	s := newSchedule([]model.ShiftOccurrence{occ}, roster)

	pool := s.candidates(&s.work[0], nil)
	assert.Equal(t, []string{"bob", "alice"}, candidateIDs(pool))
}

func TestCandidates_TraitBonusDropsOnceMet(t *testing.T) {
	occ := requireTrait(occurrence("occ-1", 0, 9, 3, "carol"), "first-aid", 1)
	roster := []model.StaffMember{
		{ID: "alice", Name: "Alice"},
		{ID: "bob", Name: "Bob", TraitIDs: []string{"first-aid"}},
		{ID: "carol", Name: "Carol", TraitIDs: []string{"first-aid"}},
	}
	s := newSchedule([]model.ShiftOccurrence{occ}, roster)

	// Carol already covers the minimum, so Bob gets no bonus and the tie
	// falls to id order.
	pool := s.candidates(&s.work[0], nil)
	assert.Equal(t, []string{"alice", "bob"}, candidateIDs(pool))
}

func TestCandidates_WeekLoadBalances(t *testing.T) {
	work := []model.ShiftOccurrence{
		occurrence("occ-1", 0, 9, 1, "alice"),
		occurrence("occ-2", 2, 9, 1),
	}
	roster := []model.StaffMember{
		{ID: "alice", Name: "Alice"},
		{ID: "bob", Name: "Bob"},
	}
	s := newSchedule(work, roster)

	// Alice already works Monday; Bob outranks her for Wednesday.
	pool := s.candidates(&s.work[1], nil)
	assert.Equal(t, []string{"bob", "alice"}, candidateIDs(pool))
}

func TestCandidates_FlexibilityPrefersUncappedStaff(t *testing.T) {
	two := 2
	work := []model.ShiftOccurrence{occurrence("occ-1", 0, 9, 1)}
	roster := []model.StaffMember{
		{ID: "alice", Name: "Alice", Constraints: model.StaffConstraints{MaxShiftsPerWeek: &two}},
		{ID: "bob", Name: "Bob"},
	}
	s := newSchedule(work, roster)

	pool := s.candidates(&s.work[0], nil)
	assert.Equal(t, []string{"bob", "alice"}, candidateIDs(pool))
}

func TestCandidates_ViolationFreeBreaksTies(t *testing.T) {
	// Alice and Bob carry the same week load and score identically, but
	// Alice would breach her partner rest period with Carol; Bob wins the
	// tie despite the lower id.
	work := []model.ShiftOccurrence{
		occurrence("occ-1", 0, 9, 2, "alice", "carol"),
		occurrence("occ-2", 0, 14, 1, "bob"),
		occurrence("occ-3", 1, 9, 2, "carol"),
	}
	roster := []model.StaffMember{
		{
			ID: "alice", Name: "Alice",
			Constraints: model.StaffConstraints{RestDaysWithStaff: map[string]int{"carol": 3}},
		},
		{ID: "bob", Name: "Bob"},
		{ID: "carol", Name: "Carol"},
	}
	s := newSchedule(work, roster)

	pool := s.candidates(&s.work[2], nil)
	require.Len(t, pool, 2)
	assert.Equal(t, "bob", pool[0].member.ID)
	assert.Empty(t, pool[0].violations)
	assert.Equal(t, "alice", pool[1].member.ID)
	assert.NotEmpty(t, pool[1].violations)
}

func TestCandidates_FilterRestrictsPool(t *testing.T) {
	work := []model.ShiftOccurrence{occurrence("occ-1", 0, 9, 2)}
	roster := []model.StaffMember{
		{ID: "alice", Name: "Alice", TraitIDs: []string{"key-holder"}},
		{ID: "bob", Name: "Bob"},
	}
	s := newSchedule(work, roster)

	pool := s.candidates(&s.work[0], func(m *model.StaffMember) bool {
		return m.HasTrait("key-holder")
	})
	assert.Equal(t, []string{"alice"}, candidateIDs(pool))
}

func TestCandidates_SkipsAssignedAndExcluded(t *testing.T) {
	occ := occurrence("occ-1", 0, 9, 3, "alice")
	occ.Requirements.ExcludedTraitIDs = []string{"trainee"}
	roster := []model.StaffMember{
		{ID: "alice", Name: "Alice"},
		{ID: "bob", Name: "Bob", TraitIDs: []string{"trainee"}},
		{ID: "carol", Name: "Carol"},
	}
	s := newSchedule([]model.ShiftOccurrence{occ}, roster)

	pool := s.candidates(&s.work[0], nil)
	assert.Equal(t, []string{"carol"}, candidateIDs(pool))
}

func TestPriorityScore(t *testing.T) {
	three := 3
	work := []model.ShiftOccurrence{
		occurrence("occ-1", 0, 9, 1, "alice"),
		occurrence("occ-2", 2, 9, 1, "alice"),
	}
	roster := []model.StaffMember{
		{ID: "alice", Name: "Alice", Constraints: model.StaffConstraints{MaxShiftsPerWeek: &three}},
	}
	s := newSchedule(work, roster)

	occ := occurrence("occ-3", 4, 9, 1)
	// Base 100, two assignments this week at -5 each, weekly max 3.
	assert.Equal(t, 93, s.priorityScore(&s.roster[0], &occ))
}
