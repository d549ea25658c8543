package scheduler

import (
	"sort"

	"github.com/staffrota/shiftplanner/pkg/core/constraint"
	"github.com/staffrota/shiftplanner/pkg/core/model"
)

const (
	basePriority    = 100
	traitMatchBonus = 50
	weekLoadPenalty = 5

	// defaultWeeklyFlexibility stands in for an unset weekly maximum in the
	// priority score: one shift per day, the most flexible a member can be.
	defaultWeeklyFlexibility = 7
)

// candidate is a staff member eligible for a seat, with the priority score
// and the soft violations the assignment would incur.
type candidate struct {
	member     *model.StaffMember
	score      int
	violations []constraint.Violation
}

// candidates builds the ranked eligible pool for an occurrence. The filter,
// when non-nil, restricts the pool (trait-fill). Members already assigned,
// members holding an excluded trait, and members with any hard violation
// (blocked time, daily limit, incompatibility with an already-assigned
// member) are never candidates.
func (s *schedule) candidates(occ *model.ShiftOccurrence, filter func(*model.StaffMember) bool) []candidate {
	var pool []candidate

	for i := range s.roster {
		member := &s.roster[i]
		if occ.HasStaff(member.ID) {
			continue
		}
		if filter != nil && !filter(member) {
			continue
		}
		if holdsExcludedTrait(member, occ.Requirements) {
			continue
		}

		violations := constraint.Evaluate(*member, *occ, s.roster, s.work, nil)
		if constraint.HasHard(violations) {
			continue
		}

		pool = append(pool, candidate{
			member:     member,
			score:      s.priorityScore(member, occ),
			violations: violations,
		})
	}

	// Higher score first; among equals, violation-free candidates outrank
	// candidates with any violation; then by id for determinism.
	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].score != pool[j].score {
			return pool[i].score > pool[j].score
		}
		if (len(pool[i].violations) == 0) != (len(pool[j].violations) == 0) {
			return len(pool[i].violations) == 0
		}
		return pool[i].member.ID < pool[j].member.ID
	})

	return pool
}

// priorityScore ranks a candidate for an occurrence: a fixed base, a bonus
// for covering an outstanding trait requirement, a penalty per assignment
// already held this week (load balancing), and the member's weekly maximum
// so more flexible staff are preferred.
func (s *schedule) priorityScore(member *model.StaffMember, occ *model.ShiftOccurrence) int {
	score := basePriority

	if coversOutstandingTrait(member, occ, s.roster) {
		score += traitMatchBonus
	}

	score -= weekLoadPenalty * s.weekAssignments(member.ID)

	if member.Constraints.MaxShiftsPerWeek != nil {
		score += *member.Constraints.MaxShiftsPerWeek
	} else {
		score += defaultWeeklyFlexibility
	}

	return score
}

func (s *schedule) weekAssignments(staffID string) int {
	count := 0
	for i := range s.work {
		if s.work[i].HasStaff(staffID) {
			count++
		}
	}
	return count
}

// coversOutstandingTrait reports whether the member holds a required trait
// the occurrence is still short of.
func coversOutstandingTrait(member *model.StaffMember, occ *model.ShiftOccurrence, roster []model.StaffMember) bool {
	byID := rosterIndex(roster)

	for _, req := range occ.Requirements.Traits {
		if !member.HasTrait(req.TraitID) {
			continue
		}
		assigned := 0
		for _, id := range occ.AssignedStaffIDs {
			if m, ok := byID[id]; ok && m.HasTrait(req.TraitID) {
				assigned++
			}
		}
		if assigned < req.MinCount {
			return true
		}
	}
	return false
}

func holdsExcludedTrait(member *model.StaffMember, req model.Requirements) bool {
	for _, traitID := range member.TraitIDs {
		if req.Excludes(traitID) {
			return true
		}
	}
	return false
}
