// Package scheduler fills a week of shift occurrences with staff, honoring
// hard constraints and minimizing soft-constraint breaches. Trait
// requirements are satisfied before generic headcount.
package scheduler

import (
	"fmt"
	"sort"
	"time"

	"github.com/staffrota/shiftplanner/pkg/core/constraint"
	"github.com/staffrota/shiftplanner/pkg/core/model"
)

// Result reports one scheduling pass. Errors carry unsatisfiable hard
// requirements; Warnings carry soft breaches and automatic removals. An
// understaffed outcome is expressed through Errors and Success, never
// through the function's error return.
type Result struct {
	// Assignments maps occurrence id to its final assigned staff ids.
	Assignments map[string][]string
	Warnings    []string
	Errors      []string
	Success     bool

	// Occurrences is the working occurrence set after scheduling, in
	// chronological order, with assignments applied.
	Occurrences []model.ShiftOccurrence
}

// Schedule runs the greedy multi-pass fill over one week of occurrences.
// weekStart may be any instant inside the target week; it is normalized to
// the Monday of its ISO week. A non-deleted occurrence outside that week is
// malformed input and returns an error. The inputs are never mutated.
func Schedule(
	weekStart time.Time,
	occurrences []model.ShiftOccurrence,
	roster []model.StaffMember,
	traits []model.Trait,
) (*Result, error) {
	monday := isoWeekStart(weekStart)
	weekEnd := monday.AddDate(0, 0, 7)

	work := make([]model.ShiftOccurrence, 0, len(occurrences))
	for _, occ := range occurrences {
		if occ.IsDeleted {
			continue
		}
		if occ.Start.Before(monday) || !occ.Start.Before(weekEnd) {
			return nil, fmt.Errorf("occurrence %q (%s) is outside the requested week starting %s",
				occ.Name, occ.Start.Format("2006-01-02"), monday.Format("2006-01-02"))
		}
		copied := occ
		copied.AssignedStaffIDs = append([]string(nil), occ.AssignedStaffIDs...)
		work = append(work, copied)
	}

	sort.SliceStable(work, func(i, j int) bool {
		if !work[i].Start.Equal(work[j].Start) {
			return work[i].Start.Before(work[j].Start)
		}
		return work[i].ID < work[j].ID
	})

	s := &schedule{
		work:   work,
		roster: roster,
		traits: traits,
		result: &Result{Assignments: map[string][]string{}},
	}

	s.revalidate()
	if err := s.fillTraits(); err != nil {
		return nil, err
	}
	if err := s.fillHeadcount(); err != nil {
		return nil, err
	}

	for i := range s.work {
		s.result.Assignments[s.work[i].ID] = append([]string(nil), s.work[i].AssignedStaffIDs...)
	}
	s.result.Occurrences = s.work
	s.result.Success = len(s.result.Errors) == 0

	return s.result, nil
}

type schedule struct {
	work   []model.ShiftOccurrence
	roster []model.StaffMember
	traits []model.Trait
	result *Result
}

// revalidate re-runs the evaluator on every pre-existing assignment and drops
// staff whose presence triggers a blocked-time or daily-limit hard violation.
// Soft violations on pre-existing assignments are left untouched. Occurrences
// are walked chronologically and each one is checked against only the
// already-confirmed prefix, so of two same-day assignments the earlier wins.
func (s *schedule) revalidate() {
	byID := rosterIndex(s.roster)

	for i := range s.work {
		occ := &s.work[i]
		kept := occ.AssignedStaffIDs[:0]

		for _, staffID := range occ.AssignedStaffIDs {
			member, ok := byID[staffID]
			if !ok {
				s.warnf("removed unknown staff id %s from %q on %s",
					staffID, occ.Name, occ.Start.Format("2006-01-02"))
				continue
			}

			dropped := false
			for _, v := range constraint.Evaluate(*member, *occ, s.roster, s.work[:i+1], nil) {
				if v.Kind() != constraint.KindBlockedTime && v.Kind() != constraint.KindDailyLimit {
					continue
				}
				s.warnf("removed %s from %q on %s: %s",
					member.Name, occ.Name, occ.Start.Format("2006-01-02"), v.Detail())
				dropped = true
				break
			}
			if !dropped {
				kept = append(kept, staffID)
			}
		}

		occ.AssignedStaffIDs = kept
	}
}

// fillTraits assigns trait holders to every occurrence with an unmet
// required-trait minimum. A minimum that cannot be met after exhausting
// eligible candidates is surfaced as a hard error; the occurrence keeps
// whatever was assigned.
func (s *schedule) fillTraits() error {
	for i := range s.work {
		occ := &s.work[i]

		shortfalls, err := constraint.EvaluateOccurrence(*occ, s.roster, s.traits)
		if err != nil {
			return err
		}

		for _, v := range shortfalls {
			shortfall, ok := v.(constraint.TraitShortfallViolation)
			if !ok {
				continue
			}

			need := shortfall.Required - shortfall.Assigned
			candidates := s.candidates(occ, func(m *model.StaffMember) bool {
				return m.HasTrait(shortfall.TraitID)
			})

			for _, c := range candidates {
				if need == 0 {
					break
				}
				if s.assign(occ, c) {
					need--
				}
			}

			if need > 0 {
				s.errorf("%q on %s is short %d staff with trait %q (%d of %d assigned)",
					occ.Name, occ.Start.Format("2006-01-02"), need, shortfall.TraitName,
					shortfall.Required-need, shortfall.Required)
			}
		}
	}
	return nil
}

// fillHeadcount fills remaining open seats from the full roster, but only on
// occurrences whose trait requirements are fully met. Residual shortfalls are
// reported and the occurrence is otherwise left as-is; no seat is ever filled
// by a hard-violating candidate.
func (s *schedule) fillHeadcount() error {
	for i := range s.work {
		occ := &s.work[i]

		shortfalls, err := constraint.EvaluateOccurrence(*occ, s.roster, s.traits)
		if err != nil {
			return err
		}
		if len(shortfalls) > 0 {
			continue
		}

		open := occ.Requirements.Headcount - len(occ.AssignedStaffIDs)
		if open <= 0 {
			if open < 0 {
				s.warnf("%q on %s is overstaffed: %d assigned for headcount %d",
					occ.Name, occ.Start.Format("2006-01-02"),
					len(occ.AssignedStaffIDs), occ.Requirements.Headcount)
			}
			continue
		}

		for _, c := range s.candidates(occ, nil) {
			if open == 0 {
				break
			}
			if s.assign(occ, c) {
				open--
			}
		}

		if open > 0 {
			s.errorf("%q on %s is understaffed: %d assigned for headcount %d",
				occ.Name, occ.Start.Format("2006-01-02"),
				len(occ.AssignedStaffIDs), occ.Requirements.Headcount)
		}
	}
	return nil
}

// assign re-checks the candidate against the occurrence's current assignees
// and commits them if still legal, surfacing any soft violations the
// assignment incurs. The ranked pool was built before any seat on this
// occurrence was filled, so an earlier pick can turn a remaining candidate
// hard-violating (two mutually incompatible members both eligible at
// pool-build time); legality is never decided on the stale pool.
func (s *schedule) assign(occ *model.ShiftOccurrence, c candidate) bool {
	violations := constraint.Evaluate(*c.member, *occ, s.roster, s.work, nil)
	if constraint.HasHard(violations) {
		return false
	}
	occ.AssignedStaffIDs = append(occ.AssignedStaffIDs, c.member.ID)
	for _, v := range violations {
		s.warnf("%s assigned to %q on %s despite: %s",
			c.member.Name, occ.Name, occ.Start.Format("2006-01-02"), v.Detail())
	}
	return true
}

func (s *schedule) warnf(format string, args ...any) {
	s.result.Warnings = append(s.result.Warnings, fmt.Sprintf(format, args...))
}

func (s *schedule) errorf(format string, args ...any) {
	s.result.Errors = append(s.result.Errors, fmt.Sprintf(format, args...))
}

func rosterIndex(roster []model.StaffMember) map[string]*model.StaffMember {
	byID := make(map[string]*model.StaffMember, len(roster))
	for i := range roster {
		byID[roster[i].ID] = &roster[i]
	}
	return byID
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// isoWeekStart returns the Monday 00:00 of t's week.
func isoWeekStart(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, -((int(t.Weekday()) + 6) % 7))
}
