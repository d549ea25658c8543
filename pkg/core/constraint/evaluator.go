package constraint

import (
	"fmt"
	"time"

	"github.com/staffrota/shiftplanner/pkg/core/model"
	"github.com/staffrota/shiftplanner/pkg/core/recurrence"
)

// blockedLookaheadMonths bounds blocked-time expansion when testing a single
// occurrence: one year from the occurrence start.
const blockedLookaheadMonths = 12

// Delta holds proposed assignment additions not yet present in the occurrence
// set, keyed by occurrence id. It lets the scheduler (and the manual check
// flow) evaluate a hypothetical state without mutating its inputs.
type Delta map[string][]string

// Add records a proposed assignment.
func (d Delta) Add(occurrenceID, staffID string) {
	d[occurrenceID] = append(d[occurrenceID], staffID)
}

// Evaluate returns every violation the staff member's hypothetical presence
// on the target occurrence would cause, ordered hard rules first. The
// occurrence set supplies shift counts, the roster supplies incompatibility
// partners, and delta supplies assignments proposed but not yet committed.
func Evaluate(
	staff model.StaffMember,
	occ model.ShiftOccurrence,
	roster []model.StaffMember,
	occurrences []model.ShiftOccurrence,
	delta Delta,
) []Violation {
	var violations []Violation

	names := rosterNames(roster)

	violations = append(violations, blockedTimeViolations(staff, occ)...)
	violations = append(violations, incompatibilityViolations(staff, occ, roster, names, delta)...)
	violations = append(violations, limitViolations(staff, occ, occurrences, delta)...)
	violations = append(violations, restDayViolations(staff, occ, occurrences, names, delta)...)
	violations = append(violations, consecutiveRestViolations(staff, occ, occurrences, delta)...)

	return violations
}

// EvaluateOccurrence checks occurrence-level staffing: for each required
// trait, whether enough assigned staff hold it. A requirement referencing an
// unknown trait is a data error and fails loudly.
func EvaluateOccurrence(
	occ model.ShiftOccurrence,
	roster []model.StaffMember,
	traits []model.Trait,
) ([]Violation, error) {
	traitNames := make(map[string]string, len(traits))
	for _, t := range traits {
		traitNames[t.ID] = t.Name
	}

	byID := rosterByID(roster)

	var violations []Violation
	for _, req := range occ.Requirements.Traits {
		name, ok := traitNames[req.TraitID]
		if !ok {
			return nil, fmt.Errorf("shift %q requires unknown trait %q", occ.Name, req.TraitID)
		}

		assigned := 0
		for _, id := range occ.AssignedStaffIDs {
			if member, ok := byID[id]; ok && member.HasTrait(req.TraitID) {
				assigned++
			}
		}

		if assigned < req.MinCount {
			violations = append(violations, TraitShortfallViolation{
				ShiftName: occ.Name,
				Date:      occ.Start,
				TraitID:   req.TraitID,
				TraitName: name,
				Required:  req.MinCount,
				Assigned:  assigned,
			})
		}
	}

	return violations, nil
}

func blockedTimeViolations(staff model.StaffMember, occ model.ShiftOccurrence) []Violation {
	shift := recurrence.Interval{Start: occ.Start, End: occ.End}
	lookahead := occ.Start.AddDate(0, blockedLookaheadMonths, 0)

	var violations []Violation
	for _, bt := range staff.BlockedTimes {
		for _, blocked := range recurrence.ExpandBlockedTime(bt, occ.Start, lookahead) {
			if blocked.Overlaps(shift) {
				violations = append(violations, BlockedTimeViolation{
					StaffName: staff.Name,
					ShiftName: occ.Name,
					Shift:     shift,
					Blocked:   blocked,
				})
			}
		}
	}
	return violations
}

func incompatibilityViolations(
	staff model.StaffMember,
	occ model.ShiftOccurrence,
	roster []model.StaffMember,
	names map[string]string,
	delta Delta,
) []Violation {
	byID := rosterByID(roster)

	var violations []Violation
	for _, partnerID := range assignedTo(occ, delta) {
		if partnerID == staff.ID {
			continue
		}
		partner, ok := byID[partnerID]
		if !ok {
			continue
		}
		// Incompatibility is symmetric regardless of which side recorded it.
		if staff.IncompatibleWith(partnerID) || partner.IncompatibleWith(staff.ID) {
			violations = append(violations, IncompatibilityViolation{
				StaffName:   staff.Name,
				PartnerName: displayName(names, partnerID),
				ShiftName:   occ.Name,
			})
		}
	}
	return violations
}

func limitViolations(
	staff model.StaffMember,
	occ model.ShiftOccurrence,
	occurrences []model.ShiftOccurrence,
	delta Delta,
) []Violation {
	// Counts include the occurrence under evaluation.
	day, week, month, year := 1, 1, 1, 1

	for _, other := range occurrences {
		if other.IsDeleted || other.ID == occ.ID {
			continue
		}
		if !isAssigned(other, staff.ID, delta) {
			continue
		}
		if sameDay(other.Start, occ.Start) {
			day++
		}
		if sameISOWeek(other.Start, occ.Start) {
			week++
		}
		if sameMonth(other.Start, occ.Start) {
			month++
		}
		if other.Start.Year() == occ.Start.Year() {
			year++
		}
	}

	c := staff.Constraints
	var violations []Violation

	if max := c.DailyMax(); day > max {
		violations = append(violations, LimitViolation{
			StaffName: staff.Name, Period: PeriodDay, When: occ.Start, Count: day, Max: max,
		})
	}
	if c.MaxShiftsPerWeek != nil && week > *c.MaxShiftsPerWeek {
		violations = append(violations, LimitViolation{
			StaffName: staff.Name, Period: PeriodWeek, When: occ.Start, Count: week, Max: *c.MaxShiftsPerWeek,
		})
	}
	if c.MaxShiftsPerMonth != nil && month > *c.MaxShiftsPerMonth {
		violations = append(violations, LimitViolation{
			StaffName: staff.Name, Period: PeriodMonth, When: occ.Start, Count: month, Max: *c.MaxShiftsPerMonth,
		})
	}
	if c.MaxShiftsPerYear != nil && year > *c.MaxShiftsPerYear {
		violations = append(violations, LimitViolation{
			StaffName: staff.Name, Period: PeriodYear, When: occ.Start, Count: year, Max: *c.MaxShiftsPerYear,
		})
	}

	return violations
}

// restDayViolations flags sharing a shift with a partner sooner after the
// previous shared shift than the configured per-partner rest period.
func restDayViolations(
	staff model.StaffMember,
	occ model.ShiftOccurrence,
	occurrences []model.ShiftOccurrence,
	names map[string]string,
	delta Delta,
) []Violation {
	if len(staff.Constraints.RestDaysWithStaff) == 0 {
		return nil
	}

	var violations []Violation
	for _, partnerID := range assignedTo(occ, delta) {
		if partnerID == staff.ID {
			continue
		}
		required, ok := staff.Constraints.RestDaysWithStaff[partnerID]
		if !ok || required <= 0 {
			continue
		}

		closest := -1
		for _, other := range occurrences {
			if other.IsDeleted || other.ID == occ.ID {
				continue
			}
			if !isAssigned(other, staff.ID, delta) || !isAssigned(other, partnerID, delta) {
				continue
			}
			gap := daysBetween(other.Start, occ.Start)
			if closest < 0 || gap < closest {
				closest = gap
			}
		}

		if closest >= 0 && closest < required {
			violations = append(violations, RestDaysViolation{
				StaffName:   staff.Name,
				PartnerName: displayName(names, partnerID),
				Required:    required,
				GapDays:     closest,
			})
		}
	}
	return violations
}

// consecutiveRestViolations checks the longest run of assignment-free days
// the member would keep in the occurrence's ISO week.
func consecutiveRestViolations(
	staff model.StaffMember,
	occ model.ShiftOccurrence,
	occurrences []model.ShiftOccurrence,
	delta Delta,
) []Violation {
	required := staff.Constraints.ConsecutiveRestDays
	if required <= 0 {
		return nil
	}

	weekStart := isoWeekStart(occ.Start)
	var busy [7]bool
	busy[dayIndex(weekStart, occ.Start)] = true

	for _, other := range occurrences {
		if other.IsDeleted || other.ID == occ.ID {
			continue
		}
		if !sameISOWeek(other.Start, occ.Start) || !isAssigned(other, staff.ID, delta) {
			continue
		}
		busy[dayIndex(weekStart, other.Start)] = true
	}

	longest, run := 0, 0
	for _, b := range busy {
		if b {
			run = 0
			continue
		}
		run++
		if run > longest {
			longest = run
		}
	}

	if longest < required {
		return []Violation{ConsecutiveRestViolation{
			StaffName: staff.Name,
			Required:  required,
			Longest:   longest,
		}}
	}
	return nil
}

// assignedTo returns the committed plus proposed staff ids on an occurrence,
// deduplicated.
func assignedTo(occ model.ShiftOccurrence, delta Delta) []string {
	seen := make(map[string]bool, len(occ.AssignedStaffIDs))
	out := make([]string, 0, len(occ.AssignedStaffIDs))
	for _, id := range occ.AssignedStaffIDs {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, id := range delta[occ.ID] {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func isAssigned(occ model.ShiftOccurrence, staffID string, delta Delta) bool {
	if occ.HasStaff(staffID) {
		return true
	}
	for _, id := range delta[occ.ID] {
		if id == staffID {
			return true
		}
	}
	return false
}

func rosterByID(roster []model.StaffMember) map[string]*model.StaffMember {
	byID := make(map[string]*model.StaffMember, len(roster))
	for i := range roster {
		byID[roster[i].ID] = &roster[i]
	}
	return byID
}

func rosterNames(roster []model.StaffMember) map[string]string {
	names := make(map[string]string, len(roster))
	for _, m := range roster {
		names[m.ID] = m.Name
	}
	return names
}

func displayName(names map[string]string, id string) string {
	if name, ok := names[id]; ok {
		return name
	}
	return id
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// isoWeekStart returns the Monday 00:00 of t's week.
func isoWeekStart(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, -((int(t.Weekday()) + 6) % 7))
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

func sameISOWeek(a, b time.Time) bool {
	ay, aw := a.ISOWeek()
	by, bw := b.ISOWeek()
	return ay == by && aw == bw
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

func daysBetween(a, b time.Time) int {
	d := int(startOfDay(b).Sub(startOfDay(a)).Hours() / 24)
	if d < 0 {
		return -d
	}
	return d
}

func dayIndex(weekStart, t time.Time) int {
	idx := int(startOfDay(t).Sub(weekStart).Hours() / 24)
	if idx < 0 {
		return 0
	}
	if idx > 6 {
		return 6
	}
	return idx
}
