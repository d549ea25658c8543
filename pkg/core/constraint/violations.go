// Package constraint decides whether a staff-to-occurrence assignment is
// legal, discouraged, or leaves an occurrence understaffed.
package constraint

import (
	"fmt"
	"time"

	"github.com/staffrota/shiftplanner/pkg/core/recurrence"
)

// Severity splits violations into blocking and advisory.
type Severity int

const (
	// Soft violations are reported but never block an assignment.
	Soft Severity = iota
	// Hard violations block automatic assignment outright.
	Hard
)

func (s Severity) String() string {
	if s == Hard {
		return "hard"
	}
	return "soft"
}

// Kind identifies a violation variant.
type Kind string

const (
	KindBlockedTime     Kind = "blocked_time"
	KindIncompatible    Kind = "incompatible_staff"
	KindDailyLimit      Kind = "daily_limit"
	KindWeeklyLimit     Kind = "weekly_limit"
	KindMonthlyLimit    Kind = "monthly_limit"
	KindYearlyLimit     Kind = "yearly_limit"
	KindRestDays        Kind = "rest_days"
	KindConsecutiveRest Kind = "consecutive_rest"
	KindTraitShortfall  Kind = "trait_shortfall"
)

// Violation is one evaluated rule breach. The concrete types below form a
// closed set; each carries exactly the fields its message needs.
type Violation interface {
	Kind() Kind
	Severity() Severity
	Detail() string
}

// BlockedTimeViolation reports an overlap between the target occurrence and
// one of the staff member's unavailability windows.
type BlockedTimeViolation struct {
	StaffName string
	ShiftName string
	Shift     recurrence.Interval
	Blocked   recurrence.Interval
}

func (v BlockedTimeViolation) Kind() Kind         { return KindBlockedTime }
func (v BlockedTimeViolation) Severity() Severity { return Hard }
func (v BlockedTimeViolation) Detail() string {
	return fmt.Sprintf("%s is unavailable %s to %s, overlapping %q (%s to %s)",
		v.StaffName,
		v.Blocked.Start.Format("2006-01-02 15:04"), v.Blocked.End.Format("2006-01-02 15:04"),
		v.ShiftName,
		v.Shift.Start.Format("2006-01-02 15:04"), v.Shift.End.Format("2006-01-02 15:04"))
}

// IncompatibilityViolation reports two staff members who must not share a
// shift. Raised whichever side recorded the incompatibility.
type IncompatibilityViolation struct {
	StaffName   string
	PartnerName string
	ShiftName   string
}

func (v IncompatibilityViolation) Kind() Kind         { return KindIncompatible }
func (v IncompatibilityViolation) Severity() Severity { return Hard }
func (v IncompatibilityViolation) Detail() string {
	return fmt.Sprintf("%s and %s are marked incompatible and are both on %q",
		v.StaffName, v.PartnerName, v.ShiftName)
}

// LimitPeriod names the counting window of a shift-count limit.
type LimitPeriod string

const (
	PeriodDay   LimitPeriod = "day"
	PeriodWeek  LimitPeriod = "week"
	PeriodMonth LimitPeriod = "month"
	PeriodYear  LimitPeriod = "year"
)

// LimitViolation reports a shift-count maximum being exceeded. Only the
// daily limit is hard; week, month and year limits are advisory.
type LimitViolation struct {
	StaffName string
	Period    LimitPeriod
	When      time.Time
	Count     int
	Max       int
}

func (v LimitViolation) Kind() Kind {
	switch v.Period {
	case PeriodDay:
		return KindDailyLimit
	case PeriodWeek:
		return KindWeeklyLimit
	case PeriodMonth:
		return KindMonthlyLimit
	default:
		return KindYearlyLimit
	}
}

func (v LimitViolation) Severity() Severity {
	if v.Period == PeriodDay {
		return Hard
	}
	return Soft
}

func (v LimitViolation) Detail() string {
	return fmt.Sprintf("%s would have %d shifts in the %s of %s, exceeding the maximum of %d",
		v.StaffName, v.Count, v.Period, v.When.Format("2006-01-02"), v.Max)
}

// RestDaysViolation reports two shifts shared with the same partner closer
// together than the configured per-partner rest period.
type RestDaysViolation struct {
	StaffName   string
	PartnerName string
	Required    int
	GapDays     int
}

func (v RestDaysViolation) Kind() Kind         { return KindRestDays }
func (v RestDaysViolation) Severity() Severity { return Soft }
func (v RestDaysViolation) Detail() string {
	return fmt.Sprintf("%s would work with %s again after %d days, below the configured %d rest days",
		v.StaffName, v.PartnerName, v.GapDays, v.Required)
}

// ConsecutiveRestViolation reports a week left without the configured run of
// free days.
type ConsecutiveRestViolation struct {
	StaffName string
	Required  int
	Longest   int
}

func (v ConsecutiveRestViolation) Kind() Kind         { return KindConsecutiveRest }
func (v ConsecutiveRestViolation) Severity() Severity { return Soft }
func (v ConsecutiveRestViolation) Detail() string {
	return fmt.Sprintf("%s would keep only %d consecutive rest days that week, below the configured %d",
		v.StaffName, v.Longest, v.Required)
}

// TraitShortfallViolation reports an occurrence with fewer assigned holders
// of a required trait than its minimum. Evaluated at occurrence level.
type TraitShortfallViolation struct {
	ShiftName string
	Date      time.Time
	TraitID   string
	TraitName string
	Required  int
	Assigned  int
}

func (v TraitShortfallViolation) Kind() Kind         { return KindTraitShortfall }
func (v TraitShortfallViolation) Severity() Severity { return Hard }
func (v TraitShortfallViolation) Detail() string {
	return fmt.Sprintf("%q on %s has %d of %d required staff with trait %q",
		v.ShiftName, v.Date.Format("2006-01-02"), v.Assigned, v.Required, v.TraitName)
}

// HasHard reports whether any violation in the list is blocking.
func HasHard(violations []Violation) bool {
	for _, v := range violations {
		if v.Severity() == Hard {
			return true
		}
	}
	return false
}
