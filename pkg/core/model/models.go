package model

import "time"

// RecurrenceKind identifies the stepping rule of a recurrence.
type RecurrenceKind string

const (
	RecurrenceDaily   RecurrenceKind = "daily"
	RecurrenceWeekly  RecurrenceKind = "weekly"
	RecurrenceMonthly RecurrenceKind = "monthly"
)

func (k RecurrenceKind) IsValid() bool {
	return k == RecurrenceDaily || k == RecurrenceWeekly || k == RecurrenceMonthly
}

// RecurrenceRule describes how a shift template (or a blocked time) repeats.
// Stored as a JSONB document, hence the tags.
type RecurrenceRule struct {
	Kind     RecurrenceKind `json:"kind"`
	Interval int            `json:"interval"`

	// Until is the inclusive end date of the series. Nil means the series
	// runs to the default expansion horizon.
	Until *time.Time `json:"until,omitempty"`

	// Weekdays restricts weekly recurrences to an explicit set of weekdays
	// (time.Weekday numbering, Sunday=0). Ignored for other kinds.
	Weekdays []time.Weekday `json:"weekdays,omitempty"`
}

// Trait is a skill or qualification tag, referenced by id everywhere else.
type Trait struct {
	ID   string
	Name string
}

// TraitRequirement demands a minimum number of assigned staff holding a trait.
type TraitRequirement struct {
	TraitID  string `json:"traitId"`
	MinCount int    `json:"minCount"`
}

// Requirements describes the staffing a shift occurrence needs.
type Requirements struct {
	Headcount        int                `json:"headcount"`
	Traits           []TraitRequirement `json:"traits,omitempty"`
	ExcludedTraitIDs []string           `json:"excludedTraitIds,omitempty"`
}

// Excludes reports whether the given trait disqualifies staff from the shift.
func (r Requirements) Excludes(traitID string) bool {
	for _, id := range r.ExcludedTraitIDs {
		if id == traitID {
			return true
		}
	}
	return false
}

// ShiftTemplate is a recurring shift definition. Start/End define the base
// occurrence; the recurrence rule, if any, produces the rest of the series.
type ShiftTemplate struct {
	ID           string
	Name         string
	Start        time.Time
	End          time.Time
	Recurrence   *RecurrenceRule
	Requirements Requirements
}

// ShiftOccurrence is one concrete dated instance of a template. Its ID is
// derived deterministically from (template id, start, index) so regeneration
// reuses ids instead of minting duplicates.
type ShiftOccurrence struct {
	ID         string
	TemplateID string
	Name       string
	Start      time.Time
	End        time.Time

	// Requirements are inherited from the template at generation time and may
	// diverge afterwards through manual edits.
	Requirements Requirements

	AssignedStaffIDs []string

	// IsModified marks occurrences whose fields diverge from the generator's
	// output; regeneration must not overwrite them.
	IsModified bool

	// IsDeleted is a terminal soft delete for this (template, start, index)
	// key; the generator never re-materializes a deleted occurrence.
	IsDeleted bool

	// DayAdjusted records a monthly roll-over clamp (e.g. Jan 31 -> Feb 28).
	// Informational only.
	DayAdjusted bool
}

// HasStaff reports whether the staff member is assigned to the occurrence.
func (o *ShiftOccurrence) HasStaff(staffID string) bool {
	for _, id := range o.AssignedStaffIDs {
		if id == staffID {
			return true
		}
	}
	return false
}

// BlockedTime is a staff member's declared unavailability window, itself
// optionally recurring.
type BlockedTime struct {
	Start      time.Time       `json:"start"`
	End        time.Time       `json:"end"`
	IsFullDay  bool            `json:"isFullDay,omitempty"`
	Recurrence *RecurrenceRule `json:"recurrence,omitempty"`
}

// StaffConstraints holds a staff member's workload and compatibility rules.
// Nil pointer maxima mean unbounded; MaxShiftsPerDay defaults to 1 when nil.
type StaffConstraints struct {
	MaxShiftsPerDay   *int `json:"maxShiftsPerDay,omitempty"`
	MaxShiftsPerWeek  *int `json:"maxShiftsPerWeek,omitempty"`
	MaxShiftsPerMonth *int `json:"maxShiftsPerMonth,omitempty"`
	MaxShiftsPerYear  *int `json:"maxShiftsPerYear,omitempty"`

	// IncompatibleWith lists staff ids this member must never share a shift
	// with. Treated as symmetric even when only recorded on one side.
	IncompatibleWith []string `json:"incompatibleWith,omitempty"`

	// RestDaysWithStaff maps a partner's staff id to the minimum number of
	// days that must separate shifts shared with that partner.
	RestDaysWithStaff map[string]int `json:"restDaysWithStaff,omitempty"`

	// ConsecutiveRestDays is the minimum run of free days the member should
	// keep within any scheduled week.
	ConsecutiveRestDays int `json:"consecutiveRestDays,omitempty"`
}

// DailyMax returns the effective daily shift cap (default 1).
func (c StaffConstraints) DailyMax() int {
	if c.MaxShiftsPerDay == nil {
		return 1
	}
	return *c.MaxShiftsPerDay
}

// StaffMember is a schedulable person.
type StaffMember struct {
	ID           string
	Name         string
	TraitIDs     []string
	Constraints  StaffConstraints
	BlockedTimes []BlockedTime
}

// HasTrait reports whether the member holds the given trait.
func (s *StaffMember) HasTrait(traitID string) bool {
	for _, id := range s.TraitIDs {
		if id == traitID {
			return true
		}
	}
	return false
}

// IncompatibleWith reports whether this member lists the other as
// incompatible. Callers must check both directions.
func (s *StaffMember) IncompatibleWith(otherID string) bool {
	for _, id := range s.Constraints.IncompatibleWith {
		if id == otherID {
			return true
		}
	}
	return false
}
