package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/staffrota/shiftplanner/pkg/core/constraint"
	"github.com/staffrota/shiftplanner/pkg/core/model"
)

// CheckAssignmentStore defines the database operations needed for the
// advisory assignment check
type CheckAssignmentStore interface {
	GetOccurrence(ctx context.Context, id string) (*model.ShiftOccurrence, error)
	GetOccurrencesInRange(ctx context.Context, from, to time.Time) ([]model.ShiftOccurrence, error)
	GetStaff(ctx context.Context) ([]model.StaffMember, error)
	GetStaffMember(ctx context.Context, id string) (*model.StaffMember, error)
}

// CheckAssignmentResult previews one manual staff-to-occurrence edit
type CheckAssignmentResult struct {
	StaffName  string
	ShiftName  string
	ShiftStart time.Time
	Violations []constraint.Violation
}

// CheckAssignment evaluates a hypothetical assignment of one staff member to
// one occurrence. All violations, hard and soft, are advisory here: the
// caller decides whether to commit the edit.
func CheckAssignment(
	ctx context.Context,
	database CheckAssignmentStore,
	logger *zap.Logger,
	staffID string,
	occurrenceID string,
) (*CheckAssignmentResult, error) {
	logger.Debug("Checking assignment",
		zap.String("staff_id", staffID),
		zap.String("occurrence_id", occurrenceID))

	member, err := database.GetStaffMember(ctx, staffID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch staff member: %w", err)
	}

	occ, err := database.GetOccurrence(ctx, occurrenceID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch occurrence: %w", err)
	}
	if occ.IsDeleted {
		return nil, fmt.Errorf("occurrence %q on %s is deleted", occ.Name, occ.Start.Format("2006-01-02"))
	}

	roster, err := database.GetStaff(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch staff roster: %w", err)
	}

	// Shift counting spans the calendar year around the occurrence.
	from := time.Date(occ.Start.Year(), 1, 1, 0, 0, 0, 0, occ.Start.Location())
	to := from.AddDate(1, 0, 0)
	occurrences, err := database.GetOccurrencesInRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch occurrences: %w", err)
	}

	delta := constraint.Delta{}
	delta.Add(occ.ID, member.ID)

	violations := constraint.Evaluate(*member, *occ, roster, occurrences, delta)

	logger.Info("Assignment checked",
		zap.String("staff", member.Name),
		zap.String("shift", occ.Name),
		zap.Int("violations", len(violations)))

	return &CheckAssignmentResult{
		StaffName:  member.Name,
		ShiftName:  occ.Name,
		ShiftStart: occ.Start,
		Violations: violations,
	}, nil
}
