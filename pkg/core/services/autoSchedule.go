package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/staffrota/shiftplanner/internal/config"
	"github.com/staffrota/shiftplanner/pkg/core/model"
	"github.com/staffrota/shiftplanner/pkg/core/scheduler"
)

// AutoScheduleStore defines the database operations needed to auto-fill a week
type AutoScheduleStore interface {
	GetOccurrencesInRange(ctx context.Context, from, to time.Time) ([]model.ShiftOccurrence, error)
	GetStaff(ctx context.Context) ([]model.StaffMember, error)
	GetTraits(ctx context.Context) ([]model.Trait, error)
	UpsertOccurrences(ctx context.Context, occurrences []model.ShiftOccurrence) error
}

// AutoScheduleResult wraps the scheduler outcome with persistence status
type AutoScheduleResult struct {
	WeekStart time.Time
	Saved     bool
	*scheduler.Result
}

// AutoSchedule fills the week containing weekStart. If dryRun is true the
// result is not saved; if forceCommit is true it is saved even when the
// scheduler reports unsatisfiable requirements.
func AutoSchedule(
	ctx context.Context,
	database AutoScheduleStore,
	cfg *config.Config,
	logger *zap.Logger,
	weekStart time.Time,
	dryRun bool,
	forceCommit bool,
) (*AutoScheduleResult, error) {
	monday := startOfISOWeek(weekStart)
	weekEnd := monday.AddDate(0, 0, 7)

	logger.Info("Starting auto-schedule",
		zap.String("week_start", monday.Format("2006-01-02")),
		zap.Bool("dry_run", dryRun),
		zap.Bool("force_commit", forceCommit))

	occurrences, err := database.GetOccurrencesInRange(ctx, monday, weekEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch occurrences: %w", err)
	}
	logger.Debug("Found occurrences", zap.Int("count", len(occurrences)))

	roster, err := database.GetStaff(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch staff roster: %w", err)
	}
	roster = cfg.ApplyStaffDefaults(roster)
	logger.Debug("Found staff", zap.Int("count", len(roster)))

	traits, err := database.GetTraits(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch traits: %w", err)
	}

	result, err := scheduler.Schedule(monday, occurrences, roster, traits)
	if err != nil {
		return nil, fmt.Errorf("scheduling failed: %w", err)
	}

	logger.Info("Scheduling pass complete",
		zap.Bool("success", result.Success),
		zap.Int("warnings", len(result.Warnings)),
		zap.Int("errors", len(result.Errors)))

	out := &AutoScheduleResult{WeekStart: monday, Result: result}

	if dryRun {
		logger.Info("Dry run, not saving assignments")
		return out, nil
	}
	if !result.Success && !forceCommit {
		logger.Warn("Scheduling incomplete, not saving assignments (use force-commit to override)")
		return out, nil
	}

	changed := changedOccurrences(occurrences, result)
	if len(changed) > 0 {
		if err := database.UpsertOccurrences(ctx, changed); err != nil {
			return nil, fmt.Errorf("failed to save assignments: %w", err)
		}
	}
	out.Saved = true
	logger.Info("Assignments saved", zap.Int("occurrences_changed", len(changed)))

	return out, nil
}

// changedOccurrences picks the scheduled occurrences whose assignments differ
// from the stored state. isModified is left alone: it marks manual edits
// only, and the merge already carries assignments on unmodified occurrences
// through regeneration, so later template edits still propagate here.
func changedOccurrences(stored []model.ShiftOccurrence, result *scheduler.Result) []model.ShiftOccurrence {
	before := make(map[string][]string, len(stored))
	for _, occ := range stored {
		before[occ.ID] = occ.AssignedStaffIDs
	}

	var changed []model.ShiftOccurrence
	for _, occ := range result.Occurrences {
		if sameStringSet(before[occ.ID], occ.AssignedStaffIDs) {
			continue
		}
		changed = append(changed, occ)
	}
	return changed
}

func sameStringSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]int, len(a))
	for _, s := range a {
		set[s]++
	}
	for _, s := range b {
		set[s]--
		if set[s] < 0 {
			return false
		}
	}
	return true
}

func startOfISOWeek(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -((int(t.Weekday()) + 6) % 7))
}
