package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/staffrota/shiftplanner/internal/config"
	"github.com/staffrota/shiftplanner/pkg/core/model"
	"github.com/staffrota/shiftplanner/pkg/core/recurrence"
)

// ExpandShiftsStore defines the database operations needed to expand shifts
type ExpandShiftsStore interface {
	GetTemplates(ctx context.Context) ([]model.ShiftTemplate, error)
	GetOccurrencesByTemplate(ctx context.Context, templateID string) ([]model.ShiftOccurrence, error)
	UpsertOccurrences(ctx context.Context, occurrences []model.ShiftOccurrence) error
}

// ExpandShiftsResult summarizes one expansion run
type ExpandShiftsResult struct {
	Templates   int
	Occurrences int
	// Notes carries informational messages: day-adjusted monthly roll-overs
	// and closure suppressions.
	Notes []string
}

// ExpandShifts regenerates the occurrence series for every template and
// merges it with stored occurrences, preserving manual edits and tombstones.
// Occurrences falling on configured closure dates are soft-deleted.
func ExpandShifts(
	ctx context.Context,
	database ExpandShiftsStore,
	cfg *config.Config,
	logger *zap.Logger,
) (*ExpandShiftsResult, error) {
	logger.Info("Starting shift expansion")

	templates, err := database.GetTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch templates: %w", err)
	}
	logger.Debug("Found templates", zap.Int("count", len(templates)))

	result := &ExpandShiftsResult{Templates: len(templates)}

	for _, tpl := range templates {
		merged, notes, err := expandTemplate(ctx, database, cfg, logger, tpl)
		if err != nil {
			return nil, err
		}

		if err := database.UpsertOccurrences(ctx, merged); err != nil {
			return nil, fmt.Errorf("failed to save occurrences for template %q: %w", tpl.Name, err)
		}

		result.Occurrences += len(merged)
		result.Notes = append(result.Notes, notes...)
	}

	logger.Info("Shift expansion complete",
		zap.Int("templates", result.Templates),
		zap.Int("occurrences", result.Occurrences),
		zap.Int("notes", len(result.Notes)))

	return result, nil
}

func expandTemplate(
	ctx context.Context,
	database ExpandShiftsStore,
	cfg *config.Config,
	logger *zap.Logger,
	tpl model.ShiftTemplate,
) ([]model.ShiftOccurrence, []string, error) {
	generated, err := recurrence.Expand(tpl)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to expand template %q: %w", tpl.Name, err)
	}
	logger.Debug("Expanded template",
		zap.String("template", tpl.Name),
		zap.Int("occurrences", len(generated)))

	var notes []string
	for _, occ := range generated {
		if occ.DayAdjusted {
			notes = append(notes, fmt.Sprintf("%q: occurrence moved to %s (month shorter than template day-of-month)",
				tpl.Name, occ.Start.Format("2006-01-02")))
		}
	}

	stored, err := database.GetOccurrencesByTemplate(ctx, tpl.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch stored occurrences for template %q: %w", tpl.Name, err)
	}

	merged := MergeOccurrences(generated, stored)

	closureNotes, err := applyClosures(cfg, logger, merged)
	if err != nil {
		return nil, nil, err
	}
	notes = append(notes, closureNotes...)

	return merged, notes, nil
}

// applyClosures soft-deletes occurrences whose date matches a configured
// closure. The tombstone persists, so regeneration keeps them suppressed.
func applyClosures(cfg *config.Config, logger *zap.Logger, occurrences []model.ShiftOccurrence) ([]string, error) {
	if len(cfg.Closures) == 0 || len(occurrences) == 0 {
		return nil, nil
	}

	windowStart := occurrences[0].Start
	windowEnd := occurrences[0].Start
	for _, occ := range occurrences {
		if occ.Start.Before(windowStart) {
			windowStart = occ.Start
		}
		if occ.Start.After(windowEnd) {
			windowEnd = occ.Start
		}
	}

	matchers, err := convertClosures(cfg.Closures, windowStart, windowEnd, logger)
	if err != nil {
		return nil, err
	}

	var notes []string
	for i := range occurrences {
		if occurrences[i].IsDeleted {
			continue
		}
		for _, matcher := range matchers {
			if matcher.AppliesTo(occurrences[i].Start) {
				occurrences[i].IsDeleted = true
				notes = append(notes, fmt.Sprintf("%q on %s suppressed by closure %q",
					occurrences[i].Name, occurrences[i].Start.Format("2006-01-02"), matcher.Name))
				break
			}
		}
	}

	return notes, nil
}
