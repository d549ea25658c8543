package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/staffrota/shiftplanner/internal/config"
	"github.com/staffrota/shiftplanner/pkg/core/model"
)

// UpdateTemplateStore defines the database operations needed to edit a template
type UpdateTemplateStore interface {
	ExpandShiftsStore
	UpsertTemplate(ctx context.Context, tpl *model.ShiftTemplate) error
	DeleteOccurrencesByTemplate(ctx context.Context, templateID string) error
}

// UpdateTemplate saves a template edit and regenerates its occurrence series.
// isDestructive marks edits that change timing, recurrence shape, or trait
// requirements: those discard all stored occurrence-level overrides for the
// template before re-expanding. Non-destructive edits keep manual edits and
// tombstones through the merge.
func UpdateTemplate(
	ctx context.Context,
	database UpdateTemplateStore,
	cfg *config.Config,
	logger *zap.Logger,
	tpl model.ShiftTemplate,
	isDestructive bool,
) (*ExpandShiftsResult, error) {
	logger.Info("Updating template",
		zap.String("template", tpl.Name),
		zap.Bool("destructive", isDestructive))

	if isDestructive {
		if err := database.DeleteOccurrencesByTemplate(ctx, tpl.ID); err != nil {
			return nil, fmt.Errorf("failed to discard overrides for template %q: %w", tpl.Name, err)
		}
		logger.Debug("Discarded stored occurrences", zap.String("template", tpl.Name))
	}

	if err := database.UpsertTemplate(ctx, &tpl); err != nil {
		return nil, fmt.Errorf("failed to save template %q: %w", tpl.Name, err)
	}

	merged, notes, err := expandTemplate(ctx, database, cfg, logger, tpl)
	if err != nil {
		return nil, err
	}

	if err := database.UpsertOccurrences(ctx, merged); err != nil {
		return nil, fmt.Errorf("failed to save occurrences for template %q: %w", tpl.Name, err)
	}

	logger.Info("Template updated",
		zap.String("template", tpl.Name),
		zap.Int("occurrences", len(merged)))

	return &ExpandShiftsResult{Templates: 1, Occurrences: len(merged), Notes: notes}, nil
}
