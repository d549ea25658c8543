package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/staffrota/shiftplanner/pkg/core/model"
)

const occurrenceColumns = `id, template_id, name, start_at, end_at, requirements,
	assigned_staff_ids, is_modified, is_deleted, day_adjusted`

// GetOccurrencesByTemplate retrieves all occurrences of one template,
// including soft-deleted ones.
func (d *DB) GetOccurrencesByTemplate(ctx context.Context, templateID string) ([]model.ShiftOccurrence, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+occurrenceColumns+`
		FROM shift_occurrences
		WHERE template_id = $1
		ORDER BY start_at
	`, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to query occurrences: %w", err)
	}
	defer rows.Close()

	return collectOccurrences(rows)
}

// GetOccurrencesInRange retrieves occurrences starting within [from, to),
// including soft-deleted ones.
func (d *DB) GetOccurrencesInRange(ctx context.Context, from, to time.Time) ([]model.ShiftOccurrence, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+occurrenceColumns+`
		FROM shift_occurrences
		WHERE start_at >= $1 AND start_at < $2
		ORDER BY start_at
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query occurrences: %w", err)
	}
	defer rows.Close()

	return collectOccurrences(rows)
}

// GetOccurrence retrieves one occurrence by id
func (d *DB) GetOccurrence(ctx context.Context, id string) (*model.ShiftOccurrence, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+occurrenceColumns+`
		FROM shift_occurrences
		WHERE id = $1
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query occurrence: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, fmt.Errorf("occurrence %s not found", id)
	}
	occ, err := scanOccurrence(rows)
	if err != nil {
		return nil, err
	}
	return &occ, nil
}

// UpsertOccurrences inserts or updates a batch of occurrences in one
// transaction.
func (d *DB) UpsertOccurrences(ctx context.Context, occurrences []model.ShiftOccurrence) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, occ := range occurrences {
		requirements, err := json.Marshal(occ.Requirements)
		if err != nil {
			return fmt.Errorf("failed to encode requirements: %w", err)
		}

		assigned := occ.AssignedStaffIDs
		if assigned == nil {
			assigned = []string{}
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO shift_occurrences
				(id, template_id, name, start_at, end_at, requirements,
				 assigned_staff_ids, is_modified, is_deleted, day_adjusted)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (id) DO UPDATE SET
				template_id = EXCLUDED.template_id,
				name = EXCLUDED.name,
				start_at = EXCLUDED.start_at,
				end_at = EXCLUDED.end_at,
				requirements = EXCLUDED.requirements,
				assigned_staff_ids = EXCLUDED.assigned_staff_ids,
				is_modified = EXCLUDED.is_modified,
				is_deleted = EXCLUDED.is_deleted,
				day_adjusted = EXCLUDED.day_adjusted
		`, occ.ID, occ.TemplateID, occ.Name, occ.Start, occ.End, requirements,
			assigned, occ.IsModified, occ.IsDeleted, occ.DayAdjusted)
		if err != nil {
			return fmt.Errorf("failed to upsert occurrence %s: %w", occ.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit occurrences: %w", err)
	}
	return nil
}

// DeleteOccurrencesByTemplate discards every stored occurrence of a template
func (d *DB) DeleteOccurrencesByTemplate(ctx context.Context, templateID string) error {
	_, err := d.pool.Exec(ctx, `
		DELETE FROM shift_occurrences WHERE template_id = $1
	`, templateID)
	if err != nil {
		return fmt.Errorf("failed to delete occurrences for template %s: %w", templateID, err)
	}
	return nil
}

func collectOccurrences(rows pgx.Rows) ([]model.ShiftOccurrence, error) {
	var occurrences []model.ShiftOccurrence
	for rows.Next() {
		occ, err := scanOccurrence(rows)
		if err != nil {
			return nil, err
		}
		occurrences = append(occurrences, occ)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating occurrences: %w", err)
	}
	return occurrences, nil
}

func scanOccurrence(rows pgx.Rows) (model.ShiftOccurrence, error) {
	var occ model.ShiftOccurrence
	var requirements []byte
	if err := rows.Scan(&occ.ID, &occ.TemplateID, &occ.Name, &occ.Start, &occ.End,
		&requirements, &occ.AssignedStaffIDs, &occ.IsModified, &occ.IsDeleted, &occ.DayAdjusted); err != nil {
		return occ, fmt.Errorf("failed to scan occurrence: %w", err)
	}
	if err := json.Unmarshal(requirements, &occ.Requirements); err != nil {
		return occ, fmt.Errorf("failed to decode requirements: %w", err)
	}
	return occ, nil
}
