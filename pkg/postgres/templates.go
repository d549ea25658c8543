package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/staffrota/shiftplanner/pkg/core/model"
)

// GetTemplates retrieves all shift templates
func (d *DB) GetTemplates(ctx context.Context) ([]model.ShiftTemplate, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, name, start_at, end_at, recurrence, requirements
		FROM shift_templates
		ORDER BY start_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query templates: %w", err)
	}
	defer rows.Close()

	var templates []model.ShiftTemplate
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, *tpl)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating templates: %w", err)
	}

	return templates, nil
}

// GetTemplate retrieves one shift template by id
func (d *DB) GetTemplate(ctx context.Context, id string) (*model.ShiftTemplate, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, name, start_at, end_at, recurrence, requirements
		FROM shift_templates
		WHERE id = $1
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query template: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, fmt.Errorf("template %s not found", id)
	}
	return scanTemplate(rows)
}

// UpsertTemplate inserts or updates a shift template
func (d *DB) UpsertTemplate(ctx context.Context, tpl *model.ShiftTemplate) error {
	var recurrence []byte
	if tpl.Recurrence != nil {
		var err error
		recurrence, err = json.Marshal(tpl.Recurrence)
		if err != nil {
			return fmt.Errorf("failed to encode recurrence: %w", err)
		}
	}
	requirements, err := json.Marshal(tpl.Requirements)
	if err != nil {
		return fmt.Errorf("failed to encode requirements: %w", err)
	}

	_, err = d.pool.Exec(ctx, `
		INSERT INTO shift_templates (id, name, start_at, end_at, recurrence, requirements)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			start_at = EXCLUDED.start_at,
			end_at = EXCLUDED.end_at,
			recurrence = EXCLUDED.recurrence,
			requirements = EXCLUDED.requirements
	`, tpl.ID, tpl.Name, tpl.Start, tpl.End, recurrence, requirements)
	if err != nil {
		return fmt.Errorf("failed to upsert template: %w", err)
	}
	return nil
}

func scanTemplate(rows pgx.Rows) (*model.ShiftTemplate, error) {
	var tpl model.ShiftTemplate
	var recurrence, requirements []byte
	if err := rows.Scan(&tpl.ID, &tpl.Name, &tpl.Start, &tpl.End, &recurrence, &requirements); err != nil {
		return nil, fmt.Errorf("failed to scan template: %w", err)
	}
	if len(recurrence) > 0 {
		tpl.Recurrence = &model.RecurrenceRule{}
		if err := json.Unmarshal(recurrence, tpl.Recurrence); err != nil {
			return nil, fmt.Errorf("failed to decode recurrence: %w", err)
		}
	}
	if err := json.Unmarshal(requirements, &tpl.Requirements); err != nil {
		return nil, fmt.Errorf("failed to decode requirements: %w", err)
	}
	return &tpl, nil
}
