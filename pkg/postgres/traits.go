package postgres

import (
	"context"
	"fmt"

	"github.com/staffrota/shiftplanner/pkg/core/model"
)

// GetTraits retrieves all traits
func (d *DB) GetTraits(ctx context.Context) ([]model.Trait, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, name FROM traits ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query traits: %w", err)
	}
	defer rows.Close()

	var traits []model.Trait
	for rows.Next() {
		var t model.Trait
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("failed to scan trait: %w", err)
		}
		traits = append(traits, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating traits: %w", err)
	}

	return traits, nil
}

// UpsertTrait inserts or renames a trait
func (d *DB) UpsertTrait(ctx context.Context, trait *model.Trait) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO traits (id, name)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
	`, trait.ID, trait.Name)
	if err != nil {
		return fmt.Errorf("failed to upsert trait: %w", err)
	}
	return nil
}
