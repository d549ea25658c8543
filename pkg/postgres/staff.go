package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/staffrota/shiftplanner/pkg/core/model"
)

// GetStaff retrieves the full staff roster
func (d *DB) GetStaff(ctx context.Context) ([]model.StaffMember, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, name, trait_ids, constraints, blocked_times
		FROM staff
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query staff: %w", err)
	}
	defer rows.Close()

	var roster []model.StaffMember
	for rows.Next() {
		member, err := scanStaffMember(rows)
		if err != nil {
			return nil, err
		}
		roster = append(roster, *member)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating staff: %w", err)
	}

	return roster, nil
}

// GetStaffMember retrieves one staff member by id
func (d *DB) GetStaffMember(ctx context.Context, id string) (*model.StaffMember, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, name, trait_ids, constraints, blocked_times
		FROM staff
		WHERE id = $1
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query staff member: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, fmt.Errorf("staff member %s not found", id)
	}
	return scanStaffMember(rows)
}

// UpsertStaffMember inserts or updates a staff member
func (d *DB) UpsertStaffMember(ctx context.Context, member *model.StaffMember) error {
	constraints, err := json.Marshal(member.Constraints)
	if err != nil {
		return fmt.Errorf("failed to encode constraints: %w", err)
	}
	blockedTimes, err := json.Marshal(member.BlockedTimes)
	if err != nil {
		return fmt.Errorf("failed to encode blocked times: %w", err)
	}

	traitIDs := member.TraitIDs
	if traitIDs == nil {
		traitIDs = []string{}
	}

	_, err = d.pool.Exec(ctx, `
		INSERT INTO staff (id, name, trait_ids, constraints, blocked_times)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			trait_ids = EXCLUDED.trait_ids,
			constraints = EXCLUDED.constraints,
			blocked_times = EXCLUDED.blocked_times
	`, member.ID, member.Name, traitIDs, constraints, blockedTimes)
	if err != nil {
		return fmt.Errorf("failed to upsert staff member: %w", err)
	}
	return nil
}

func scanStaffMember(rows pgx.Rows) (*model.StaffMember, error) {
	var member model.StaffMember
	var constraints, blockedTimes []byte
	if err := rows.Scan(&member.ID, &member.Name, &member.TraitIDs, &constraints, &blockedTimes); err != nil {
		return nil, fmt.Errorf("failed to scan staff member: %w", err)
	}
	if err := json.Unmarshal(constraints, &member.Constraints); err != nil {
		return nil, fmt.Errorf("failed to decode constraints: %w", err)
	}
	if err := json.Unmarshal(blockedTimes, &member.BlockedTimes); err != nil {
		return nil, fmt.Errorf("failed to decode blocked times: %w", err)
	}
	return &member, nil
}
