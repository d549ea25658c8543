package services

import (
	"github.com/staffrota/shiftplanner/pkg/core/model"
)

// MergeOccurrences reconciles a freshly generated occurrence series with the
// stored series for the same template. Occurrence ids are deterministic over
// (template, start, index), so matching by id is matching by key.
//
//   - A stored tombstone (isDeleted) always wins: deletion is terminal for
//     its key and the generator must never re-materialize it.
//   - A stored manual edit (isModified) always wins.
//   - Otherwise the regenerated occurrence wins, but keeps the stored
//     assignments so regeneration never silently unstaffs a shift.
//   - Stored occurrences whose key the generator no longer produces are
//     dropped, except manual edits, which are preserved.
func MergeOccurrences(generated, stored []model.ShiftOccurrence) []model.ShiftOccurrence {
	storedByID := make(map[string]model.ShiftOccurrence, len(stored))
	for _, occ := range stored {
		storedByID[occ.ID] = occ
	}

	generatedIDs := make(map[string]bool, len(generated))
	merged := make([]model.ShiftOccurrence, 0, len(generated))

	for _, gen := range generated {
		generatedIDs[gen.ID] = true

		prev, ok := storedByID[gen.ID]
		if !ok {
			merged = append(merged, gen)
			continue
		}
		if prev.IsDeleted || prev.IsModified {
			merged = append(merged, prev)
			continue
		}
		gen.AssignedStaffIDs = prev.AssignedStaffIDs
		merged = append(merged, gen)
	}

	// Keys the generator no longer produces: keep manual edits, drop the rest
	// (including tombstones, whose key is gone with the template shape).
	for _, prev := range stored {
		if !generatedIDs[prev.ID] && prev.IsModified && !prev.IsDeleted {
			merged = append(merged, prev)
		}
	}

	return merged
}
