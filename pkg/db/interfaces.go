// Package db defines the store interfaces the services operate against.
// The scheduling core never touches these; it consumes plain value objects.
package db

import (
	"context"
	"time"

	"github.com/staffrota/shiftplanner/pkg/core/model"
)

// TemplateStore covers shift template persistence.
type TemplateStore interface {
	GetTemplates(ctx context.Context) ([]model.ShiftTemplate, error)
	GetTemplate(ctx context.Context, id string) (*model.ShiftTemplate, error)
	UpsertTemplate(ctx context.Context, tpl *model.ShiftTemplate) error
}

// OccurrenceStore covers generated and manually edited shift occurrences.
type OccurrenceStore interface {
	GetOccurrencesByTemplate(ctx context.Context, templateID string) ([]model.ShiftOccurrence, error)
	GetOccurrencesInRange(ctx context.Context, from, to time.Time) ([]model.ShiftOccurrence, error)
	GetOccurrence(ctx context.Context, id string) (*model.ShiftOccurrence, error)
	UpsertOccurrences(ctx context.Context, occurrences []model.ShiftOccurrence) error

	// DeleteOccurrencesByTemplate discards every stored occurrence of a
	// template, including manual overrides. Used by destructive edits.
	DeleteOccurrencesByTemplate(ctx context.Context, templateID string) error
}

// StaffStore covers the staff roster.
type StaffStore interface {
	GetStaff(ctx context.Context) ([]model.StaffMember, error)
	GetStaffMember(ctx context.Context, id string) (*model.StaffMember, error)
	UpsertStaffMember(ctx context.Context, member *model.StaffMember) error
}

// TraitStore covers skill/qualification tags.
type TraitStore interface {
	GetTraits(ctx context.Context) ([]model.Trait, error)
	UpsertTrait(ctx context.Context, trait *model.Trait) error
}

// Store is the full set of operations the CLI wires up. The postgres
// implementation satisfies it.
type Store interface {
	TemplateStore
	OccurrenceStore
	StaffStore
	TraitStore
}
