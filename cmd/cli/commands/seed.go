package commands

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/staffrota/shiftplanner/pkg/core/model"
	"github.com/staffrota/shiftplanner/pkg/core/services"
)

// SeedCmd creates the seed command, which loads a small demo dataset:
// traits, staff, and two recurring templates.
func SeedCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load a demo dataset (traits, staff, templates)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runSeed(app); err != nil {
				return fmt.Errorf("seed failed: %w", err)
			}
			fmt.Printf("\n🌱 Demo dataset loaded.\n\n")
			return nil
		},
	}
}

func runSeed(app *AppContext) error {
	firstAid := model.Trait{ID: uuid.New().String(), Name: "First aid"}
	keyHolder := model.Trait{ID: uuid.New().String(), Name: "Key holder"}
	trainee := model.Trait{ID: uuid.New().String(), Name: "Trainee"}

	for _, t := range []model.Trait{firstAid, keyHolder, trainee} {
		trait := t
		if err := app.Database.UpsertTrait(app.Ctx, &trait); err != nil {
			return err
		}
	}

	one := 1
	three := 3
	staff := []model.StaffMember{
		{ID: uuid.New().String(), Name: "Asha Patel", TraitIDs: []string{firstAid.ID, keyHolder.ID}},
		{ID: uuid.New().String(), Name: "Ben Okafor", TraitIDs: []string{firstAid.ID}},
		{ID: uuid.New().String(), Name: "Carla Mendes", TraitIDs: []string{keyHolder.ID},
			Constraints: model.StaffConstraints{MaxShiftsPerWeek: &three}},
		{ID: uuid.New().String(), Name: "Dan Whitfield"},
		{ID: uuid.New().String(), Name: "Eve Lindqvist", TraitIDs: []string{trainee.ID},
			Constraints: model.StaffConstraints{MaxShiftsPerDay: &one, MaxShiftsPerWeek: &three}},
	}
	for i := range staff {
		if err := app.Database.UpsertStaffMember(app.Ctx, &staff[i]); err != nil {
			return err
		}
	}

	now := time.Now()
	monday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monday = monday.AddDate(0, 0, -((int(monday.Weekday()) + 6) % 7))

	templates := []model.ShiftTemplate{
		{
			ID:    uuid.New().String(),
			Name:  "Morning cover",
			Start: monday.Add(9 * time.Hour),
			End:   monday.Add(13 * time.Hour),
			Recurrence: &model.RecurrenceRule{
				Kind:     model.RecurrenceWeekly,
				Interval: 1,
				Weekdays: []time.Weekday{time.Monday, time.Wednesday, time.Friday},
			},
			Requirements: model.Requirements{
				Headcount: 2,
				Traits:    []model.TraitRequirement{{TraitID: firstAid.ID, MinCount: 1}},
			},
		},
		{
			ID:    uuid.New().String(),
			Name:  "Evening close",
			Start: monday.Add(17 * time.Hour),
			End:   monday.Add(21 * time.Hour),
			Recurrence: &model.RecurrenceRule{
				Kind:     model.RecurrenceDaily,
				Interval: 1,
			},
			Requirements: model.Requirements{
				Headcount: 1,
				Traits:    []model.TraitRequirement{{TraitID: keyHolder.ID, MinCount: 1}},
				// Trainees cannot close alone.
				ExcludedTraitIDs: []string{trainee.ID},
			},
		},
	}

	for i := range templates {
		if _, err := services.UpdateTemplate(app.Ctx, app.Database, app.Cfg, app.Logger, templates[i], false); err != nil {
			return err
		}
	}

	return nil
}
