package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/staffrota/shiftplanner/pkg/core/services"
)

// ExpandShiftsCmd creates the expandShifts command
func ExpandShiftsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "expandShifts",
		Short: "Regenerate shift occurrences from templates",
		Long:  "Expand every recurring shift template into dated occurrences, preserving manual edits and deletions",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := services.ExpandShifts(app.Ctx, app.Database, app.Cfg, app.Logger)
			if err != nil {
				return fmt.Errorf("expansion failed: %w", err)
			}

			fmt.Printf("\n📅 Shift Expansion\n\n")
			fmt.Printf("Templates:   %d\n", result.Templates)
			fmt.Printf("Occurrences: %d\n", result.Occurrences)

			if len(result.Notes) > 0 {
				fmt.Printf("\nℹ️  Notes (%d):\n", len(result.Notes))
				for _, note := range result.Notes {
					fmt.Printf("  • %s\n", note)
				}
			}
			fmt.Println()

			return nil
		},
	}
}
