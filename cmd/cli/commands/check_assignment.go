package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/staffrota/shiftplanner/pkg/core/constraint"
	"github.com/staffrota/shiftplanner/pkg/core/services"
)

// CheckAssignmentCmd creates the checkAssignment command
func CheckAssignmentCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkAssignment <staff-id> <occurrence-id>",
		Short: "Preview violations for a manual assignment",
		Long:  "Evaluate a hypothetical staff-to-occurrence assignment and list every violation it would cause. Advisory only: nothing is saved",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := services.CheckAssignment(app.Ctx, app.Database, app.Logger, args[0], args[1])
			if err != nil {
				return fmt.Errorf("check failed: %w", err)
			}

			fmt.Printf("\n🔍 Assignment Check: %s → %q (%s)\n\n",
				result.StaffName, result.ShiftName, result.ShiftStart.Format("2006-01-02 15:04"))

			if len(result.Violations) == 0 {
				fmt.Printf("✅ No violations\n\n")
				return nil
			}

			for _, v := range result.Violations {
				marker := "⚠️ "
				if v.Severity() == constraint.Hard {
					marker = "❌"
				}
				fmt.Printf("  %s [%s] %s\n", marker, v.Kind(), v.Detail())
			}
			fmt.Println()

			return nil
		},
	}

	return cmd
}
