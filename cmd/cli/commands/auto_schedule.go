package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/staffrota/shiftplanner/pkg/core/services"
)

// AutoScheduleCmd creates the autoSchedule command
func AutoScheduleCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autoSchedule",
		Short: "Auto-fill a week of shifts",
		Long:  "Run the scheduler to fill the given week's open seats, honoring hard constraints and minimizing soft-constraint breaches",
		RunE: func(cmd *cobra.Command, args []string) error {
			weekFlag, _ := cmd.Flags().GetString("week")
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			forceCommit, _ := cmd.Flags().GetBool("force-commit")

			weekStart := time.Now()
			if weekFlag != "" {
				parsed, err := time.Parse("2006-01-02", weekFlag)
				if err != nil {
					return fmt.Errorf("invalid --week date %q (want YYYY-MM-DD): %w", weekFlag, err)
				}
				weekStart = parsed
			}

			app.Logger.Debug("autoSchedule command",
				zap.String("week", weekStart.Format("2006-01-02")),
				zap.Bool("dry_run", dryRun),
				zap.Bool("force_commit", forceCommit))

			result, err := services.AutoSchedule(
				app.Ctx, app.Database, app.Cfg, app.Logger,
				weekStart, dryRun, forceCommit,
			)
			if err != nil {
				return fmt.Errorf("auto-schedule failed: %w", err)
			}

			fmt.Printf("\n🗓  Auto-Schedule Results\n\n")
			fmt.Printf("Week Start: %s\n", result.WeekStart.Format("2006-01-02"))
			switch {
			case dryRun:
				fmt.Printf("Mode:       🧪 DRY RUN (not saved)\n")
			case result.Saved && result.Success:
				fmt.Printf("Status:     ✅ SUCCESS (saved)\n")
			case result.Saved:
				fmt.Printf("Status:     ⚠️  FORCED (saved despite errors)\n")
			default:
				fmt.Printf("Status:     ❌ INCOMPLETE (not saved)\n")
			}
			fmt.Println()

			if len(result.Errors) > 0 {
				fmt.Printf("❌ Errors (%d):\n", len(result.Errors))
				for _, e := range result.Errors {
					fmt.Printf("  • %s\n", e)
				}
				fmt.Println()
			}

			if len(result.Warnings) > 0 {
				fmt.Printf("⚠️  Warnings (%d):\n", len(result.Warnings))
				for _, w := range result.Warnings {
					fmt.Printf("  • %s\n", w)
				}
				fmt.Println()
			}

			fmt.Printf("📋 Assignments:\n\n")
			for _, occ := range result.Occurrences {
				staff := strings.Join(occ.AssignedStaffIDs, ", ")
				if staff == "" {
					staff = "(unstaffed)"
				}
				fmt.Printf("  %s  %-20s %s\n",
					occ.Start.Format("Mon 2006-01-02 15:04"), occ.Name, staff)
			}
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().String("week", "", "Any date inside the target week (YYYY-MM-DD, default: current week)")
	cmd.Flags().Bool("dry-run", false, "Compute the schedule without saving")
	cmd.Flags().Bool("force-commit", false, "Save even when hard requirements are unsatisfiable")

	return cmd
}
