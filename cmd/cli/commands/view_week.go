package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/staffrota/shiftplanner/pkg/core/constraint"
)

// ViewWeekCmd creates the viewWeek command
func ViewWeekCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "viewWeek",
		Short: "Show a week's occurrences and their staffing state",
		RunE: func(cmd *cobra.Command, args []string) error {
			weekFlag, _ := cmd.Flags().GetString("week")

			weekStart := time.Now()
			if weekFlag != "" {
				parsed, err := time.Parse("2006-01-02", weekFlag)
				if err != nil {
					return fmt.Errorf("invalid --week date %q (want YYYY-MM-DD): %w", weekFlag, err)
				}
				weekStart = parsed
			}
			monday := time.Date(weekStart.Year(), weekStart.Month(), weekStart.Day(), 0, 0, 0, 0, weekStart.Location())
			monday = monday.AddDate(0, 0, -((int(monday.Weekday()) + 6) % 7))

			occurrences, err := app.Database.GetOccurrencesInRange(app.Ctx, monday, monday.AddDate(0, 0, 7))
			if err != nil {
				return fmt.Errorf("failed to fetch occurrences: %w", err)
			}
			roster, err := app.Database.GetStaff(app.Ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch staff: %w", err)
			}
			traits, err := app.Database.GetTraits(app.Ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch traits: %w", err)
			}

			names := make(map[string]string, len(roster))
			for _, m := range roster {
				names[m.ID] = m.Name
			}

			fmt.Printf("\n📅 Week of %s\n\n", monday.Format("2006-01-02"))

			shown := 0
			for _, occ := range occurrences {
				if occ.IsDeleted {
					continue
				}
				shown++

				var assigned []string
				for _, id := range occ.AssignedStaffIDs {
					if name, ok := names[id]; ok {
						assigned = append(assigned, name)
					} else {
						assigned = append(assigned, id)
					}
				}
				staffing := strings.Join(assigned, ", ")
				if staffing == "" {
					staffing = "(unstaffed)"
				}

				fmt.Printf("  %s  %-20s %d/%d  %s\n",
					occ.Start.Format("Mon 15:04"), occ.Name,
					len(occ.AssignedStaffIDs), occ.Requirements.Headcount, staffing)

				shortfalls, err := constraint.EvaluateOccurrence(occ, roster, traits)
				if err != nil {
					return fmt.Errorf("failed to evaluate %q: %w", occ.Name, err)
				}
				for _, v := range shortfalls {
					fmt.Printf("      ⚠️  %s\n", v.Detail())
				}
			}

			if shown == 0 {
				fmt.Printf("  (no occurrences this week, run expandShifts?)\n")
			}
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().String("week", "", "Any date inside the target week (YYYY-MM-DD, default: current week)")

	return cmd
}
