package commands

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/staffrota/shiftplanner/pkg/core/model"
	"github.com/staffrota/shiftplanner/pkg/core/services"
)

// templateFile is the YAML shape accepted by importTemplate.
type templateFile struct {
	ID         string `yaml:"id,omitempty"`
	Name       string `yaml:"name"`
	Start      string `yaml:"start"`
	End        string `yaml:"end"`
	Recurrence *struct {
		Kind     string   `yaml:"kind"`
		Interval int      `yaml:"interval"`
		Until    string   `yaml:"until,omitempty"`
		Weekdays []string `yaml:"weekdays,omitempty"`
	} `yaml:"recurrence,omitempty"`
	Requirements struct {
		Headcount int `yaml:"headcount"`
		Traits    []struct {
			TraitID  string `yaml:"traitId"`
			MinCount int    `yaml:"minCount"`
		} `yaml:"traits,omitempty"`
		ExcludedTraitIDs []string `yaml:"excludedTraitIds,omitempty"`
	} `yaml:"requirements"`
}

var weekdayNames = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday,
	"friday": time.Friday, "saturday": time.Saturday,
}

// ImportTemplateCmd creates the importTemplate command
func ImportTemplateCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "importTemplate <file>",
		Short: "Create or update a shift template from a YAML file",
		Long:  "Save a shift template and regenerate its occurrences. Use --destructive when the edit changes timing, recurrence, or trait requirements: it discards stored occurrence-level overrides first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			destructive, _ := cmd.Flags().GetBool("destructive")

			tpl, err := loadTemplateFile(args[0])
			if err != nil {
				return err
			}

			result, err := services.UpdateTemplate(app.Ctx, app.Database, app.Cfg, app.Logger, *tpl, destructive)
			if err != nil {
				return fmt.Errorf("template update failed: %w", err)
			}

			fmt.Printf("\n📝 Template %q saved (%d occurrences)\n", tpl.Name, result.Occurrences)
			for _, note := range result.Notes {
				fmt.Printf("  • %s\n", note)
			}
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().Bool("destructive", false, "Discard stored occurrence overrides before re-expanding")

	return cmd
}

func loadTemplateFile(path string) (*model.ShiftTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template file: %w", err)
	}

	var file templateFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse template file: %w", err)
	}

	start, err := time.Parse("2006-01-02 15:04", file.Start)
	if err != nil {
		return nil, fmt.Errorf("invalid start %q (want YYYY-MM-DD HH:MM): %w", file.Start, err)
	}
	end, err := time.Parse("2006-01-02 15:04", file.End)
	if err != nil {
		return nil, fmt.Errorf("invalid end %q (want YYYY-MM-DD HH:MM): %w", file.End, err)
	}

	tpl := &model.ShiftTemplate{
		ID:    file.ID,
		Name:  file.Name,
		Start: start,
		End:   end,
	}
	if tpl.ID == "" {
		tpl.ID = uuid.New().String()
	}

	tpl.Requirements.Headcount = file.Requirements.Headcount
	for _, t := range file.Requirements.Traits {
		tpl.Requirements.Traits = append(tpl.Requirements.Traits, model.TraitRequirement{
			TraitID:  t.TraitID,
			MinCount: t.MinCount,
		})
	}
	tpl.Requirements.ExcludedTraitIDs = file.Requirements.ExcludedTraitIDs

	if file.Recurrence != nil {
		rule := &model.RecurrenceRule{
			Kind:     model.RecurrenceKind(file.Recurrence.Kind),
			Interval: file.Recurrence.Interval,
		}
		if file.Recurrence.Until != "" {
			until, err := time.Parse("2006-01-02", file.Recurrence.Until)
			if err != nil {
				return nil, fmt.Errorf("invalid until %q (want YYYY-MM-DD): %w", file.Recurrence.Until, err)
			}
			rule.Until = &until
		}
		for _, name := range file.Recurrence.Weekdays {
			weekday, ok := weekdayNames[strings.ToLower(name)]
			if !ok {
				return nil, fmt.Errorf("unknown weekday %q", name)
			}
			rule.Weekdays = append(rule.Weekdays, weekday)
		}
		tpl.Recurrence = rule
	}

	return tpl, nil
}
