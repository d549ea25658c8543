package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	"github.com/staffrota/shiftplanner/pkg/core/model"
)

// Closure suppresses shift occurrences on dates matching an RRULE (public
// holidays, maintenance days). Matching occurrences are soft-deleted during
// expansion.
type Closure struct {
	Name  string `yaml:"name" validate:"required"`
	RRule string `yaml:"rrule" validate:"required"`
}

// Config represents the application configuration
type Config struct {
	DatabaseURL string `yaml:"databaseURL" validate:"required"`

	// DefaultMaxShiftsPerWeek and DefaultMaxShiftsPerMonth are org-wide soft
	// caps applied to staff with no explicit caps before scheduling. The core
	// itself treats unset caps as unbounded.
	DefaultMaxShiftsPerWeek  *int `yaml:"defaultMaxShiftsPerWeek,omitempty" validate:"omitempty,min=1"`
	DefaultMaxShiftsPerMonth *int `yaml:"defaultMaxShiftsPerMonth,omitempty" validate:"omitempty,min=1"`

	Closures []Closure `yaml:"closures,omitempty" validate:"dive"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from shiftplanner.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	configPath, err := findConfigFile()
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct and checks rrule syntax
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	for i, closure := range cfg.Closures {
		if _, err := rrule.StrToRRule(closure.RRule); err != nil {
			return fmt.Errorf("invalid rrule in closures[%d]: %w", i, err)
		}
	}

	return nil
}

// ApplyStaffDefaults returns a copy of the roster with the org-wide soft
// caps filled in for members who have none of their own.
func (cfg *Config) ApplyStaffDefaults(roster []model.StaffMember) []model.StaffMember {
	out := make([]model.StaffMember, len(roster))
	copy(out, roster)
	for i := range out {
		if out[i].Constraints.MaxShiftsPerWeek == nil && cfg.DefaultMaxShiftsPerWeek != nil {
			v := *cfg.DefaultMaxShiftsPerWeek
			out[i].Constraints.MaxShiftsPerWeek = &v
		}
		if out[i].Constraints.MaxShiftsPerMonth == nil && cfg.DefaultMaxShiftsPerMonth != nil {
			v := *cfg.DefaultMaxShiftsPerMonth
			out[i].Constraints.MaxShiftsPerMonth = &v
		}
	}
	return out
}

// findConfigFile searches for shiftplanner.yaml in current directory and home directory
func findConfigFile() (string, error) {
	configFileName := "shiftplanner.yaml"

	// Check current directory
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file not found in current directory or home directory")
}
