package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/staffrota/shiftplanner/cmd/cli/commands"
	"github.com/staffrota/shiftplanner/internal/config"
	"github.com/staffrota/shiftplanner/pkg/postgres"
	"github.com/staffrota/shiftplanner/pkg/utils/logging"
)

var (
	configPath string
	app        *commands.AppContext
	database   *postgres.DB
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "shiftplanner",
		Short: "Shiftplanner CLI - Plan recurring shifts and assign staff",
		Long:  `A CLI tool for expanding recurring shift templates into dated occurrences and filling them with staff under skill, availability, and workload constraints.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil && app.Logger != nil {
				app.Logger.Sync()
			}
			if database != nil {
				database.Close()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: shiftplanner.yaml)")

	rootCmd.AddCommand(
		commands.ExpandShiftsCmd(appRef()),
		commands.ImportTemplateCmd(appRef()),
		commands.AutoScheduleCmd(appRef()),
		commands.CheckAssignmentCmd(appRef()),
		commands.ViewWeekCmd(appRef()),
		commands.SeedCmd(appRef()),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// appRef returns the shared AppContext, created empty up front so commands
// can hold a stable pointer before initApp fills it in.
func appRef() *commands.AppContext {
	if app == nil {
		app = &commands.AppContext{}
	}
	return app
}

// initApp sets up logger, config, and database
func initApp() error {
	a := appRef()
	a.Ctx = context.Background()

	logger, err := logging.InitLogger("shiftplanner")
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.Logger = logger

	a.Logger.Info("Starting application")

	a.Logger.Debug("Loading configuration")
	if configPath != "" {
		a.Cfg, err = config.LoadFromPath(configPath)
	} else {
		a.Cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.Logger.Debug("Configuration loaded successfully")

	a.Logger.Debug("Connecting to database")
	database, err = postgres.NewDB(a.Ctx, a.Cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.RunMigrations(a.Ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	a.Logger.Debug("Database ready")

	a.Database = database

	a.Logger.Info("Application initialized", zap.String("config", configPath))
	return nil
}
