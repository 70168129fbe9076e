package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/everybody-eats-nz/volunteer-portal-sub005/cmd/cli/commands"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/internal/config"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/civiltime"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/notify"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/postgres"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/utils/logging"
)

var (
	configPath string
	verbose    bool
	app        *commands.AppContext
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cli",
		Short: "Volunteer Portal CLI - Manage shifts, signups, achievements, and surveys",
		Long:  `A CLI tool for running the volunteer portal API server and administering shifts, waitlists, achievements, and feedback surveys.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil {
				if app.Database != nil {
					app.Database.Close()
				}
				if app.Logger != nil {
					app.Logger.Sync()
				}
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the config file (defaults to volunteer_config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to the console")

	// Add all commands
	rootCmd.AddCommand(commands.ServeCmd(app))
	rootCmd.AddCommand(commands.MigrateCmd(app))
	rootCmd.AddCommand(commands.GenerateShiftsCmd(app))
	rootCmd.AddCommand(commands.DeleteDayCmd(app))
	rootCmd.AddCommand(commands.PromoteWaitlistCmd(app))
	rootCmd.AddCommand(commands.MarkNoShowsCmd(app))
	rootCmd.AddCommand(commands.CheckAchievementsCmd(app))
	rootCmd.AddCommand(commands.AssignSurveyCmd(app))
	rootCmd.AddCommand(commands.EligibleUsersCmd(app))
	rootCmd.AddCommand(commands.PublishCalendarCmd(app))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, clock, database, and notifiers
func initApp() error {
	app.Ctx = context.Background()

	var err error
	app.Logger, err = logging.InitLogger("cli", verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Info("Starting application")

	// Load configuration
	if configPath != "" {
		app.Cfg, err = config.LoadFromPath(configPath)
	} else {
		app.Cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully")

	app.Clock, err = civiltime.NewClock(app.Cfg.Timezone)
	if err != nil {
		return fmt.Errorf("failed to load timezone: %w", err)
	}

	// Connect to the database
	databaseURL, err := config.DatabaseURL()
	if err != nil {
		return err
	}
	app.Database, err = postgres.NewDB(app.Ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.Logger.Info("Database connected")

	// Notifications fan out to connected SSE clients and the log.
	app.Registry = notify.NewRegistry(app.Logger)
	app.Notifier = notify.Fanout{app.Registry, &notify.LogNotifier{Logger: app.Logger}}

	return nil
}

func init() {
	app = &commands.AppContext{}
}
