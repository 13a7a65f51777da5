// Package root contains the root command for the application.
package root

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"treeworks/jobrecon/internal/config"
)

var (
	// Log is the shared logger instance for commands.
	Log = logrus.New()

	// Cfg is the loaded application configuration, available to all
	// subcommands after PersistentPreRun.
	Cfg *config.Config

	// Cmd is the root command.
	Cmd = &cobra.Command{
		Use:   "jobrecon",
		Short: "Reconcile work orders across the job tracker, TM report and ledger export.",
		Long: `jobrecon reconciles work-order records across up to three datasets that
refer to the same jobs under inconsistent identifiers, contractor names and
costs. It classifies every job into exactly one outcome category and exports
the mismatches for review.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to jobrecon!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadEnv()

			cfg, err := config.Load()
			if err != nil {
				Log.Fatalf("Failed to load configuration: %v", err)
			}
			Cfg = cfg
			Log = config.ConfigureLogging(cfg)
		},
	}
)
