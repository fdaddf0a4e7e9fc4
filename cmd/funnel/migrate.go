package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/config"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/database"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/logger"
)

var migrateTarget int32

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded database migrations",
		Long: `Apply the embedded database migrations with tern.

Examples:
  funnel migrate           # migrate to the latest version
  funnel migrate --to 2    # migrate up or down to version 2`,
		RunE: runMigrate,
	}

	cmd.Flags().Int32Var(&migrateTarget, "to", 0, "target schema version, 0 for latest")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.NewLoggerWithService(cfg.Observability, nil)

	return database.Migrate(cmd.Context(), &log, cfg, migrateTarget)
}
