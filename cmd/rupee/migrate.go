package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/rupee-flow/internal/storage"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

Every other command migrates on startup; this command is for preparing a
database ahead of time or checking its version.`,
		RunE: runMigrate,
	}

	cmd.Flags().Bool("status", false, "show the current schema version without applying changes")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	statusOnly, _ := cmd.Flags().GetBool("status")

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	store, err := storage.Open(ctx, storage.Config{Driver: settings.Database.Driver, DSN: settings.Database.DSN})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	if statusOnly {
		current, err := store.SchemaVersion(ctx)
		if err != nil {
			// A fresh database has no schema_version table yet.
			slog.Debug("Could not read schema version", "error", err)
			current = 0
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Schema version %d of %d\n", current, storage.ExpectedSchemaVersion)
		return nil
	}

	slog.Info("Running database migrations", "driver", store.Driver())
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Database is at schema version %d\n", storage.ExpectedSchemaVersion)
	return nil
}
