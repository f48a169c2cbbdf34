package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Veraticus/rupee-flow/internal/ingest"
	"github.com/spf13/cobra"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import SMS messages from a CSV or JSON lines export",
		Long: `Import raw SMS messages into the local database for processing.

CSV files need a header row with a message column; id, user_id, sender and
received_at are optional. JSON lines files hold one object per line with the
same fields. Messages without an id get one derived from their content, so
importing the same file twice is harmless.`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}

	cmd.Flags().String("user", "", "user id for records that do not name one")
	cmd.Flags().String("format", "", "input format (csv, jsonl); detected from the extension by default")
	cmd.Flags().Bool("dry-run", false, "parse the file without saving")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path := args[0]
	user, _ := cmd.Flags().GetString("user")
	formatName, _ := cmd.Flags().GetString("format")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	var (
		format ingest.Format
		err    error
	)
	if formatName != "" {
		format, err = ingest.ParseFormat(formatName)
	} else {
		format, err = ingest.DetectFormat(path)
	}
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	messages, err := ingest.Read(f, format, ingest.Defaults{UserID: user})
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	slog.Info("Parsed messages",
		"file", path,
		"format", format,
		"messages", len(messages))

	if dryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "Would import %d messages\n", len(messages))
		return nil
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	store, err := openStore(ctx, settings)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.SaveMessages(ctx, messages); err != nil {
		return fmt.Errorf("failed to save messages: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d messages from %s\n", len(messages), path)
	return nil
}
