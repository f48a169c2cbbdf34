package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Veraticus/rupee-flow/internal/common"
	"github.com/Veraticus/rupee-flow/internal/extract"
	"github.com/Veraticus/rupee-flow/internal/metrics"
	"github.com/Veraticus/rupee-flow/internal/processing"
	"github.com/Veraticus/rupee-flow/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func processCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Extract transactions from unprocessed messages",
		Long: `Run every unprocessed message through the extraction pipeline, drop
duplicates and low-confidence results, and store the remaining
transactions. Every message read is marked processed.`,
		RunE: runProcess,
	}

	cmd.Flags().Int("limit", 0, "maximum messages to process (0 uses processing.batch_limit)")
	cmd.Flags().Int("workers", 0, "parallel extraction workers (0 uses processing.workers)")
	cmd.Flags().Bool("all", false, "process the whole backlog, ignoring the batch limit")
	cmd.Flags().Bool("dry-run", false, "extract and report without saving")
	cmd.Flags().Bool("no-progress", false, "hide the progress bar")

	_ = viper.BindPFlag("processing.workers", cmd.Flags().Lookup("workers"))

	return cmd
}

func runProcess(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	limit, _ := cmd.Flags().GetInt("limit")
	all, _ := cmd.Flags().GetBool("all")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	noProgress, _ := cmd.Flags().GetBool("no-progress")

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	switch {
	case all:
		limit = 0
	case limit <= 0:
		limit = settings.Processing.BatchLimit
	}

	store, err := openStore(ctx, settings)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	opts := processing.Options{
		Thresholds: settings.Processing.Thresholds,
		Workers:    settings.Processing.Workers,
		Sink:       storage.NewResilientSink(store, storage.DefaultResilientConfig(), metrics.NoOpCollector{}),
		DryRun:     dryRun,
	}
	if !noProgress {
		opts.Progress = os.Stderr
	}

	runner := processing.NewRunner(store, extract.NewDefault(), opts)
	stats, err := runner.ProcessBatch(ctx, limit)
	if errors.Is(err, common.ErrNoMessages) {
		fmt.Fprintln(cmd.OutOrStdout(), "No unprocessed messages found")
		return nil
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if stats.DryRun {
		fmt.Fprintln(out, "Dry run: nothing was saved")
	}
	fmt.Fprintf(out, "Processed %d messages in %s\n", stats.Messages, stats.Duration.Round(time.Millisecond))
	fmt.Fprintf(out, "  transactions:      %d\n", stats.Transactions)
	fmt.Fprintf(out, "  not transactions:  %d\n", stats.NonTransactions)
	fmt.Fprintf(out, "  duplicates:        %d\n", stats.Duplicates)
	fmt.Fprintf(out, "  confidence:        %d high, %d medium, %d low, %d skipped\n",
		stats.HighConfidence, stats.MediumConfidence, stats.LowConfidence, stats.Skipped)
	if stats.Balances > 0 {
		fmt.Fprintf(out, "  balances updated:  %d\n", stats.Balances)
	}
	return nil
}
