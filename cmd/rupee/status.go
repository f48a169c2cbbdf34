package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func statusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show processing progress",
		RunE:  runStatus,
	}

	cmd.Flags().Bool("json", false, "print as JSON")

	return cmd
}

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	asJSON, _ := cmd.Flags().GetBool("json")

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	store, err := openStore(ctx, settings)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	status, err := store.ProcessingStatus(ctx)
	if err != nil {
		return err
	}

	if asJSON {
		return printJSON(cmd.OutOrStdout(), status)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Messages:     %d\n", status.TotalMessages)
	fmt.Fprintf(out, "Processed:    %d (%.1f%%)\n", status.ProcessedMessages, status.ProcessedPercentage)
	fmt.Fprintf(out, "Unprocessed:  %d\n", status.UnprocessedMessages)
	fmt.Fprintf(out, "Transactions: %d\n", status.Transactions)
	return nil
}
