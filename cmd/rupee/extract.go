package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/Veraticus/rupee-flow/internal/common"
	"github.com/Veraticus/rupee-flow/internal/extract"
	"github.com/Veraticus/rupee-flow/internal/model"
	"github.com/spf13/cobra"
)

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract [message]",
		Short: "Extract a transaction from one SMS",
		Long: `Run the extraction pipeline on a single message and print the decision as
JSON. The message is read from the arguments, or from stdin when none are
given. Nothing is stored.`,
		RunE: runExtract,
	}

	cmd.Flags().String("sender", "", "sender id of the message, e.g. VM-BOBTXN")

	return cmd
}

func runExtract(cmd *cobra.Command, args []string) error {
	sender, _ := cmd.Flags().GetString("sender")

	body := strings.Join(args, " ")
	if body == "" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read message: %w", err)
		}
		body = strings.TrimSpace(string(data))
	}
	if body == "" {
		return common.NewUserError("Provide a message as an argument or on stdin.", common.ErrEmptyMessage)
	}

	decision := extract.NewDefault().ExtractWithConfidence(model.Message{Body: body, Sender: sender})
	return printJSON(cmd.OutOrStdout(), decision)
}
