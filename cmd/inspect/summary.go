package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"instagram-archive-viewer/internal/adapters/exporter"
)

func summaryCmd() *cobra.Command {
	var maxConversations, maxMessages int

	cmd := &cobra.Command{
		Use:   "summary <archive>",
		Short: "Print a per-conversation summary of an export",
		Long:  `Runs the full ingestion pipeline on a local ZIP or JSON export and prints one line per conversation, followed by any non-fatal diagnostics.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := ingestArchive(args[0], maxConversations, maxMessages)
			if err != nil {
				return err
			}

			if err := exporter.NewConsoleExporter().Export(result.Conversations); err != nil {
				return err
			}

			if len(result.Diagnostics) > 0 {
				fmt.Println("--- Diagnostics ---")
				for _, d := range result.Diagnostics {
					fmt.Printf("%s: %s (%s)\n", d.Kind, d.Entry, d.Detail)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&maxConversations, "max-conversations", 0, "Conversation cap (0 = default)")
	cmd.Flags().IntVar(&maxMessages, "max-messages", 0, "Per-conversation message cap (0 = default)")

	return cmd
}
