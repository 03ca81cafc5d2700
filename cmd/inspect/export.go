package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"instagram-archive-viewer/internal/adapters/exporter"
)

func exportCmd() *cobra.Command {
	var output string
	var maxConversations, maxMessages int

	cmd := &cobra.Command{
		Use:   "export <archive>",
		Short: "Export conversations from an archive to an xlsx file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := ingestArchive(args[0], maxConversations, maxMessages)
			if err != nil {
				return err
			}

			if err := exporter.NewExcelExporter(output).Export(result.Conversations); err != nil {
				return err
			}

			fmt.Printf("Exported %d conversation(s) to %s\n", len(result.Conversations), output)
			return nil
		},
	}

	cmd.Flags().StringVar(&output, "output", "conversations.xlsx", "Path of the xlsx file to write")
	cmd.Flags().IntVar(&maxConversations, "max-conversations", 0, "Conversation cap (0 = default)")
	cmd.Flags().IntVar(&maxMessages, "max-messages", 0, "Per-conversation message cap (0 = default)")

	return cmd
}
