package exporter

import (
	"fmt"

	"instagram-archive-viewer/internal/domain"
	"instagram-archive-viewer/internal/ports"
)

// ConsoleExporter реализует интерфейс Exporter для вывода данных в консоль.
type ConsoleExporter struct{}

// NewConsoleExporter создает новый экземпляр ConsoleExporter.
func NewConsoleExporter() ports.Exporter {
	return &ConsoleExporter{}
}

// Export выводит сводку по финальному списку переписок в консоль.
func (e *ConsoleExporter) Export(conversations []domain.Conversation) error {
	fmt.Println("--- Conversations ---")
	if len(conversations) == 0 {
		fmt.Println("No conversations found.")
	} else {
		for i, conv := range conversations {
			if len(conv.Messages) > 0 {
				first := conv.Messages[0].TimestampMS
				last := conv.Messages[len(conv.Messages)-1].TimestampMS
				fmt.Printf("%d. %s (thread: %s), participants: %d, messages: %d, range: %d..%d\n",
					i+1, conv.Title, conv.ThreadPath, len(conv.Participants), len(conv.Messages), first, last)
			} else {
				fmt.Printf("%d. %s (thread: %s), participants: %d, no messages\n",
					i+1, conv.Title, conv.ThreadPath, len(conv.Participants))
			}
		}
	}
	return nil
}
