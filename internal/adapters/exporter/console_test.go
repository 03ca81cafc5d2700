package exporter

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"instagram-archive-viewer/internal/domain"
)

func captureStdout(t *testing.T, fn func() error) string {
	t.Helper()

	// Перехватываем stdout
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := fn()
	if err != nil {
		t.Errorf("Неожиданная ошибка: %v", err)
	}

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String()
}

func TestConsoleExporter(t *testing.T) {
	t.Run("NewConsoleExporter создает корректный экземпляр", func(t *testing.T) {
		exporter := NewConsoleExporter()
		if exporter == nil {
			t.Error("Ожидался экземпляр ConsoleExporter, получен nil")
		}
	})

	t.Run("Export корректно выводит переписки", func(t *testing.T) {
		exporter := &ConsoleExporter{}
		conversations := []domain.Conversation{
			{
				ThreadPath:   "alice_123",
				Title:        "Alice",
				Participants: []domain.Participant{{Name: "Alice"}, {Name: "Me"}},
				Messages: []domain.Message{
					{SenderName: "Alice", TimestampMS: 100, Content: "hi"},
					{SenderName: "Me", TimestampMS: 200, Content: "hello"},
				},
			},
			{
				ThreadPath: "bob_456",
				Title:      "Bob",
			},
		}

		output := captureStdout(t, func() error {
			return exporter.Export(conversations)
		})

		if !strings.Contains(output, "--- Conversations ---") {
			t.Error("Ожидался заголовок в выводе")
		}

		if !strings.Contains(output, "Alice (thread: alice_123), participants: 2, messages: 2, range: 100..200") {
			t.Error("Ожидалась сводка по переписке Alice в выводе")
		}

		if !strings.Contains(output, "Bob (thread: bob_456), participants: 0, no messages") {
			t.Error("Ожидалась сводка по переписке Bob в выводе")
		}
	})

	t.Run("Export выводит сообщение при отсутствии переписок", func(t *testing.T) {
		exporter := &ConsoleExporter{}

		output := captureStdout(t, func() error {
			return exporter.Export(nil)
		})

		if !strings.Contains(output, "No conversations found.") {
			t.Error("Ожидалось 'No conversations found.' в выводе")
		}
	})
}
