package exporter

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"instagram-archive-viewer/internal/domain"
)

func TestExcelExporter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.xlsx")
	exporter := NewExcelExporter(path)

	conversations := []domain.Conversation{
		{
			ThreadPath:   "alice_123",
			Title:        "Alice",
			Participants: []domain.Participant{{Name: "Alice"}, {Name: "Me"}},
			Messages: []domain.Message{
				{SenderName: "Alice", TimestampMS: 1_600_000_000_000, Content: "hi", Type: "Generic"},
				{SenderName: "Me", TimestampMS: 1_600_000_060_000, Content: "hello", Type: "Generic"},
			},
		},
		{
			ThreadPath: "bob_456",
			Title:      "Bob",
		},
	}

	require.NoError(t, exporter.Export(conversations))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue(conversationsSheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Alice", title)

	participants, err := f.GetCellValue(conversationsSheet, "D2")
	require.NoError(t, err)
	assert.Equal(t, "Alice, Me", participants)

	count, err := f.GetCellValue(conversationsSheet, "E2")
	require.NoError(t, err)
	assert.Equal(t, "2", count)

	secondTitle, err := f.GetCellValue(conversationsSheet, "B3")
	require.NoError(t, err)
	assert.Equal(t, "Bob", secondTitle)

	sender, err := f.GetCellValue(messagesSheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Alice", sender)

	content, err := f.GetCellValue(messagesSheet, "D3")
	require.NoError(t, err)
	assert.Equal(t, "hello", content)
}

func TestExcelExporterEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	exporter := NewExcelExporter(path)

	require.NoError(t, exporter.Export(nil))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue(conversationsSheet, "B1")
	require.NoError(t, err)
	assert.Equal(t, "Переписка", header)
}
