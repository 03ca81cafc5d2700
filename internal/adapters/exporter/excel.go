package exporter

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"instagram-archive-viewer/internal/domain"
	"instagram-archive-viewer/internal/ports"
)

const (
	conversationsSheet = "Переписки"
	messagesSheet      = "Сообщения"
)

// ExcelExporter реализует интерфейс Exporter для выгрузки переписок в xlsx-файл.
type ExcelExporter struct {
	path string
}

// NewExcelExporter создает новый экземпляр ExcelExporter, пишущий в указанный файл.
func NewExcelExporter(path string) ports.Exporter {
	return &ExcelExporter{path: path}
}

// Export записывает сводный лист по перепискам и лист со всеми сообщениями.
func (e *ExcelExporter) Export(conversations []domain.Conversation) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(conversationsSheet)
	if err != nil {
		return fmt.Errorf("не удалось создать лист: %w", err)
	}
	f.SetActiveSheet(index)
	if _, err := f.NewSheet(messagesSheet); err != nil {
		return fmt.Errorf("не удалось создать лист: %w", err)
	}
	f.DeleteSheet("Sheet1")

	// Заголовки
	convHeaders := []string{"Дата экспорта", "Переписка", "Путь треда", "Участники", "Сообщений"}
	for i, h := range convHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(conversationsSheet, cell, h)
	}
	msgHeaders := []string{"Переписка", "Отправитель", "Время", "Текст", "Тип"}
	for i, h := range msgHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(messagesSheet, cell, h)
	}

	// Данные
	exportDate := time.Now().Format(time.RFC3339)
	msgRow := 2
	for i, conv := range conversations {
		row := i + 2
		f.SetCellValue(conversationsSheet, fmt.Sprintf("A%d", row), exportDate)
		f.SetCellValue(conversationsSheet, fmt.Sprintf("B%d", row), conv.Title)
		f.SetCellValue(conversationsSheet, fmt.Sprintf("C%d", row), conv.ThreadPath)
		f.SetCellValue(conversationsSheet, fmt.Sprintf("D%d", row), participantNames(conv.Participants))
		f.SetCellValue(conversationsSheet, fmt.Sprintf("E%d", row), len(conv.Messages))

		for _, msg := range conv.Messages {
			f.SetCellValue(messagesSheet, fmt.Sprintf("A%d", msgRow), conv.Title)
			f.SetCellValue(messagesSheet, fmt.Sprintf("B%d", msgRow), msg.SenderName)
			f.SetCellValue(messagesSheet, fmt.Sprintf("C%d", msgRow), time.UnixMilli(msg.TimestampMS).UTC().Format(time.RFC3339))
			f.SetCellValue(messagesSheet, fmt.Sprintf("D%d", msgRow), msg.Content)
			f.SetCellValue(messagesSheet, fmt.Sprintf("E%d", msgRow), msg.Type)
			msgRow++
		}
	}

	if err := f.SaveAs(e.path); err != nil {
		return fmt.Errorf("не удалось сохранить xlsx: %w", err)
	}
	return nil
}

func participantNames(participants []domain.Participant) string {
	names := ""
	for i, p := range participants {
		if i > 0 {
			names += ", "
		}
		names += p.Name
	}
	return names
}
