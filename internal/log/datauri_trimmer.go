package log

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
)

// DataURITrimmerHandler - обертка для slog.Handler, которая усекает
// base64-пейлоады data URI в логах. После инлайна медиафайлов ссылки
// на фото превращаются в строки размером с сам файл; без усечения одна
// запись лога может весить мегабайты.
type DataURITrimmerHandler struct {
	handler slog.Handler
}

// NewDataURITrimmerHandler создает новый обработчик с усечением data URI
func NewDataURITrimmerHandler(handler slog.Handler) *DataURITrimmerHandler {
	return &DataURITrimmerHandler{
		handler: handler,
	}
}

// усекаем пейлоады в формате data:<mime>;base64,<данные>, оставляя короткие нетронутыми
var dataURIRegex = regexp.MustCompile(`data:([a-z]+/[a-z0-9.+-]+);base64,([A-Za-z0-9+/=]{48,})`)

// trimDataURIs заменяет base64-часть найденных data URI на короткую заглушку
func trimDataURIs(text string) string {
	return dataURIRegex.ReplaceAllStringFunc(text, func(match string) string {
		sub := dataURIRegex.FindStringSubmatch(match)
		return fmt.Sprintf("data:%s;base64,***trimmed %d bytes***", sub[1], len(sub[2]))
	})
}

// Enabled реализует интерфейс slog.Handler
func (h *DataURITrimmerHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle реализует интерфейс slog.Handler
func (h *DataURITrimmerHandler) Handle(ctx context.Context, record slog.Record) error {
	// Создаем полную, изолированную копию записи.
	// Это предотвращает гонку данных, так как мы больше не работаем
	// с оригинальной записью, которую slog может переиспользовать.
	// Метод Clone() также обнуляет атрибуты в копии, поэтому их нужно добавить заново.
	r := record.Clone()

	// Усекаем основное сообщение.
	r.Message = trimDataURIs(r.Message)

	// Итерируемся по атрибутам оригинальной записи и добавляем их усеченные версии в клон.
	record.Attrs(func(a slog.Attr) bool {
		r.AddAttrs(slog.Attr{
			Key:   a.Key,
			Value: trimAttributeValue(a.Value),
		})
		return true
	})

	return h.handler.Handle(ctx, r)
}

// WithAttrs реализует интерфейс slog.Handler
func (h *DataURITrimmerHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	trimmedAttrs := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		trimmedAttrs[i] = slog.Attr{
			Key:   attr.Key,
			Value: trimAttributeValue(attr.Value),
		}
	}
	return &DataURITrimmerHandler{
		handler: h.handler.WithAttrs(trimmedAttrs),
	}
}

// WithGroup реализует интерфейс slog.Handler
func (h *DataURITrimmerHandler) WithGroup(name string) slog.Handler {
	return &DataURITrimmerHandler{
		handler: h.handler.WithGroup(name),
	}
}

// trimAttributeValue рекурсивно усекает значения атрибутов
func trimAttributeValue(value slog.Value) slog.Value {
	switch value.Kind() {
	case slog.KindString:
		return slog.StringValue(trimDataURIs(value.String()))
	case slog.KindAny:
		// Ошибки преобразуем в строку и усекаем, как обычный текст.
		if err, ok := value.Any().(error); ok {
			return slog.StringValue(trimDataURIs(err.Error()))
		}
		return value
	case slog.KindGroup:
		group := value.Group()
		trimmedGroup := make([]slog.Attr, len(group))
		for i, attr := range group {
			trimmedGroup[i] = slog.Attr{
				Key:   attr.Key,
				Value: trimAttributeValue(attr.Value),
			}
		}
		return slog.GroupValue(trimmedGroup...)
	default:
		// Для других типов возвращаем оригинальное значение
		return value
	}
}

// NewTrimmedLogger создает новый экземпляр slog.Logger с усечением data URI
func NewTrimmedLogger(handler slog.Handler) *slog.Logger {
	return slog.New(NewDataURITrimmerHandler(handler))
}
