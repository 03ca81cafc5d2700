package domain

import "errors"

// Фатальные ошибки инжеста. Все остальные сбои (битый фрагмент,
// нечитаемый медиафайл, неразрешенная ссылка) не прерывают обработку
// и накапливаются как Diagnostic.
var (
	// ErrUnsupportedInput — переданные байты не соответствуют заявленному
	// типу входа (например, нет сигнатуры ZIP).
	ErrUnsupportedInput = errors.New("unsupported input")

	// ErrInvalidArchiveFormat — контейнер не удалось разобрать.
	ErrInvalidArchiveFormat = errors.New("invalid archive format")

	// ErrEmptyResult — после обработки не найдено ни одной переписки
	// и ни одного валидного фрагмента.
	ErrEmptyResult = errors.New("no conversations found in archive")
)

// DiagnosticKind классифицирует нефатальную проблему инжеста.
type DiagnosticKind string

const (
	DiagFragmentParseError       DiagnosticKind = "fragment_parse_error"
	DiagFragmentInvalid          DiagnosticKind = "fragment_invalid"
	DiagMediaReadError           DiagnosticKind = "media_read_error"
	DiagUnresolvedMediaReference DiagnosticKind = "unresolved_media_reference"
	DiagConversationCapReached   DiagnosticKind = "conversation_cap_reached"
	DiagMessageCapReached        DiagnosticKind = "message_cap_reached"
)

// Diagnostic — одна запись журнала нефатальных проблем одного вызова инжеста.
type Diagnostic struct {
	Kind   DiagnosticKind `json:"kind"`
	Entry  string         `json:"entry,omitempty"`
	Detail string         `json:"detail"`
}

// Diagnostics — упорядоченный журнал нефатальных проблем.
type Diagnostics struct {
	items []Diagnostic
}

// Add добавляет запись в журнал.
func (d *Diagnostics) Add(kind DiagnosticKind, entry, detail string) {
	d.items = append(d.items, Diagnostic{Kind: kind, Entry: entry, Detail: detail})
}

// Items возвращает накопленные записи в порядке добавления.
func (d *Diagnostics) Items() []Diagnostic {
	return d.items
}

// Len возвращает количество записей.
func (d *Diagnostics) Len() int {
	return len(d.items)
}
