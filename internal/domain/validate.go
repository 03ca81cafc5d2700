package domain

import (
	"fmt"
	"strings"
)

// FieldViolation описывает одно нарушение структуры фрагмента:
// путь к полю и причину.
type FieldViolation struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// ValidationError — типизированная ошибка валидации фрагмента,
// перечисляющая все нарушенные поля, а не только первое.
type ValidationError struct {
	Violations []FieldViolation
}

// Error реализует интерфейс error.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = fmt.Sprintf("%s: %s", v.Path, v.Reason)
	}
	return "invalid fragment: " + strings.Join(parts, "; ")
}

// ValidateFragment проверяет структурную корректность разобранного фрагмента.
// Возвращает *ValidationError со списком всех нарушений или nil,
// если фрагмент корректен. requireThreadPath включает проверку thread_path —
// она нужна только для заранее извлеченных JSON-документов, где ключ слияния
// не выводится из пути в архиве.
func ValidateFragment(f Fragment, requireThreadPath bool) error {
	var violations []FieldViolation

	add := func(path, reason string) {
		violations = append(violations, FieldViolation{Path: path, Reason: reason})
	}

	if requireThreadPath && f.ThreadPath == "" {
		add("thread_path", "must be a non-empty string")
	}

	for i, p := range f.Participants {
		if p.Name == "" {
			add(fmt.Sprintf("participants[%d].name", i), "must be a non-empty string")
		}
	}

	for i, m := range f.Messages {
		if m.SenderName == "" {
			add(fmt.Sprintf("messages[%d].sender_name", i), "must be a non-empty string")
		}
		if m.TimestampMS < 0 {
			add(fmt.Sprintf("messages[%d].timestamp_ms", i), "must be a non-negative epoch-milliseconds value")
		}
		validateRefs(&violations, fmt.Sprintf("messages[%d].photos", i), m.Photos)
		validateRefs(&violations, fmt.Sprintf("messages[%d].videos", i), m.Videos)
		validateRefs(&violations, fmt.Sprintf("messages[%d].audio_files", i), m.AudioFiles)
	}

	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Violations: violations}
}

// validateRefs проверяет список медиассылок по общему правилу: uri обязателен.
func validateRefs(violations *[]FieldViolation, prefix string, refs []MediaRef) {
	for j, r := range refs {
		if r.URI == "" {
			*violations = append(*violations, FieldViolation{
				Path:   fmt.Sprintf("%s[%d].uri", prefix, j),
				Reason: "must be a non-empty string",
			})
		}
	}
}
