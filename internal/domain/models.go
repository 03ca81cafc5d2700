package domain

import (
	"encoding/base64"
	"fmt"
	"regexp"
)

// MediaKind обозначает тип медиафайла в экспорте.
type MediaKind string

const (
	MediaPhoto MediaKind = "photo"
	MediaVideo MediaKind = "video"
	MediaAudio MediaKind = "audio"
)

// Participant представляет участника переписки.
// Идентичность определяется только именем, как и в исходном экспорте.
type Participant struct {
	Name string `json:"name"`
}

// MediaRef — ссылка на медиафайл внутри сообщения.
// До разрешения URI содержит относительный путь из архива,
// после разрешения — inline data URI.
type MediaRef struct {
	URI  string    `json:"uri"`
	Type MediaKind `json:"type,omitempty"`
}

// MediaAsset — медиафайл, извлеченный из архива.
// Живет только в пределах одного вызова инжеста: создается при сканировании,
// читается при разрешении ссылок и отбрасывается после возврата результата.
type MediaAsset struct {
	Kind     MediaKind
	MIMEType string
	Payload  []byte
}

// DataURI возвращает транспортное представление файла в виде inline data URI.
func (a *MediaAsset) DataURI() string {
	return fmt.Sprintf("data:%s;base64,%s", a.MIMEType, base64.StdEncoding.EncodeToString(a.Payload))
}

// Message представляет одно сообщение переписки.
// Поле timestamp_ms — миллисекунды эпохи; ключ сортировки.
type Message struct {
	SenderName            string     `json:"sender_name"`
	TimestampMS           int64      `json:"timestamp_ms"`
	Content               string     `json:"content,omitempty"`
	Type                  string     `json:"type,omitempty"`
	Photos                []MediaRef `json:"photos,omitempty"`
	Videos                []MediaRef `json:"videos,omitempty"`
	AudioFiles            []MediaRef `json:"audio_files,omitempty"`
	IsGeoblockedForViewer bool       `json:"is_geoblocked_for_viewer"`
}

// Conversation — каноническая модель одной переписки.
// ThreadPath (имя папки переписки в архиве) служит ключом слияния:
// два фрагмента с одинаковым ThreadPath попадают в одну Conversation.
type Conversation struct {
	ThreadPath         string        `json:"thread_path"`
	Title              string        `json:"title"`
	Participants       []Participant `json:"participants"`
	Messages           []Message     `json:"messages"`
	IsStillParticipant bool          `json:"is_still_participant"`
}

// Fragment представляет содержимое одного файла message_*.json —
// частичный вид переписки. Поле thread_path присутствует только
// в заранее извлеченных JSON-документах; при чтении ZIP ключ
// берется из пути записи в архиве.
type Fragment struct {
	ThreadPath         string        `json:"thread_path,omitempty"`
	Title              string        `json:"title,omitempty"`
	Participants       []Participant `json:"participants,omitempty"`
	Messages           []Message     `json:"messages,omitempty"`
	IsStillParticipant bool          `json:"is_still_participant,omitempty"`
}

// reactionPattern распознает псевдосообщения-реакции ("liked a message" и т.п.)
// в уже декодированном тексте.
var reactionPattern = regexp.MustCompile(`(?i)(liked|reacted|ಸಂದೇಶವನ್ನು\s+ಇಷ್ಟಪಟ್ಟಿದ್ದಾರೆ)`)

// ReactionOnly сообщает, является ли сообщение псевдосообщением-реакцией.
// Предикат предназначен для слоя отображения; каноническая модель
// реакции не скрывает.
func ReactionOnly(m Message) bool {
	if m.Content == "" {
		return false
	}
	return reactionPattern.MatchString(m.Content)
}

// FilterMessages возвращает копию списка сообщений переписки без тех,
// для которых предикат drop вернул true. Сама переписка не изменяется.
func FilterMessages(c Conversation, drop func(Message) bool) []Message {
	filtered := make([]Message, 0, len(c.Messages))
	for _, m := range c.Messages {
		if drop != nil && drop(m) {
			continue
		}
		filtered = append(filtered, m)
	}
	return filtered
}
