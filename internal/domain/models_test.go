package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaAssetDataURI(t *testing.T) {
	t.Run("Кодирование в data URI", func(t *testing.T) {
		asset := MediaAsset{
			Kind:     MediaPhoto,
			MIMEType: "image/jpeg",
			Payload:  []byte("hello"),
		}

		uri := asset.DataURI()
		assert.True(t, strings.HasPrefix(uri, "data:image/jpeg;base64,"))
		assert.Equal(t, "data:image/jpeg;base64,aGVsbG8=", uri)
	})

	t.Run("Пустой payload", func(t *testing.T) {
		asset := MediaAsset{Kind: MediaVideo, MIMEType: "video/mp4"}
		assert.Equal(t, "data:video/mp4;base64,", asset.DataURI())
	})
}

func TestReactionOnly(t *testing.T) {
	tests := []struct {
		name     string
		message  Message
		reaction bool
	}{
		{"liked a message", Message{Content: "Alice liked a message"}, true},
		{"Reacted with emoji", Message{Content: "Reacted ❤ to your message"}, true},
		{"kannada reaction", Message{Content: "ಸಂದೇಶವನ್ನು ಇಷ್ಟಪಟ್ಟಿದ್ದಾರೆ"}, true},
		{"regular text", Message{Content: "see you tomorrow"}, false},
		{"empty content", Message{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.reaction, ReactionOnly(tt.message))
		})
	}
}

func TestFilterMessages(t *testing.T) {
	conv := Conversation{
		ThreadPath: "alice",
		Messages: []Message{
			{SenderName: "Alice", Content: "hi", TimestampMS: 1},
			{SenderName: "Bob", Content: "Bob liked a message", TimestampMS: 2},
			{SenderName: "Alice", Content: "bye", TimestampMS: 3},
		},
	}

	t.Run("Фильтрация реакций не изменяет переписку", func(t *testing.T) {
		filtered := FilterMessages(conv, ReactionOnly)
		require.Len(t, filtered, 2)
		assert.Equal(t, "hi", filtered[0].Content)
		assert.Equal(t, "bye", filtered[1].Content)
		// Исходный список остался прежним
		assert.Len(t, conv.Messages, 3)
	})

	t.Run("Нулевой предикат возвращает все сообщения", func(t *testing.T) {
		filtered := FilterMessages(conv, nil)
		assert.Len(t, filtered, 3)
	})
}
