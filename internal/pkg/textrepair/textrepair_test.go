package textrepair

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

// mangle воспроизводит порчу текста из экспорта: байты UTF-8
// читаются как Latin-1.
func mangle(t *testing.T, s string) string {
	t.Helper()
	out, err := charmap.ISO8859_1.NewDecoder().String(s)
	require.NoError(t, err)
	return out
}

func TestRepair(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain ascii unchanged", "hello", "hello"},
		{"empty string", "", ""},
		{"mojibake e-acute", "cafÃ©", "café"},
		{"already correct cyrillic unchanged", "привет", "привет"},
		{"already correct emoji unchanged", "😂", "😂"},
		{"latin-1 text that is not valid utf-8 unchanged", "café", "café"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Repair(tt.input))
		})
	}
}

func TestRepairMangledText(t *testing.T) {
	for _, original := range []string{"привет", "😂", "Zoë & José", "こんにちは"} {
		t.Run(original, func(t *testing.T) {
			assert.Equal(t, original, Repair(mangle(t, original)))
		})
	}
}

func TestRepairNoDoubleCorruption(t *testing.T) {
	// Повторный вызов на уже исправленном тексте не должен портить его.
	once := Repair(mangle(t, "café"))
	assert.Equal(t, "café", once)
	assert.Equal(t, "café", Repair(once))
}
