package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instagram-archive-viewer/internal/adapters/parser"
	"instagram-archive-viewer/internal/domain"
)

func newTestMerger(maxConversations, maxMessages int) *MergerImpl {
	return &MergerImpl{
		parser:           parser.NewFragmentParser(),
		resolver:         NewMediaResolver(),
		maxConversations: maxConversations,
		maxMessages:      maxMessages,
		nowMS:            func() int64 { return 999_000 },
	}
}

func TestMergeEntriesSameThread(t *testing.T) {
	m := newTestMerger(100, 100)
	var diags domain.Diagnostics

	entries := entriesOf(
		memEntry{path: "inbox/alice/message_2.json", data: []byte(`{
			"participants": [{"name": "Alice"}, {"name": "Me"}],
			"messages": [{"sender_name": "Alice", "timestamp_ms": 300, "content": "late"}]
		}`)},
		memEntry{path: "inbox/alice/message_1.json", data: []byte(`{
			"title": "Alice Chat",
			"participants": [{"name": "Ignored"}],
			"messages": [
				{"sender_name": "Me", "timestamp_ms": 100, "content": "first"},
				{"sender_name": "Alice", "timestamp_ms": 200, "content": "second"}
			]
		}`)},
	)

	conversations, valid, err := m.MergeEntries(context.Background(), entries, domain.NewAssetMap(), &diags)
	require.NoError(t, err)
	assert.Equal(t, 2, valid)
	require.Len(t, conversations, 1)

	conv := conversations[0]
	assert.Equal(t, "alice", conv.ThreadPath)
	// Последний непустой заголовок побеждает
	assert.Equal(t, "Alice Chat", conv.Title)
	// Участники из первого фрагмента, предоставившего их
	require.Len(t, conv.Participants, 2)
	assert.Equal(t, "Alice", conv.Participants[0].Name)

	// Сообщения обоих фрагментов, отсортированы по timestamp_ms
	require.Len(t, conv.Messages, 3)
	assert.Equal(t, []int64{100, 200, 300}, []int64{
		conv.Messages[0].TimestampMS,
		conv.Messages[1].TimestampMS,
		conv.Messages[2].TimestampMS,
	})
}

func TestMergeEntriesStableSort(t *testing.T) {
	m := newTestMerger(100, 100)
	var diags domain.Diagnostics

	entries := entriesOf(
		memEntry{path: "inbox/a/message_1.json", data: []byte(`{"messages": [
			{"sender_name": "X", "timestamp_ms": 100, "content": "first-inserted"},
			{"sender_name": "X", "timestamp_ms": 100, "content": "second-inserted"}
		]}`)},
	)

	conversations, _, err := m.MergeEntries(context.Background(), entries, domain.NewAssetMap(), &diags)
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	require.Len(t, conversations[0].Messages, 2)
	assert.Equal(t, "first-inserted", conversations[0].Messages[0].Content)
	assert.Equal(t, "second-inserted", conversations[0].Messages[1].Content)
}

func TestMergeEntriesMalformedFragment(t *testing.T) {
	m := newTestMerger(100, 100)
	var diags domain.Diagnostics

	entries := entriesOf(
		memEntry{path: "inbox/alice/message_1.json", data: []byte(`{broken json`)},
		memEntry{path: "inbox/bob/message_1.json", data: []byte(`{
			"title": "Bob",
			"messages": [{"sender_name": "Bob", "timestamp_ms": 1, "content": "ok"}]
		}`)},
	)

	conversations, valid, err := m.MergeEntries(context.Background(), entries, domain.NewAssetMap(), &diags)
	require.NoError(t, err)
	assert.Equal(t, 1, valid)

	// Переписка создается по папке даже при битом фрагменте
	require.Len(t, conversations, 2)
	assert.Equal(t, "alice", conversations[0].ThreadPath)
	assert.Empty(t, conversations[0].Messages)
	assert.Equal(t, "Bob", conversations[1].Title)

	require.Equal(t, 1, diags.Len())
	assert.Equal(t, domain.DiagFragmentParseError, diags.Items()[0].Kind)
	assert.Equal(t, "inbox/alice/message_1.json", diags.Items()[0].Entry)
}

func TestMergeEntriesInvalidFragment(t *testing.T) {
	m := newTestMerger(100, 100)
	var diags domain.Diagnostics

	entries := entriesOf(
		memEntry{path: "inbox/alice/message_1.json", data: []byte(`{"messages": [{"timestamp_ms": -1}]}`)},
	)

	_, valid, err := m.MergeEntries(context.Background(), entries, domain.NewAssetMap(), &diags)
	require.NoError(t, err)
	assert.Zero(t, valid)
	require.Equal(t, 1, diags.Len())
	assert.Equal(t, domain.DiagFragmentInvalid, diags.Items()[0].Kind)
}

func TestMergeEntriesConversationCap(t *testing.T) {
	m := newTestMerger(2, 100)
	var diags domain.Diagnostics

	fragment := func(content string) []byte {
		return []byte(fmt.Sprintf(`{"messages": [{"sender_name": "X", "timestamp_ms": 1, "content": %q}]}`, content))
	}

	entries := entriesOf(
		memEntry{path: "inbox/a/message_1.json", data: fragment("a1")},
		memEntry{path: "inbox/a/message_2.json", data: fragment("a2")},
		memEntry{path: "inbox/b/message_1.json", data: fragment("b1")},
		memEntry{path: "inbox/c/message_1.json", data: fragment("c1")},
		memEntry{path: "inbox/a/message_3.json", data: fragment("a3")},
	)

	conversations, _, err := m.MergeEntries(context.Background(), entries, domain.NewAssetMap(), &diags)
	require.NoError(t, err)
	require.Len(t, conversations, 2)
	assert.Equal(t, "a", conversations[0].ThreadPath)
	assert.Equal(t, "b", conversations[1].ThreadPath)

	// После достижения предела пропускаются и фрагменты существующих переписок
	assert.Len(t, conversations[0].Messages, 2)

	capDiags := 0
	for _, d := range diags.Items() {
		if d.Kind == domain.DiagConversationCapReached {
			capDiags++
		}
	}
	assert.Equal(t, 2, capDiags)
}

func TestMergeEntriesMessageCap(t *testing.T) {
	m := newTestMerger(100, 2)
	var diags domain.Diagnostics

	entries := entriesOf(
		memEntry{path: "inbox/a/message_1.json", data: []byte(`{"messages": [
			{"sender_name": "X", "timestamp_ms": 30, "content": "kept-1"},
			{"sender_name": "X", "timestamp_ms": 10, "content": "kept-2"},
			{"sender_name": "X", "timestamp_ms": 20, "content": "dropped"}
		]}`)},
		memEntry{path: "inbox/a/message_2.json", data: []byte(`{"messages": [
			{"sender_name": "X", "timestamp_ms": 5, "content": "no slots"}
		]}`)},
	)

	conversations, _, err := m.MergeEntries(context.Background(), entries, domain.NewAssetMap(), &diags)
	require.NoError(t, err)
	require.Len(t, conversations, 1)

	// Усечение по порядку фрагмента: первые availableSlots сообщений
	msgs := conversations[0].Messages
	require.Len(t, msgs, 2)
	assert.Equal(t, "kept-2", msgs[0].Content) // timestamp 10
	assert.Equal(t, "kept-1", msgs[1].Content) // timestamp 30

	require.Equal(t, 1, diags.Len())
	assert.Equal(t, domain.DiagMessageCapReached, diags.Items()[0].Kind)
}

func TestMergeEntriesMediaResolution(t *testing.T) {
	m := newTestMerger(100, 100)
	var diags domain.Diagnostics

	assets := domain.NewAssetMap()
	assets.Put("p1.jpg", "alice", domain.MediaAsset{Kind: domain.MediaPhoto, MIMEType: "image/jpeg", Payload: []byte("jpeg")})

	entries := entriesOf(
		memEntry{path: "inbox/alice/message_1.json", data: []byte(`{"messages": [
			{"sender_name": "Alice", "timestamp_ms": 100, "photos": [{"uri": "inbox/alice/photos/p1.jpg"}]},
			{"sender_name": "Alice", "timestamp_ms": 200, "videos": [{"uri": "inbox/alice/videos/gone.mp4"}]}
		]}`)},
	)

	conversations, _, err := m.MergeEntries(context.Background(), entries, assets, &diags)
	require.NoError(t, err)
	require.Len(t, conversations, 1)

	msgs := conversations[0].Messages
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0].Photos[0].URI, "data:image/jpeg;base64,")
	assert.Equal(t, domain.MediaPhoto, msgs[0].Photos[0].Type)

	// Неразрешенная ссылка сохраняет исходный путь
	assert.Equal(t, "inbox/alice/videos/gone.mp4", msgs[1].Videos[0].URI)
	require.Equal(t, 1, diags.Len())
	assert.Equal(t, domain.DiagUnresolvedMediaReference, diags.Items()[0].Kind)
}

func TestMergeEntriesLooseMedia(t *testing.T) {
	m := newTestMerger(100, 100)
	var diags domain.Diagnostics

	assets := domain.NewAssetMap()
	assets.Put("unref.jpg", "alice", domain.MediaAsset{Kind: domain.MediaPhoto, MIMEType: "image/jpeg", Payload: []byte("x")})
	assets.Put("orphan.mp4", "nobody", domain.MediaAsset{Kind: domain.MediaVideo, MIMEType: "video/mp4", Payload: []byte("y")})

	entries := entriesOf(
		memEntry{path: "inbox/alice/message_1.json", data: []byte(`{"messages": [
			{"sender_name": "Alice", "timestamp_ms": 100, "content": "hi"}
		]}`)},
	)

	conversations, _, err := m.MergeEntries(context.Background(), entries, assets, &diags)
	require.NoError(t, err)
	require.Len(t, conversations, 1)

	msgs := conversations[0].Messages
	require.Len(t, msgs, 2)

	synthetic := msgs[1]
	assert.Equal(t, "Instagram", synthetic.SenderName)
	assert.Equal(t, "Share", synthetic.Type)
	assert.Equal(t, "[Media Photo]", synthetic.Content)
	assert.Equal(t, int64(999_000), synthetic.TimestampMS)
	require.Len(t, synthetic.Photos, 1)
	assert.Contains(t, synthetic.Photos[0].URI, "data:image/jpeg;base64,")
}

func TestMergeEntriesContextCanceled(t *testing.T) {
	m := newTestMerger(100, 100)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var diags domain.Diagnostics
	_, _, err := m.MergeEntries(ctx, entriesOf(memEntry{path: "inbox/a/message_1.json", data: []byte("{}")}), domain.NewAssetMap(), &diags)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMergeFragments(t *testing.T) {
	m := newTestMerger(2, 100)

	t.Run("Слияние документов по thread_path", func(t *testing.T) {
		var diags domain.Diagnostics
		fragments := []domain.Fragment{
			{ThreadPath: "alice", Title: "Alice", Messages: []domain.Message{{SenderName: "Alice", TimestampMS: 200}}},
			{ThreadPath: "alice", Messages: []domain.Message{{SenderName: "Me", TimestampMS: 100}}},
		}

		conversations, valid, err := m.MergeFragments(context.Background(), fragments, &diags)
		require.NoError(t, err)
		assert.Equal(t, 2, valid)
		require.Len(t, conversations, 1)
		assert.Equal(t, "Alice", conversations[0].Title)
		require.Len(t, conversations[0].Messages, 2)
		assert.Equal(t, int64(100), conversations[0].Messages[0].TimestampMS)
	})

	t.Run("Документ без thread_path отклоняется", func(t *testing.T) {
		var diags domain.Diagnostics
		fragments := []domain.Fragment{{Title: "no thread"}}

		conversations, valid, err := m.MergeFragments(context.Background(), fragments, &diags)
		require.NoError(t, err)
		assert.Zero(t, valid)
		assert.Empty(t, conversations)
		require.Equal(t, 1, diags.Len())
		assert.Equal(t, domain.DiagFragmentInvalid, diags.Items()[0].Kind)
	})

	t.Run("Предел переписок", func(t *testing.T) {
		var diags domain.Diagnostics
		fragments := []domain.Fragment{
			{ThreadPath: "a"}, {ThreadPath: "b"}, {ThreadPath: "c"},
		}

		conversations, _, err := m.MergeFragments(context.Background(), fragments, &diags)
		require.NoError(t, err)
		assert.Len(t, conversations, 2)
		require.Equal(t, 1, diags.Len())
		assert.Equal(t, domain.DiagConversationCapReached, diags.Items()[0].Kind)
	})
}

func TestMergeEntriesRepairsText(t *testing.T) {
	m := newTestMerger(100, 100)
	var diags domain.Diagnostics

	// "café" в экспорте хранится как UTF-8, прочитанный как Latin-1
	entries := entriesOf(
		memEntry{path: "inbox/alice/message_1.json", data: []byte(`{
			"title": "cafÃ©",
			"messages": [{"sender_name": "JosÃ©", "timestamp_ms": 1, "content": "cafÃ©?"}]
		}`)},
	)

	conversations, _, err := m.MergeEntries(context.Background(), entries, domain.NewAssetMap(), &diags)
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	assert.Equal(t, "café", conversations[0].Title)
	assert.Equal(t, "José", conversations[0].Messages[0].SenderName)
	assert.Equal(t, "café?", conversations[0].Messages[0].Content)
}
