package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"instagram-archive-viewer/internal/domain"
	"instagram-archive-viewer/internal/pkg/textrepair"
	"instagram-archive-viewer/internal/ports"
)

// MergerImpl реализует интерфейс ConversationMerger — центральную машину
// слияния фрагментов в канонические переписки. Обработка строго
// последовательна: пределы и слияния зависят от состояния, накопленного
// предыдущими записями.
type MergerImpl struct {
	parser           ports.FragmentParser
	resolver         ports.MediaResolver
	maxConversations int
	maxMessages      int
	// nowMS подменяется в тестах для детерминированных меток времени
	// синтетических медиасообщений.
	nowMS func() int64
}

// NewMerger создает новый экземпляр MergerImpl с заданными пределами.
func NewMerger(parser ports.FragmentParser, resolver ports.MediaResolver, maxConversations, maxMessagesPerConversation int) ports.ConversationMerger {
	return &MergerImpl{
		parser:           parser,
		resolver:         resolver,
		maxConversations: maxConversations,
		maxMessages:      maxMessagesPerConversation,
		nowMS:            func() int64 { return time.Now().UnixMilli() },
	}
}

// mergeState — накапливаемое состояние одного вызова слияния:
// карта thread_path -> Conversation плюс порядок создания.
// Состояние локально для вызова, никакого общего между запросами нет.
type mergeState struct {
	byThread map[string]*domain.Conversation
	order    []string
}

func newMergeState() *mergeState {
	return &mergeState{byThread: make(map[string]*domain.Conversation)}
}

// findOrCreate возвращает переписку для thread_path, создавая ее при
// необходимости. Создание невозможно после достижения предела.
func (st *mergeState) findOrCreate(threadPath string, limit int) (*domain.Conversation, bool) {
	if conv, ok := st.byThread[threadPath]; ok {
		return conv, true
	}
	if len(st.order) >= limit {
		return nil, false
	}

	conv := &domain.Conversation{
		ThreadPath:         threadPath,
		Title:              threadPath,
		Participants:       []domain.Participant{},
		Messages:           []domain.Message{},
		IsStillParticipant: true,
	}
	st.byThread[threadPath] = conv
	st.order = append(st.order, threadPath)
	return conv, true
}

// finalize сортирует сообщения каждой переписки по timestamp_ms
// (стабильно: равные метки сохраняют порядок вставки) и возвращает
// переписки в порядке создания.
func (st *mergeState) finalize() []domain.Conversation {
	conversations := make([]domain.Conversation, 0, len(st.order))
	for _, threadPath := range st.order {
		conv := st.byThread[threadPath]
		sort.SliceStable(conv.Messages, func(i, j int) bool {
			return conv.Messages[i].TimestampMS < conv.Messages[j].TimestampMS
		})
		conversations = append(conversations, *conv)
	}
	return conversations
}

// MergeEntries обрабатывает записи архива в порядке перечисления.
// Возвращает переписки и количество успешно разобранных фрагментов.
func (m *MergerImpl) MergeEntries(ctx context.Context, entries []ports.Entry, assets *domain.AssetMap, diags *domain.Diagnostics) ([]domain.Conversation, int, error) {
	st := newMergeState()
	validFragments := 0

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		class := domain.ClassifyPath(entry.PathSegments(), entry.IsDirectory())
		if class.Role != domain.RoleMessageFragment {
			continue
		}
		name := entryName(entry)

		// По достижении предела переписок оставшиеся фрагменты
		// пропускаются целиком, включая фрагменты уже созданных переписок.
		if len(st.order) >= m.maxConversations {
			diags.Add(domain.DiagConversationCapReached, name,
				fmt.Sprintf("conversation limit %d reached, entry skipped", m.maxConversations))
			continue
		}

		conv, _ := st.findOrCreate(class.ThreadPath, m.maxConversations)

		data, err := entry.Read()
		if err != nil {
			diags.Add(domain.DiagFragmentParseError, name, err.Error())
			continue
		}

		fragment, err := m.parser.Parse(data)
		if err != nil {
			diags.Add(fragmentDiagKind(err), name, err.Error())
			continue
		}

		validFragments++
		m.applyFragment(conv, fragment, assets, diags, name)
	}

	m.attachLooseMedia(st, assets)

	return st.finalize(), validFragments, nil
}

// MergeFragments обрабатывает заранее разобранные документы-переписки.
// Медиа не разрешается: у такого входа нет архива с файлами.
func (m *MergerImpl) MergeFragments(ctx context.Context, fragments []domain.Fragment, diags *domain.Diagnostics) ([]domain.Conversation, int, error) {
	st := newMergeState()
	validFragments := 0

	for i, fragment := range fragments {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		name := fmt.Sprintf("document[%d]", i)

		if err := domain.ValidateFragment(fragment, true); err != nil {
			diags.Add(domain.DiagFragmentInvalid, name, err.Error())
			continue
		}

		if len(st.order) >= m.maxConversations {
			diags.Add(domain.DiagConversationCapReached, name,
				fmt.Sprintf("conversation limit %d reached, document skipped", m.maxConversations))
			continue
		}

		conv, _ := st.findOrCreate(fragment.ThreadPath, m.maxConversations)

		validFragments++
		m.applyFragment(conv, &fragment, nil, diags, name)
	}

	return st.finalize(), validFragments, nil
}

// applyFragment вливает один фрагмент в переписку: заголовок, участники,
// сообщения с разрешением медиассылок и пределом сообщений.
func (m *MergerImpl) applyFragment(conv *domain.Conversation, fragment *domain.Fragment, assets *domain.AssetMap, diags *domain.Diagnostics, name string) {
	// Последний непустой заголовок побеждает.
	if fragment.Title != "" {
		conv.Title = textrepair.Repair(fragment.Title)
	}

	// Участники берутся из первого фрагмента, который их предоставил.
	if len(conv.Participants) == 0 && len(fragment.Participants) > 0 {
		conv.Participants = fragment.Participants
		conv.IsStillParticipant = fragment.IsStillParticipant
	}

	if len(fragment.Messages) == 0 {
		return
	}

	available := m.maxMessages - len(conv.Messages)
	if available <= 0 {
		diags.Add(domain.DiagMessageCapReached, name,
			fmt.Sprintf("message limit %d reached for thread %s", m.maxMessages, conv.ThreadPath))
		return
	}

	// Усечение по порядку внутри фрагмента, не по меткам времени.
	take := fragment.Messages
	if len(take) > available {
		take = take[:available]
	}

	for _, msg := range take {
		msg.SenderName = textrepair.Repair(msg.SenderName)
		msg.Content = textrepair.Repair(msg.Content)

		if assets != nil {
			msg.Photos = m.resolveRefs(msg.Photos, domain.MediaPhoto, assets, diags)
			msg.Videos = m.resolveRefs(msg.Videos, domain.MediaVideo, assets, diags)
			msg.AudioFiles = m.resolveRefs(msg.AudioFiles, domain.MediaAudio, assets, diags)
		}

		conv.Messages = append(conv.Messages, msg)
	}
}

// resolveRefs разрешает список медиассылок одного сообщения.
func (m *MergerImpl) resolveRefs(refs []domain.MediaRef, kind domain.MediaKind, assets *domain.AssetMap, diags *domain.Diagnostics) []domain.MediaRef {
	for i, ref := range refs {
		if ref.Type == "" {
			ref.Type = kind
		}
		refs[i] = m.resolver.Resolve(ref, assets, diags)
	}
	return refs
}

// attachLooseMedia добавляет медиафайлы, на которые не сослалось ни одно
// сообщение, как синтетические сообщения своих переписок, чтобы они
// не пропали из просмотра. Пределы сообщений соблюдаются.
func (m *MergerImpl) attachLooseMedia(st *mergeState, assets *domain.AssetMap) {
	if assets == nil {
		return
	}

	for _, asset := range assets.Unreferenced() {
		conv, ok := st.byThread[asset.ThreadPath]
		if !ok || len(conv.Messages) >= m.maxMessages {
			continue
		}

		ref := domain.MediaRef{URI: asset.Asset.DataURI(), Type: asset.Asset.Kind}
		msg := domain.Message{
			SenderName:  "Instagram",
			TimestampMS: m.nowMS(),
			Content:     looseMediaContent(asset.Asset.Kind),
			Type:        "Share",
		}
		switch asset.Asset.Kind {
		case domain.MediaPhoto:
			msg.Photos = []domain.MediaRef{ref}
		case domain.MediaVideo:
			msg.Videos = []domain.MediaRef{ref}
		case domain.MediaAudio:
			msg.AudioFiles = []domain.MediaRef{ref}
		}

		conv.Messages = append(conv.Messages, msg)
	}
}

// looseMediaContent возвращает подпись синтетического медиасообщения.
func looseMediaContent(kind domain.MediaKind) string {
	switch kind {
	case domain.MediaPhoto:
		return "[Media Photo]"
	case domain.MediaVideo:
		return "[Media Video]"
	default:
		return "[Media Audio]"
	}
}

// fragmentDiagKind различает ошибку разбора и структурное нарушение.
func fragmentDiagKind(err error) domain.DiagnosticKind {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return domain.DiagFragmentInvalid
	}
	return domain.DiagFragmentParseError
}
