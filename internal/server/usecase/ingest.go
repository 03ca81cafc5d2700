package usecase

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"instagram-archive-viewer/internal/adapters/archive"
	"instagram-archive-viewer/internal/cache"
	"instagram-archive-viewer/internal/domain"
	"instagram-archive-viewer/internal/pkg/config"
	"instagram-archive-viewer/internal/ports"
)

// SourceKind обозначает заявленный тип входа инжеста.
type SourceKind string

const (
	// SourceZip — ZIP-архив экспорта целиком.
	SourceZip SourceKind = "zip"
	// SourceJSON — заранее извлеченный документ с массивом переписок.
	SourceJSON SourceKind = "json"
)

// IngestUseCase инкапсулирует бизнес-логику инжеста одного архива:
// перечисление записей, сканирование медиа, слияние фрагментов
// и финализацию результата. Каждый вызов работает на собственном
// состоянии — общего между запросами нет.
type IngestUseCase struct {
	cfg        *config.Config
	reader     ports.ArchiveReader
	parser     ports.FragmentParser
	resolver   ports.MediaResolver
	merger     ports.ConversationMerger
	cacheStore *cache.CacheStore
}

// NewIngestUseCase создает новый экземпляр IngestUseCase.
func NewIngestUseCase(
	cfg *config.Config,
	reader ports.ArchiveReader,
	parser ports.FragmentParser,
	resolver ports.MediaResolver,
	merger ports.ConversationMerger,
	cacheStore *cache.CacheStore,
) *IngestUseCase {
	return &IngestUseCase{
		cfg:        cfg,
		reader:     reader,
		parser:     parser,
		resolver:   resolver,
		merger:     merger,
		cacheStore: cacheStore,
	}
}

// Ingest превращает сырые байты загрузки в канонический список переписок
// или типизированную ошибку. Нефатальные проблемы не прерывают обработку
// и возвращаются журналом диагностики при успехе.
func (uc *IngestUseCase) Ingest(ctx context.Context, data []byte, kind SourceKind) (*domain.IngestResult, error) {
	hash := cache.CalculateHash(data)
	if cached, found := uc.cacheStore.Get(hash); found {
		slog.Info("Попадание в кеш для загрузки", "hash", hash)
		return cached.Data, nil
	}

	var diags domain.Diagnostics
	var conversations []domain.Conversation
	var validFragments int

	switch kind {
	case SourceZip:
		if !archive.HasZipSignature(data) {
			return nil, fmt.Errorf("%w: missing zip signature", domain.ErrUnsupportedInput)
		}

		entries, err := uc.reader.Enumerate(data)
		if err != nil {
			return nil, err
		}
		slog.Info("Архив перечислен", "entries", len(entries))

		assets, err := uc.resolver.Scan(ctx, entries, &diags)
		if err != nil {
			return nil, err
		}
		slog.Info("Медиафайлы извлечены", "assets", assets.Len())

		conversations, validFragments, err = uc.merger.MergeEntries(ctx, entries, assets, &diags)
		if err != nil {
			return nil, err
		}

	case SourceJSON:
		return uc.IngestDocuments(ctx, [][]byte{data})

	default:
		return nil, fmt.Errorf("%w: unknown source kind %q", domain.ErrUnsupportedInput, kind)
	}

	// Пустой архив отличаем от архива, в котором не нашлось ничего пригодного
	if len(conversations) == 0 && validFragments == 0 {
		return nil, domain.ErrEmptyResult
	}

	result := &domain.IngestResult{
		Conversations: conversations,
		Diagnostics:   diags.Items(),
	}

	ttl := uc.cfg.CacheTTL()
	uc.cacheStore.Put(hash, result, ttl)

	slog.Info("Инжест завершен",
		"conversations", len(conversations),
		"valid_fragments", validFragments,
		"diagnostics", diags.Len(),
		"hash", hash,
	)
	return result, nil
}

// IngestDocuments обрабатывает один или несколько заранее извлеченных
// JSON-документов, каждый из которых содержит массив переписок. Фрагменты
// всех документов сливаются в один результат.
func (uc *IngestUseCase) IngestDocuments(ctx context.Context, docs [][]byte) (*domain.IngestResult, error) {
	hash := cache.CalculateHash(bytes.Join(docs, []byte{0}))
	if cached, found := uc.cacheStore.Get(hash); found {
		slog.Info("Попадание в кеш для загрузки", "hash", hash)
		return cached.Data, nil
	}

	var fragments []domain.Fragment
	for i, doc := range docs {
		parsed, err := uc.parser.ParseSet(doc)
		if err != nil {
			return nil, fmt.Errorf("%w: документ %d: %v", domain.ErrUnsupportedInput, i+1, err)
		}
		fragments = append(fragments, parsed...)
	}

	var diags domain.Diagnostics
	conversations, validFragments, err := uc.merger.MergeFragments(ctx, fragments, &diags)
	if err != nil {
		return nil, err
	}

	if len(conversations) == 0 && validFragments == 0 {
		return nil, domain.ErrEmptyResult
	}

	result := &domain.IngestResult{
		Conversations: conversations,
		Diagnostics:   diags.Items(),
	}
	uc.cacheStore.Put(hash, result, uc.cfg.CacheTTL())

	slog.Info("Инжест завершен",
		"conversations", len(conversations),
		"valid_fragments", validFragments,
		"diagnostics", diags.Len(),
		"documents", len(docs),
	)
	return result, nil
}
