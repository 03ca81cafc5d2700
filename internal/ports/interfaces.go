package ports

import (
	"context"

	"instagram-archive-viewer/internal/domain"
)

// Entry представляет одну запись архива в порядке перечисления.
type Entry interface {
	// PathSegments возвращает сегменты пути записи внутри архива.
	PathSegments() []string
	// IsDirectory сообщает, является ли запись каталогом.
	IsDirectory() bool
	// Read возвращает сырые байты записи.
	Read() ([]byte, error)
}

// ArchiveReader определяет интерфейс для перечисления записей контейнера.
type ArchiveReader interface {
	// Enumerate разбирает контейнер и возвращает его записи
	// в родном для архива порядке (без сортировки).
	Enumerate(data []byte) ([]Entry, error)
}

// FragmentParser определяет интерфейс для разбора файлов message_*.json.
type FragmentParser interface {
	// Parse преобразует сырые байты одного фрагмента в структурированную модель.
	Parse(data []byte) (*domain.Fragment, error)
	// ParseSet разбирает документ с массивом фрагментов-переписок.
	ParseSet(data []byte) ([]domain.Fragment, error)
}

// MediaResolver определяет интерфейс для предварительного извлечения
// медиафайлов архива в карту ресурсов и разрешения ссылок на них.
type MediaResolver interface {
	// Scan извлекает все медиазаписи архива в карту ресурсов,
	// ключом служит голое имя файла.
	Scan(ctx context.Context, entries []Entry, diags *domain.Diagnostics) (*domain.AssetMap, error)
	// Resolve заменяет относительный путь ссылки на inline data URI,
	// если файл найден в карте; иначе ссылка возвращается без изменений.
	Resolve(ref domain.MediaRef, assets *domain.AssetMap, diags *domain.Diagnostics) domain.MediaRef
}

// ConversationMerger определяет интерфейс центральной машины слияния:
// фрагменты превращаются в канонические переписки с учетом пределов.
type ConversationMerger interface {
	// MergeEntries обрабатывает записи-фрагменты архива в порядке перечисления.
	// Возвращает переписки и количество успешно разобранных фрагментов.
	MergeEntries(ctx context.Context, entries []Entry, assets *domain.AssetMap, diags *domain.Diagnostics) ([]domain.Conversation, int, error)
	// MergeFragments обрабатывает заранее разобранные документы
	// (вход вида JsonFragmentSet), без разрешения медиа.
	MergeFragments(ctx context.Context, fragments []domain.Fragment, diags *domain.Diagnostics) ([]domain.Conversation, int, error)
}

// Exporter определяет интерфейс для вывода результата инжеста.
type Exporter interface {
	// Export принимает финальный список переписок и выводит их.
	Export(conversations []domain.Conversation) error
}
