package services

import (
	"context"
	"log/slog"
	"strings"

	"instagram-archive-viewer/internal/domain"
	"instagram-archive-viewer/internal/ports"
)

// MediaResolverImpl реализует интерфейс MediaResolver.
type MediaResolverImpl struct{}

// NewMediaResolver создает новый экземпляр MediaResolverImpl.
func NewMediaResolver() ports.MediaResolver {
	return &MediaResolverImpl{}
}

// Scan извлекает все медиазаписи архива в карту ресурсов. Нечитаемая
// запись фиксируется в журнале диагностики и пропускается — сканирование
// целиком из-за нее не прерывается.
func (r *MediaResolverImpl) Scan(ctx context.Context, entries []ports.Entry, diags *domain.Diagnostics) (*domain.AssetMap, error) {
	assets := domain.NewAssetMap()

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		class := domain.ClassifyPath(entry.PathSegments(), entry.IsDirectory())
		if class.Role != domain.RoleMedia {
			continue
		}

		payload, err := entry.Read()
		if err != nil {
			diags.Add(domain.DiagMediaReadError, entryName(entry), err.Error())
			continue
		}

		assets.Put(class.FileName, class.ThreadPath, domain.MediaAsset{
			Kind:     class.Media,
			MIMEType: mimeTypeFor(class.Media, class.FileName),
			Payload:  payload,
		})
		slog.Debug("Медиафайл извлечен", "entry", entryName(entry), "kind", class.Media, "size", len(payload))
	}

	return assets, nil
}

// Resolve заменяет относительный путь ссылки на data URI найденного файла.
// Ссылка без соответствия в карте возвращается как есть, с записью
// в журнале диагностики — отбрасывать ее нельзя.
func (r *MediaResolverImpl) Resolve(ref domain.MediaRef, assets *domain.AssetMap, diags *domain.Diagnostics) domain.MediaRef {
	fileName := baseName(ref.URI)

	asset, ok := assets.Get(fileName)
	if !ok {
		diags.Add(domain.DiagUnresolvedMediaReference, ref.URI, "no matching media entry in archive")
		return ref
	}

	asset.Resolved = true
	ref.URI = asset.Asset.DataURI()
	return ref
}

// mimeTypeFor определяет MIME-тип по типу вложения и расширению файла.
func mimeTypeFor(kind domain.MediaKind, fileName string) string {
	switch kind {
	case domain.MediaPhoto:
		if strings.HasSuffix(strings.ToLower(fileName), ".png") {
			return "image/png"
		}
		return "image/jpeg"
	case domain.MediaVideo:
		return "video/mp4"
	case domain.MediaAudio:
		return "audio/mpeg"
	}
	return "application/octet-stream"
}

// baseName возвращает последний сегмент пути ссылки.
func baseName(uri string) string {
	if idx := strings.LastIndex(uri, "/"); idx >= 0 {
		return uri[idx+1:]
	}
	return uri
}

// entryName возвращает полное имя записи архива для журнала диагностики.
func entryName(entry ports.Entry) string {
	return strings.Join(entry.PathSegments(), "/")
}
