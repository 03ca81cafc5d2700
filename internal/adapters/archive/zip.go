package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"

	"instagram-archive-viewer/internal/domain"
	"instagram-archive-viewer/internal/ports"
)

// zipSignature — сигнатура локального заголовка ZIP ("PK\x03\x04").
var zipSignature = []byte{0x50, 0x4b, 0x03, 0x04}

// HasZipSignature сообщает, начинаются ли байты с сигнатуры ZIP-контейнера.
func HasZipSignature(data []byte) bool {
	return bytes.HasPrefix(data, zipSignature)
}

// zipEntry реализует ports.Entry поверх одной записи ZIP-архива.
type zipEntry struct {
	file     *zip.File
	segments []string
}

// PathSegments возвращает сегменты пути записи внутри архива.
func (e *zipEntry) PathSegments() []string {
	return e.segments
}

// IsDirectory сообщает, является ли запись каталогом.
func (e *zipEntry) IsDirectory() bool {
	return e.file.FileInfo().IsDir()
}

// Read извлекает сырые байты записи.
func (e *zipEntry) Read() ([]byte, error) {
	rc, err := e.file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open zip entry %s: %w", e.file.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read zip entry %s: %w", e.file.Name, err)
	}
	return data, nil
}

// ZipReader реализует интерфейс ArchiveReader для ZIP-контейнеров.
type ZipReader struct{}

// NewZipReader создает новый экземпляр ZipReader.
func NewZipReader() ports.ArchiveReader {
	return &ZipReader{}
}

// Enumerate разбирает ZIP-контейнер и возвращает его записи в родном
// порядке архива. Порядок значим: слияние переписок зависит от него.
func (r *ZipReader) Enumerate(data []byte) ([]ports.Entry, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArchiveFormat, err)
	}

	entries := make([]ports.Entry, 0, len(zr.File))
	for _, f := range zr.File {
		name := strings.TrimSuffix(f.Name, "/")
		if name == "" {
			continue
		}
		entries = append(entries, &zipEntry{
			file:     f,
			segments: strings.Split(name, "/"),
		})
	}

	return entries, nil
}
