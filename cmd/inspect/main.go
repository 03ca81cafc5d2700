package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"instagram-archive-viewer/internal/adapters/archive"
	"instagram-archive-viewer/internal/adapters/parser"
	"instagram-archive-viewer/internal/cache"
	"instagram-archive-viewer/internal/core/services"
	"instagram-archive-viewer/internal/domain"
	"instagram-archive-viewer/internal/pkg/config"
	"instagram-archive-viewer/internal/server/usecase"
)

var version = "dev"

func main() {
	setupLogger()

	rootCmd := &cobra.Command{
		Use:     "inspect",
		Short:   "Inspect Instagram DM archive exports without starting the server",
		Version: version,
	}

	rootCmd.AddCommand(summaryCmd())
	rootCmd.AddCommand(exportCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setupLogger настраивает вывод логов так, чтобы он не мешал выводу команд.
func setupLogger() {
	if term.IsTerminal(int(os.Stderr.Fd())) {
		slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelWarn,
			TimeFormat: time.TimeOnly,
		})))
		return
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))
}

// ingestArchive прогоняет локальный файл экспорта через тот же конвейер,
// что использует сервер.
func ingestArchive(path string, maxConversations, maxMessages int) (*domain.IngestResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать файл %s: %w", path, err)
	}

	kind := usecase.SourceZip
	if strings.EqualFold(filepath.Ext(path), ".json") {
		kind = usecase.SourceJSON
	}

	cfg := config.Defaults()
	if maxConversations > 0 {
		cfg.Processing.MaxConversations = maxConversations
	}
	if maxMessages > 0 {
		cfg.Processing.MaxMessagesPerConversation = maxMessages
	}

	fragmentParser := parser.NewFragmentParser()
	resolver := services.NewMediaResolver()
	merger := services.NewMerger(fragmentParser, resolver,
		cfg.Processing.MaxConversations,
		cfg.Processing.MaxMessagesPerConversation,
	)
	uc := usecase.NewIngestUseCase(cfg, archive.NewZipReader(), fragmentParser, resolver, merger, cache.NewCacheStore())

	return uc.Ingest(context.Background(), data, kind)
}
