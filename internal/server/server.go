package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"instagram-archive-viewer/internal/domain"
	"instagram-archive-viewer/internal/pkg/config"
	"instagram-archive-viewer/internal/server/usecase"
)

// ArchiveIngestor определяет интерфейс для варианта использования, который обрабатывает архивы.
type ArchiveIngestor interface {
	Ingest(ctx context.Context, data []byte, kind usecase.SourceKind) (*domain.IngestResult, error)
	IngestDocuments(ctx context.Context, docs [][]byte) (*domain.IngestResult, error)
}

// Server представляет HTTP-сервер
type Server struct {
	HTTPServer *http.Server
	cfg        *config.Config
	taskStore  *TaskStore
	ingestor   ArchiveIngestor
}

// New создает новый экземпляр Server
func New(cfg *config.Config, ingestor ArchiveIngestor, taskStore *TaskStore) (*Server, error) {
	s := &Server{
		cfg:       cfg,
		taskStore: taskStore,
		ingestor:  ingestor,
	}

	chiRouter := chi.NewRouter()

	// Промежуточное ПО
	chiRouter.Use(middleware.Logger)
	chiRouter.Use(middleware.Recoverer)

	// Конечная точка для проверки работоспособности
	chiRouter.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "ok",
		})
	})

	// Маршруты API
	chiRouter.Route("/api/v1", func(r chi.Router) {
		// Синхронная загрузка: архив обрабатывается в рамках запроса
		r.Post("/upload", s.handleUpload)

		// Асинхронная загрузка: обработка уходит в фоновую задачу
		r.Post("/ingest", s.handleIngestAsync)

		// Конечная точка для проверки статуса задачи
		r.Get("/tasks/{taskID}", s.handleTaskStatus)

		// Конечная точка для получения результата задачи с пагинацией
		r.Get("/tasks/{taskID}/result", s.handleTaskResult)
	})

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      chiRouter,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	s.HTTPServer = httpServer

	return s, nil
}

// handleUpload обрабатывает архив синхронно и возвращает готовый список переписок.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes())

	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes()); err != nil {
		writeError(w, http.StatusBadRequest, "No file(s) uploaded")
		return
	}

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "No file(s) uploaded")
		return
	}

	var result *domain.IngestResult
	var err error

	switch {
	case len(files) == 1 && hasExt(files[0].Filename, ".zip"):
		var data []byte
		data, err = readUploaded(files[0])
		if err == nil {
			result, err = s.ingestor.Ingest(r.Context(), data, usecase.SourceZip)
		}

	case allHaveExt(files, ".json"):
		docs := make([][]byte, 0, len(files))
		for _, fh := range files {
			var data []byte
			data, err = readUploaded(fh)
			if err != nil {
				break
			}
			docs = append(docs, data)
		}
		if err == nil {
			result, err = s.ingestor.IngestDocuments(r.Context(), docs)
		}

	default:
		writeError(w, http.StatusBadRequest, "Please upload a valid ZIP file")
		return
	}

	if err != nil {
		s.writeIngestError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":       true,
		"conversations": result.Conversations,
		"diagnostics":   result.Diagnostics,
	})
}

// handleIngestAsync создает фоновую задачу обработки и сразу возвращает ее ID.
func (s *Server) handleIngestAsync(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes())

	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes()); err != nil {
		writeError(w, http.StatusBadRequest, "No file(s) uploaded")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file(s) uploaded")
		return
	}
	defer file.Close()

	kind := usecase.SourceZip
	if hasExt(header.Filename, ".json") {
		kind = usecase.SourceJSON
	} else if !hasExt(header.Filename, ".zip") {
		writeError(w, http.StatusBadRequest, "Please upload a valid ZIP file")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	// Генерация уникального идентификатора задачи
	taskID := uuid.NewString()
	s.taskStore.CreateTask(taskID, 24*time.Hour)

	// Запуск обработки в горутине
	go func() {
		s.taskStore.UpdateTaskStatus(taskID, TaskStatusProcessing)

		taskCtx := context.Background()
		if timeout := s.cfg.TaskTimeout(); timeout > 0 {
			var cancel context.CancelFunc
			taskCtx, cancel = context.WithTimeout(taskCtx, timeout)
			defer cancel()
		}

		result, err := s.ingestor.Ingest(taskCtx, data, kind)
		if err != nil {
			s.taskStore.UpdateTaskError(taskID, err.Error())
			return
		}
		s.taskStore.UpdateTaskResult(taskID, result)
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"task_id": taskID})
}

func (s *Server) handleTaskStatus(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")

	task, err := s.taskStore.GetTask(taskID)
	if err != nil {
		http.Error(w, "Задача не найдена", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"task_id":       task.ID,
		"status":        task.Status,
		"error_message": task.ErrorMessage,
	})
}

func (s *Server) handleTaskResult(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")

	task, err := s.taskStore.GetTask(taskID)
	if err != nil {
		http.Error(w, "Задача не найдена", http.StatusNotFound)
		return
	}

	if task.Status != TaskStatusCompleted {
		http.Error(w, "Задача не завершена", http.StatusBadRequest)
		return
	}

	page := parsePositiveInt(r.URL.Query().Get("page"), 1)
	pageSize := parsePositiveInt(r.URL.Query().Get("page_size"), 50)

	conversations := task.Result.Conversations
	totalItems := len(conversations)
	totalPages := (totalItems + pageSize - 1) / pageSize

	startIndex := (page - 1) * pageSize
	endIndex := startIndex + pageSize
	if startIndex >= totalItems {
		startIndex = totalItems
		endIndex = totalItems
	}
	if endIndex > totalItems {
		endIndex = totalItems
	}

	response := struct {
		Pagination struct {
			CurrentPage int `json:"current_page"`
			PageSize    int `json:"page_size"`
			TotalItems  int `json:"total_items"`
			TotalPages  int `json:"total_pages"`
		} `json:"pagination"`
		Data        []domain.Conversation `json:"data"`
		Diagnostics []domain.Diagnostic   `json:"diagnostics,omitempty"`
	}{
		Data:        conversations[startIndex:endIndex],
		Diagnostics: task.Result.Diagnostics,
	}
	response.Pagination.CurrentPage = page
	response.Pagination.PageSize = pageSize
	response.Pagination.TotalItems = totalItems
	response.Pagination.TotalPages = totalPages

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// writeIngestError преобразует типизированную ошибку инжеста в HTTP-ответ.
func (s *Server) writeIngestError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnsupportedInput), errors.Is(err, domain.ErrInvalidArchiveFormat):
		writeError(w, http.StatusBadRequest, "Please upload a valid ZIP file")
	case errors.Is(err, domain.ErrEmptyResult):
		writeError(w, http.StatusBadRequest, "No conversations found in the uploaded file(s)")
	default:
		slog.Error("Необработанная ошибка инжеста", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func readUploaded(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func hasExt(name, ext string) bool {
	return strings.EqualFold(filepath.Ext(name), ext)
}

func allHaveExt(files []*multipart.FileHeader, ext string) bool {
	for _, fh := range files {
		if !hasExt(fh.Filename, ext) {
			return false
		}
	}
	return true
}

func parsePositiveInt(raw string, def int) int {
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return def
	}
	return v
}

// ListenAndServe запускает HTTP-сервер
func (s *Server) ListenAndServe() error {
	return s.HTTPServer.ListenAndServe()
}

// Shutdown корректно завершает работу HTTP-сервера
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("Завершение работы HTTP-сервера")
	return s.HTTPServer.Shutdown(ctx)
}
