// Package config предоставляет управление конфигурацией приложения
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Server содержит конфигурацию HTTP-сервера
type Server struct {
	Host                   string `json:"host" yaml:"host"`
	Port                   int    `json:"port" yaml:"port"`
	ShutdownTimeoutSeconds int    `json:"shutdown_timeout_seconds" yaml:"shutdown_timeout_seconds"`
}

// Processing содержит конфигурацию конвейера инжеста
type Processing struct {
	// MaxConversations — максимум переписок в одном результате инжеста.
	MaxConversations int `json:"max_conversations" yaml:"max_conversations"`
	// MaxMessagesPerConversation — максимум сообщений в одной переписке.
	MaxMessagesPerConversation int `json:"max_messages_per_conversation" yaml:"max_messages_per_conversation"`
	// MaxUploadSizeMB — предел размера загружаемого архива.
	MaxUploadSizeMB    int `json:"max_upload_size_mb" yaml:"max_upload_size_mb"`
	TaskTimeoutSeconds int `json:"task_timeout_seconds" yaml:"task_timeout_seconds"` // 0 - без ограничений
	CacheTTLMinutes    int `json:"cache_ttl_minutes" yaml:"cache_ttl_minutes"`
}

// Logging содержит конфигурацию логирования
type Logging struct {
	Level  string `json:"level" yaml:"level"`   // debug, info, warn, error
	Format string `json:"format" yaml:"format"` // text, json, pretty
}

// Config содержит конфигурацию приложения
type Config struct {
	Server     Server     `json:"server" yaml:"server"`
	Processing Processing `json:"processing" yaml:"processing"`
	Logging    Logging    `json:"logging" yaml:"logging"`
}

// Defaults возвращает конфигурацию со значениями по умолчанию.
func Defaults() *Config {
	return &Config{
		Server: Server{
			Host:                   DefaultServerHost,
			Port:                   DefaultServerPort,
			ShutdownTimeoutSeconds: DefaultShutdownTimeoutSeconds,
		},
		Processing: Processing{
			MaxConversations:           DefaultMaxConversations,
			MaxMessagesPerConversation: DefaultMaxMessagesPerConversation,
			MaxUploadSizeMB:            DefaultMaxUploadSizeMB,
			TaskTimeoutSeconds:         DefaultTaskTimeoutSeconds,
			CacheTTLMinutes:            DefaultCacheTTLMinutes,
		},
		Logging: Logging{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// LoadConfig загружает конфигурацию приложения из переменных окружения, .env файла или config.yml
func LoadConfig() (*Config, error) {
	// Загрузка переменных окружения из .env файла, если он существует
	if err := godotenv.Load(); err != nil {
		// Если .env файла не существует, это нормально, мы будем полагаться на переменные окружения или config.yml
	}

	// Попытка загрузки из config.yml сначала
	cfg, err := loadFromYAML("config.yml")
	if err != nil {
		// Если загрузка YAML не удалась, используем переменные окружения
		cfg, err = loadFromEnv()
		if err != nil {
			return nil, fmt.Errorf("не удалось загрузить конфигурацию из env: %w", err)
		}
	}

	return cfg, nil
}

// loadFromYAML загружает конфигурацию из YAML-файла поверх значений по умолчанию
func loadFromYAML(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать файл конфигурации %s: %w", filename, err)
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("не удалось разобрать YAML конфигурацию: %w", err)
	}

	return cfg, nil
}

// loadFromEnv загружает конфигурацию из переменных окружения
func loadFromEnv() (*Config, error) {
	cfg := Defaults()

	cfg.Server.Host = getEnv("SERVER_HOST", cfg.Server.Host)
	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv("LOG_FORMAT", cfg.Logging.Format)

	intVars := []struct {
		key    string
		target *int
	}{
		{"SERVER_PORT", &cfg.Server.Port},
		{"SHUTDOWN_TIMEOUT_SECONDS", &cfg.Server.ShutdownTimeoutSeconds},
		{"MAX_CONVERSATIONS", &cfg.Processing.MaxConversations},
		{"MAX_MESSAGES_PER_CONVERSATION", &cfg.Processing.MaxMessagesPerConversation},
		{"MAX_UPLOAD_SIZE_MB", &cfg.Processing.MaxUploadSizeMB},
		{"TASK_TIMEOUT_SECONDS", &cfg.Processing.TaskTimeoutSeconds},
		{"CACHE_TTL_MINUTES", &cfg.Processing.CacheTTLMinutes},
	}

	for _, v := range intVars {
		raw := os.Getenv(v.key)
		if raw == "" {
			continue
		}
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("недопустимое значение %s: %w", v.key, err)
		}
		*v.target = parsed
	}

	return cfg, nil
}

// Address возвращает адрес сервера в формате "host:port"
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// ShutdownTimeout возвращает таймаут корректного завершения сервера.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutSeconds) * time.Second
}

// TaskTimeout возвращает таймаут одной задачи инжеста (0 — без ограничений).
func (c *Config) TaskTimeout() time.Duration {
	return time.Duration(c.Processing.TaskTimeoutSeconds) * time.Second
}

// CacheTTL возвращает срок жизни кешированного результата.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Processing.CacheTTLMinutes) * time.Minute
}

// MaxUploadBytes возвращает предел размера загрузки в байтах.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Processing.MaxUploadSizeMB) << 20
}

// Validate проверяет, являются ли значения конфигурации допустимыми
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port должен быть действительным номером порта (1-65535)")
	}

	if c.Server.ShutdownTimeoutSeconds <= 0 {
		return fmt.Errorf("server.shutdown_timeout_seconds должно быть положительным")
	}

	if c.Processing.MaxConversations <= 0 {
		return fmt.Errorf("processing.max_conversations должно быть положительным")
	}

	if c.Processing.MaxMessagesPerConversation <= 0 {
		return fmt.Errorf("processing.max_messages_per_conversation должно быть положительным")
	}

	if c.Processing.MaxUploadSizeMB <= 0 {
		return fmt.Errorf("processing.max_upload_size_mb должно быть положительным")
	}

	if c.Processing.TaskTimeoutSeconds < 0 {
		return fmt.Errorf("processing.task_timeout_seconds должно быть неотрицательным (0 для отсутствия ограничений)")
	}

	if c.Processing.CacheTTLMinutes <= 0 {
		return fmt.Errorf("processing.cache_ttl_minutes должно быть положительным целым числом")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		// all good
	default:
		return fmt.Errorf("logging.level должен быть одним из: debug, info, warn, error")
	}

	switch c.Logging.Format {
	case "text", "json", "pretty":
		// all good
	default:
		return fmt.Errorf("logging.format должен быть одним из: text, json, pretty")
	}

	return nil
}

// getEnv извлекает значение переменной окружения или возвращает значение по умолчанию, если она не установлена
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
