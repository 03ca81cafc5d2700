package config

// Default values for configuration.
const (
	// Server defaults
	DefaultServerHost             = "0.0.0.0"
	DefaultServerPort             = 8080
	DefaultShutdownTimeoutSeconds = 15

	// Processing defaults
	DefaultMaxConversations           = 100
	DefaultMaxMessagesPerConversation = 100
	DefaultMaxUploadSizeMB            = 50
	DefaultTaskTimeoutSeconds         = 600
	DefaultCacheTTLMinutes            = 60

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)
