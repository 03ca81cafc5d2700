package domain

// IngestResult — итог одного вызова инжеста: финализированные переписки
// и журнал нефатальных проблем, накопленный по пути.
type IngestResult struct {
	Conversations []Conversation `json:"conversations"`
	Diagnostics   []Diagnostic   `json:"diagnostics,omitempty"`
}
