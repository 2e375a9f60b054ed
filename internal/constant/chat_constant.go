package constant

import "time"

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"

	// Sliding-window rate limits per user.
	EditMaxPerWindow       = 5
	RegenerateMaxPerWindow = 3
	RateLimitWindow        = time.Minute

	// HistoryLimit caps how many active-path messages are sent to the model.
	HistoryLimit = 50

	// Retrieval parameters for document search.
	SearchResultLimit        = 5
	SearchScoreThreshold     = 0.3
	CitationContentMaxLength = 200

	// Chunking parameters for the embedding pipeline.
	ChunkSize    = 1500
	ChunkOverlap = 200

	DocumentStatusProcessing = "processing"
	DocumentStatusReady      = "ready"
	DocumentStatusFailed     = "failed"
)
