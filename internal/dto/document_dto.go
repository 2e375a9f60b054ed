package dto

import (
	"time"

	"github.com/google/uuid"
)

type UploadDocumentRequest struct {
	ConversationId uuid.UUID `json:"conversation_id" validate:"required"`
	Filename       string    `json:"filename" validate:"required"`
	MimeType       string    `json:"mime_type"`
	Content        string    `json:"content" validate:"required"`
}

type DocumentResponse struct {
	Id             uuid.UUID `json:"id"`
	ConversationId uuid.UUID `json:"conversation_id"`
	Filename       string    `json:"filename"`
	MimeType       string    `json:"mime_type"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

type SearchDocumentsRequest struct {
	ConversationId uuid.UUID `json:"conversation_id" validate:"required"`
	Query          string    `json:"query" validate:"required"`
}

// PublishEmbedDocumentMessage is the payload queued for the embedding
// worker after a document upload.
type PublishEmbedDocumentMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
}

type SearchResultResponse struct {
	DocumentId uuid.UUID `json:"document_id"`
	ChunkIndex int       `json:"chunk_index"`
	Content    string    `json:"content"`
	Similarity float64   `json:"similarity"`
}
