package entity

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	Id             uuid.UUID
	UserId         uuid.UUID
	ConversationId uuid.UUID
	Filename       string
	MimeType       string
	Content        string
	Status         string
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}

type DocumentChunk struct {
	Id         uuid.UUID
	DocumentId uuid.UUID
	ChunkIndex int
	Content    string
	CreatedAt  time.Time
}

// ChunkEmbedding stores the vector for one document chunk. Similarity is only
// populated by similarity searches, never persisted.
type ChunkEmbedding struct {
	Id         uuid.UUID
	ChunkId    uuid.UUID
	Embedding  []float32
	Dimension  int
	CreatedAt  time.Time
	Similarity float32

	Chunk *DocumentChunk
}
