package contract

import (
	"context"

	"ai-chat-be/internal/entity"

	"github.com/google/uuid"
)

// ScoredChunkEmbedding pairs an embedding with its cosine similarity to
// the query vector.
type ScoredChunkEmbedding struct {
	Embedding  *entity.ChunkEmbedding
	Similarity float64
}

type ChunkEmbeddingRepository interface {
	Create(ctx context.Context, embedding *entity.ChunkEmbedding) error
	CreateBulk(ctx context.Context, embeddings []*entity.ChunkEmbedding) error
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error

	// SearchSimilarWithScore returns the closest chunks for a
	// conversation's documents, filtered by a minimum similarity.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, conversationId uuid.UUID, threshold float64) ([]*ScoredChunkEmbedding, error)
}
