package search

import (
	"context"
	"fmt"

	"ai-chat-be/internal/repository/unitofwork"
	"ai-chat-be/pkg/embedding"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Result is one retrieved chunk with its provenance and score.
type Result struct {
	DocumentId uuid.UUID
	ChunkId    uuid.UUID
	ChunkIndex int
	Content    string
	Similarity float64
}

// Orchestrator embeds the query and runs vector search over a
// conversation's document chunks.
type Orchestrator struct {
	embeddingProvider embedding.EmbeddingProvider
	logger            *zap.Logger
}

// NewOrchestrator creates a new search orchestrator
func NewOrchestrator(embeddingProvider embedding.EmbeddingProvider, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		embeddingProvider: embeddingProvider,
		logger:            logger,
	}
}

// Config encapsulates search parameters
type Config struct {
	Threshold float64
	TopK      int
}

// DefaultConfig returns default search configuration
func DefaultConfig() Config {
	return Config{
		Threshold: 0.3,
		TopK:      5,
	}
}

// Execute runs vector search and returns scored chunks above the threshold.
func (o *Orchestrator) Execute(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	conversationId uuid.UUID,
	query string,
	config Config,
) ([]Result, error) {
	embeddingRes, err := o.embeddingProvider.Generate(query, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}

	scored, err := uow.ChunkEmbeddingRepository().SearchSimilarWithScore(
		ctx,
		embeddingRes.Embedding.Values,
		config.TopK,
		conversationId,
		config.Threshold,
	)
	if err != nil {
		o.logger.Error("vector search failed", zap.Error(err))
		return nil, err
	}

	o.logger.Debug("vector search results",
		zap.String("conversation_id", conversationId.String()),
		zap.Int("count", len(scored)),
	)

	results := make([]Result, 0, len(scored))
	for _, s := range scored {
		r := Result{
			ChunkId:    s.Embedding.ChunkId,
			Similarity: s.Similarity,
		}
		if s.Embedding.Chunk != nil {
			r.DocumentId = s.Embedding.Chunk.DocumentId
			r.ChunkIndex = s.Embedding.Chunk.ChunkIndex
			r.Content = s.Embedding.Chunk.Content
		}
		results = append(results, r)
	}

	return results, nil
}
