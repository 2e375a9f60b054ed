package implementation

import (
	"context"

	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/mapper"
	"ai-chat-be/internal/model"
	"ai-chat-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type ChunkEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DocumentMapper
}

func NewChunkEmbeddingRepository(db *gorm.DB) contract.ChunkEmbeddingRepository {
	return &ChunkEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewDocumentMapper(),
	}
}

func (r *ChunkEmbeddingRepositoryImpl) Create(ctx context.Context, embedding *entity.ChunkEmbedding) error {
	m := r.mapper.EmbeddingToModel(embedding)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*embedding = *r.mapper.EmbeddingToEntity(m)
	return nil
}

func (r *ChunkEmbeddingRepositoryImpl) CreateBulk(ctx context.Context, embeddings []*entity.ChunkEmbedding) error {
	if len(embeddings) == 0 {
		return nil
	}
	models := make([]*model.ChunkEmbedding, len(embeddings))
	for i, e := range embeddings {
		models[i] = r.mapper.EmbeddingToModel(e)
	}
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*embeddings[i] = *r.mapper.EmbeddingToEntity(m)
	}
	return nil
}

func (r *ChunkEmbeddingRepositoryImpl) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	subQuery := r.db.Table("document_chunks").Select("id").Where("document_id = ?", documentId)
	return r.db.WithContext(ctx).Where("chunk_id IN (?)", subQuery).Delete(&model.ChunkEmbedding{}).Error
}

// SearchSimilarWithScore ranks chunks by cosine similarity. pgvector's
// <=> operator is cosine distance, so similarity is 1 - distance.
func (r *ChunkEmbeddingRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, conversationId uuid.UUID, threshold float64) ([]*contract.ScoredChunkEmbedding, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.ChunkEmbedding
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("chunk_embeddings").
		Select("chunk_embeddings.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Joins("JOIN document_chunks ON document_chunks.id = chunk_embeddings.chunk_id").
		Joins("JOIN documents ON documents.id = document_chunks.document_id").
		Where("documents.conversation_id = ?", conversationId).
		Where("documents.deleted_at IS NULL").
		Where("documents.status = ?", "ready").
		Where("1 - (embedding_value <=> ?) >= ?", queryVector, threshold).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredChunkEmbedding, len(results))
	for i, res := range results {
		e := r.mapper.EmbeddingToEntity(&res.ChunkEmbedding)
		scored[i] = &contract.ScoredChunkEmbedding{
			Embedding:  e,
			Similarity: res.Similarity,
		}
	}

	// Attach chunk rows for prompt building and citations.
	if len(scored) > 0 {
		chunkIds := make([]uuid.UUID, len(scored))
		for i, s := range scored {
			chunkIds[i] = s.Embedding.ChunkId
		}
		var chunks []*model.DocumentChunk
		if err := r.db.WithContext(ctx).Where("id IN ?", chunkIds).Find(&chunks).Error; err != nil {
			return nil, err
		}
		byId := make(map[uuid.UUID]*model.DocumentChunk, len(chunks))
		for _, c := range chunks {
			byId[c.Id] = c
		}
		for _, s := range scored {
			if c, ok := byId[s.Embedding.ChunkId]; ok {
				s.Embedding.Chunk = r.mapper.ChunkToEntity(c)
			}
		}
	}
	return scored, nil
}
