package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type Document struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId         uuid.UUID      `gorm:"type:uuid;not null;index"`
	ConversationId uuid.UUID      `gorm:"type:uuid;not null;index"` // Documents are conversation-scoped
	Filename       string         `gorm:"type:varchar(255);not null"`
	MimeType       string         `gorm:"type:varchar(100);not null"`
	Content        string         `gorm:"type:text;not null"`
	Status         string         `gorm:"type:varchar(20);not null;default:'processing'"` // processing, ready, failed
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

func (Document) TableName() string {
	return "documents"
}

type DocumentChunk struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId uuid.UUID `gorm:"type:uuid;not null;index"`
	ChunkIndex int       `gorm:"not null"`
	Content    string    `gorm:"type:text;not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (DocumentChunk) TableName() string {
	return "document_chunks"
}

type ChunkEmbedding struct {
	Id        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChunkId   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Embedding pgvector.Vector `gorm:"type:vector(768);column:embedding_value"`
	Dimension int             `gorm:"not null"`
	CreatedAt time.Time       `gorm:"autoCreateTime"`

	Chunk *DocumentChunk `gorm:"foreignKey:ChunkId"`
}

func (ChunkEmbedding) TableName() string {
	return "chunk_embeddings"
}
