package branching

import (
	"context"

	"ai-chat-be/internal/entity"

	"github.com/google/uuid"
)

// Store is the persistence surface the engine mutates. The GORM message
// repository satisfies it; tests use an in-memory fake. All calls within
// one engine operation are expected to run inside the caller's
// transaction.
type Store interface {
	Create(ctx context.Context, message *entity.Message) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.Message, error)
	// FindByVersionGroup returns group members ordered by version number
	// ascending.
	FindByVersionGroup(ctx context.Context, groupId uuid.UUID) ([]*entity.Message, error)
	// FindByVersionGroupLocked is FindByVersionGroup under a row lock, so
	// two concurrent inserts into the same group serialize instead of
	// both computing the same next version number.
	FindByVersionGroupLocked(ctx context.Context, groupId uuid.UUID) ([]*entity.Message, error)
	FindByConversation(ctx context.Context, conversationId uuid.UUID) ([]*entity.Message, error)
	BulkSetActive(ctx context.Context, ids []uuid.UUID, active bool) error
}
