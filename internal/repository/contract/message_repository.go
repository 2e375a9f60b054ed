package contract

import (
	"context"

	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/repository/specification"

	"github.com/google/uuid"
)

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	Update(ctx context.Context, message *entity.Message) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByConversationId(ctx context.Context, conversationId uuid.UUID) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.Message, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Message, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// FindByVersionGroup returns all versions in a group ordered by
	// version_number ascending.
	FindByVersionGroup(ctx context.Context, groupId uuid.UUID) ([]*entity.Message, error)
	// FindByVersionGroupLocked does the same under SELECT ... FOR UPDATE,
	// serializing concurrent version inserts on the same group.
	FindByVersionGroupLocked(ctx context.Context, groupId uuid.UUID) ([]*entity.Message, error)
	// FindByConversation returns every message in a conversation, active
	// or not, ordered by created_at ascending.
	FindByConversation(ctx context.Context, conversationId uuid.UUID) ([]*entity.Message, error)
	// FindActiveLeaf returns the most recently created active message in
	// the conversation, or nil when the conversation is empty.
	FindActiveLeaf(ctx context.Context, conversationId uuid.UUID) (*entity.Message, error)
	// FindActivePath returns the last limit active messages in
	// chronological order.
	FindActivePath(ctx context.Context, conversationId uuid.UUID, limit int) ([]*entity.Message, error)
	// BulkSetActive flips is_active on the given rows in one statement.
	BulkSetActive(ctx context.Context, ids []uuid.UUID, active bool) error
}
