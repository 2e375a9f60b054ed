package branching

import (
	"context"

	"ai-chat-be/internal/apperror"
	"ai-chat-be/internal/entity"

	"github.com/google/uuid"
)

// NextVersionNumber returns max(versionNumber)+1 for a group, or 1 when
// the group has no members yet.
func (e *Engine) NextVersionNumber(ctx context.Context, groupId uuid.UUID) (int, error) {
	group, err := e.store.FindByVersionGroup(ctx, groupId)
	if err != nil {
		return 0, err
	}
	next := 1
	for _, m := range group {
		if m.VersionNumber >= next {
			next = m.VersionNumber + 1
		}
	}
	return next, nil
}

// GroupVersions returns every version of the slot a message belongs to,
// ordered by version number ascending.
func (e *Engine) GroupVersions(ctx context.Context, messageId uuid.UUID) ([]*entity.Message, error) {
	message, err := e.store.FindById(ctx, messageId)
	if err != nil {
		return nil, err
	}
	if message == nil {
		return nil, apperror.NewNotFound("message", messageId)
	}
	return e.store.FindByVersionGroup(ctx, message.VersionGroupId)
}
