package history

import (
	"context"

	"ai-chat-be/internal/constant"
	"ai-chat-be/internal/repository/unitofwork"
	"ai-chat-be/pkg/llm"

	"github.com/google/uuid"
)

// Loader assembles model context from the conversation's active path.
type Loader struct {
	uowFactory unitofwork.RepositoryFactory
}

// NewLoader creates a new history loader
func NewLoader(uowFactory unitofwork.RepositoryFactory) *Loader {
	return &Loader{
		uowFactory: uowFactory,
	}
}

// LoadActivePath loads the active messages of a conversation in
// chronological order, capped at the most recent window. Messages whose
// ids appear in exclude are dropped, which regeneration uses to keep the
// reply being replaced out of its own context.
func (l *Loader) LoadActivePath(ctx context.Context, conversationId uuid.UUID, exclude ...uuid.UUID) ([]llm.Message, error) {
	uow := l.uowFactory.NewUnitOfWork(ctx)

	messages, err := uow.MessageRepository().FindActivePath(ctx, conversationId, constant.HistoryLimit)
	if err != nil {
		return nil, err
	}

	excluded := make(map[uuid.UUID]bool, len(exclude))
	for _, id := range exclude {
		excluded[id] = true
	}

	result := make([]llm.Message, 0, len(messages))
	for _, m := range messages {
		if excluded[m.Id] {
			continue
		}
		role := constant.ChatMessageRoleUser
		if m.Role == constant.ChatMessageRoleAssistant {
			role = "assistant"
		}
		result = append(result, llm.Message{
			Role:    role,
			Content: m.Content,
		})
	}

	return result, nil
}
