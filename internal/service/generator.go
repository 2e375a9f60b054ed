package service

import (
	"context"

	"ai-chat-be/internal/repository/unitofwork"
	"ai-chat-be/pkg/llm"
	"ai-chat-be/pkg/rag/history"
	"ai-chat-be/pkg/rag/prompt"
	"ai-chat-be/pkg/rag/search"

	"github.com/google/uuid"
)

// ResponseGenerator produces the assistant reply for a user turn. The
// chat service treats it as opaque so tests can substitute a fake.
type ResponseGenerator interface {
	Generate(ctx context.Context, conversationId uuid.UUID, query string, exclude ...uuid.UUID) (string, []prompt.Citation, error)
}

// ragGenerator assembles context from the active path and retrieved
// document chunks, then calls the model.
type ragGenerator struct {
	uowFactory    unitofwork.RepositoryFactory
	historyLoader *history.Loader
	searcher      *search.Orchestrator
	promptBuilder *prompt.Builder
	llmProvider   llm.LLMProvider
}

func NewRagGenerator(
	uowFactory unitofwork.RepositoryFactory,
	historyLoader *history.Loader,
	searcher *search.Orchestrator,
	llmProvider llm.LLMProvider,
) ResponseGenerator {
	return &ragGenerator{
		uowFactory:    uowFactory,
		historyLoader: historyLoader,
		searcher:      searcher,
		promptBuilder: prompt.NewBuilder(),
		llmProvider:   llmProvider,
	}
}

func (g *ragGenerator) Generate(ctx context.Context, conversationId uuid.UUID, query string, exclude ...uuid.UUID) (string, []prompt.Citation, error) {
	messages, err := g.historyLoader.LoadActivePath(ctx, conversationId, exclude...)
	if err != nil {
		return "", nil, err
	}

	// History ends with the user turn being answered; the prompt builder
	// re-appends it with retrieval context, so drop it here.
	if n := len(messages); n > 0 && messages[n-1].Role == "user" && messages[n-1].Content == query {
		messages = messages[:n-1]
	}

	uow := g.uowFactory.NewUnitOfWork(ctx)
	results, err := g.searcher.Execute(ctx, uow, conversationId, query, search.DefaultConfig())
	if err != nil {
		// Retrieval failure degrades to a plain chat turn.
		results = nil
	}

	contextBlock, citations := g.promptBuilder.BuildContextBlock(results)
	final := g.promptBuilder.BuildMessages(contextBlock, messages, query)

	answer, err := g.llmProvider.Chat(ctx, final)
	if err != nil {
		return "", nil, err
	}

	return answer, citations, nil
}
