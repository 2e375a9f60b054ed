package prompt

import (
	"fmt"
	"strings"

	"ai-chat-be/internal/constant"
	"ai-chat-be/pkg/llm"
	"ai-chat-be/pkg/rag/search"

	"github.com/google/uuid"
)

// Citation records which chunk backed which numbered context entry.
type Citation struct {
	Index      int       `json:"index"`
	DocumentId uuid.UUID `json:"documentId"`
	ChunkIndex int       `json:"chunkIndex"`
	Content    string    `json:"content"`
	Similarity float64   `json:"similarity"`
}

// Builder turns retrieved chunks and history into the message list sent
// to the model.
type Builder struct{}

func NewBuilder() *Builder {
	return &Builder{}
}

// BuildContextBlock renders retrieved chunks as a numbered context
// preamble, returning the block and the matching citations. Empty
// results produce an empty block.
func (b *Builder) BuildContextBlock(results []search.Result) (string, []Citation) {
	if len(results) == 0 {
		return "", nil
	}

	var block strings.Builder
	block.WriteString("Relevant information from your documents:\n")

	citations := make([]Citation, 0, len(results))
	for i, r := range results {
		block.WriteString(fmt.Sprintf("[%d] %s\n", i+1, r.Content))
		citations = append(citations, Citation{
			Index:      i + 1,
			DocumentId: r.DocumentId,
			ChunkIndex: r.ChunkIndex,
			Content:    truncate(r.Content, constant.CitationContentMaxLength),
			Similarity: r.Similarity,
		})
	}

	return block.String(), citations
}

// BuildMessages prepends the context block to the user's latest turn so
// the model sees retrieval output next to the question it serves.
func (b *Builder) BuildMessages(contextBlock string, history []llm.Message, query string) []llm.Message {
	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, history...)

	content := query
	if contextBlock != "" {
		content = contextBlock + "\n" + query
	}
	messages = append(messages, llm.Message{
		Role:    "user",
		Content: content,
	})

	return messages
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
