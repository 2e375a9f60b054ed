package branching

import (
	"bytes"
	"context"

	"ai-chat-be/internal/entity"

	"github.com/google/uuid"
)

// tree is an in-memory index over every message of one conversation,
// keyed by id and by parent. Loaded once per engine operation so subtree
// walks never issue per-row queries.
type tree struct {
	byId     map[uuid.UUID]*entity.Message
	children map[uuid.UUID][]*entity.Message
}

func loadTree(ctx context.Context, store Store, conversationId uuid.UUID) (*tree, error) {
	messages, err := store.FindByConversation(ctx, conversationId)
	if err != nil {
		return nil, err
	}
	t := &tree{
		byId:     make(map[uuid.UUID]*entity.Message, len(messages)),
		children: make(map[uuid.UUID][]*entity.Message),
	}
	for _, m := range messages {
		t.byId[m.Id] = m
		if m.ParentId != nil {
			t.children[*m.ParentId] = append(t.children[*m.ParentId], m)
		}
	}
	return t, nil
}

// subtree returns every message reachable from roots through parent
// links, roots included. Iterative with a visited set, so malformed data
// with a cycle cannot hang the walk.
func (t *tree) subtree(roots ...uuid.UUID) []*entity.Message {
	visited := make(map[uuid.UUID]bool, len(roots))
	queue := make([]uuid.UUID, 0, len(roots))
	for _, id := range roots {
		if _, ok := t.byId[id]; ok && !visited[id] {
			visited[id] = true
			queue = append(queue, id)
		}
	}

	var result []*entity.Message
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		result = append(result, t.byId[id])
		for _, child := range t.children[id] {
			if !visited[child.Id] {
				visited[child.Id] = true
				queue = append(queue, child.Id)
			}
		}
	}
	return result
}

// newestChild picks the child to reactivate when walking forward from a
// switch target: latest createdAt wins, then highest versionNumber, then
// highest id.
func (t *tree) newestChild(parentId uuid.UUID) *entity.Message {
	var best *entity.Message
	for _, child := range t.children[parentId] {
		if best == nil || moreRecent(child, best) {
			best = child
		}
	}
	return best
}

func moreRecent(a, b *entity.Message) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	if a.VersionNumber != b.VersionNumber {
		return a.VersionNumber > b.VersionNumber
	}
	return bytes.Compare(a.Id[:], b.Id[:]) > 0
}
