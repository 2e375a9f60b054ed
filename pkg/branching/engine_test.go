package branching

import (
	"context"
	"sort"
	"testing"
	"time"

	"ai-chat-be/internal/apperror"
	"ai-chat-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	messages map[uuid.UUID]*entity.Message
}

func newFakeStore() *fakeStore {
	return &fakeStore{messages: make(map[uuid.UUID]*entity.Message)}
}

func (f *fakeStore) Create(_ context.Context, message *entity.Message) error {
	clone := *message
	f.messages[message.Id] = &clone
	return nil
}

func (f *fakeStore) FindById(_ context.Context, id uuid.UUID) (*entity.Message, error) {
	m, ok := f.messages[id]
	if !ok {
		return nil, nil
	}
	clone := *m
	return &clone, nil
}

func (f *fakeStore) FindByVersionGroup(_ context.Context, groupId uuid.UUID) ([]*entity.Message, error) {
	var result []*entity.Message
	for _, m := range f.messages {
		if m.VersionGroupId == groupId {
			clone := *m
			result = append(result, &clone)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].VersionNumber < result[j].VersionNumber
	})
	return result, nil
}

func (f *fakeStore) FindByVersionGroupLocked(ctx context.Context, groupId uuid.UUID) ([]*entity.Message, error) {
	return f.FindByVersionGroup(ctx, groupId)
}

func (f *fakeStore) FindByConversation(_ context.Context, conversationId uuid.UUID) ([]*entity.Message, error) {
	var result []*entity.Message
	for _, m := range f.messages {
		if m.ConversationId == conversationId {
			clone := *m
			result = append(result, &clone)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (f *fakeStore) BulkSetActive(_ context.Context, ids []uuid.UUID, active bool) error {
	for _, id := range ids {
		if m, ok := f.messages[id]; ok {
			m.IsActive = active
		}
	}
	return nil
}

func (f *fakeStore) activeIds(conversationId uuid.UUID) map[uuid.UUID]bool {
	active := make(map[uuid.UUID]bool)
	for _, m := range f.messages {
		if m.ConversationId == conversationId && m.IsActive {
			active[m.Id] = true
		}
	}
	return active
}

type seedOpt func(*entity.Message)

func inGroup(groupId uuid.UUID, version int) seedOpt {
	return func(m *entity.Message) {
		m.VersionGroupId = groupId
		m.VersionNumber = version
	}
}

func inactive() seedOpt {
	return func(m *entity.Message) { m.IsActive = false }
}

func at(t time.Time) seedOpt {
	return func(m *entity.Message) { m.CreatedAt = t }
}

func seed(store *fakeStore, conversationId uuid.UUID, role, content string, parentId *uuid.UUID, opts ...seedOpt) *entity.Message {
	id := uuid.New()
	m := &entity.Message{
		Id:             id,
		ConversationId: conversationId,
		Role:           role,
		Content:        content,
		ParentId:       parentId,
		VersionGroupId: id,
		VersionNumber:  1,
		IsActive:       true,
		CreatedAt:      time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(m)
	}
	store.messages[m.Id] = m
	return m
}

func TestCreateVersionEdit(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(store)
	ctx := context.Background()
	convId := uuid.New()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	u1 := seed(store, convId, "user", "hello", nil, at(base))
	a1 := seed(store, convId, "assistant", "hi there", &u1.Id, at(base.Add(time.Second)))

	result, err := engine.CreateVersion(ctx, u1.Id, "  hello again  ", true)
	require.NoError(t, err)
	require.False(t, result.NoOp)

	u2 := result.Message
	assert.Equal(t, u1.VersionGroupId, u2.VersionGroupId)
	assert.Equal(t, 2, u2.VersionNumber)
	assert.Equal(t, "hello again", u2.Content)
	assert.True(t, u2.IsEdited)
	assert.True(t, u2.IsActive)
	assert.Equal(t, u1.ParentId, u2.ParentId)

	// Prior version and the reply built on it both go inactive.
	assert.ElementsMatch(t, []uuid.UUID{u1.Id, a1.Id}, result.Deactivated)
	assert.False(t, store.messages[u1.Id].IsActive)
	assert.False(t, store.messages[a1.Id].IsActive)

	active := store.activeIds(convId)
	assert.Equal(t, map[uuid.UUID]bool{u2.Id: true}, active)
}

func TestCreateVersionEditUnchangedContentIsNoOp(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(store)
	ctx := context.Background()
	convId := uuid.New()

	u1 := seed(store, convId, "user", "hello", nil)

	result, err := engine.CreateVersion(ctx, u1.Id, "  hello  ", true)
	require.NoError(t, err)
	assert.True(t, result.NoOp)
	assert.Equal(t, u1.Id, result.Message.Id)
	assert.Empty(t, result.Deactivated)
	assert.True(t, store.messages[u1.Id].IsActive)
	assert.Len(t, store.messages, 1)
}

func TestCreateVersionRegenerate(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(store)
	ctx := context.Background()
	convId := uuid.New()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	u1 := seed(store, convId, "user", "question", nil, at(base))
	a1 := seed(store, convId, "assistant", "first answer", &u1.Id, at(base.Add(time.Second)))

	result, err := engine.CreateVersion(ctx, a1.Id, "second answer", false)
	require.NoError(t, err)

	a2 := result.Message
	assert.Equal(t, a1.VersionGroupId, a2.VersionGroupId)
	assert.Equal(t, 2, a2.VersionNumber)
	assert.Equal(t, &u1.Id, a2.ParentId)
	assert.False(t, a2.IsEdited)
	assert.True(t, a2.IsActive)

	assert.ElementsMatch(t, []uuid.UUID{a1.Id}, result.Deactivated)
	assert.True(t, store.messages[u1.Id].IsActive)
	assert.False(t, store.messages[a1.Id].IsActive)
}

func TestCreateVersionRegenerateKeepsContentVerbatim(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(store)
	ctx := context.Background()
	convId := uuid.New()

	u1 := seed(store, convId, "user", "question", nil)
	a1 := seed(store, convId, "assistant", "answer", &u1.Id)

	// Identical content is not a no-op for regeneration, and whitespace
	// is preserved.
	result, err := engine.CreateVersion(ctx, a1.Id, "answer", false)
	require.NoError(t, err)
	assert.False(t, result.NoOp)
	assert.Equal(t, "answer", result.Message.Content)
	assert.Equal(t, 2, result.Message.VersionNumber)
}

func TestCreateVersionNotFound(t *testing.T) {
	engine := NewEngine(newFakeStore())

	_, err := engine.CreateVersion(context.Background(), uuid.New(), "x", true)
	var notFound *apperror.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestSwitchVersionPrevReactivatesNewestChildChain(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(store)
	ctx := context.Background()
	convId := uuid.New()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	u1 := seed(store, convId, "user", "v1", nil, at(base), inactive())
	u2 := seed(store, convId, "user", "v2", nil, at(base.Add(time.Minute)), inGroup(u1.VersionGroupId, 2), inactive())
	u3 := seed(store, convId, "user", "v3", nil, at(base.Add(2*time.Minute)), inGroup(u1.VersionGroupId, 3))

	// v2 had a reply subtree from before it was switched away from.
	a2 := seed(store, convId, "assistant", "reply to v2", &u2.Id, at(base.Add(time.Minute+time.Second)), inactive())
	// v3's current reply.
	a3 := seed(store, convId, "assistant", "reply to v3", &u3.Id, at(base.Add(2*time.Minute+time.Second)))

	result, err := engine.SwitchVersion(ctx, u3.Id, SwitchTarget{Direction: "prev"})
	require.NoError(t, err)

	assert.Equal(t, u2.Id, result.Target.Id)
	assert.ElementsMatch(t, []uuid.UUID{u3.Id, a3.Id}, result.Deactivated)
	assert.ElementsMatch(t, []uuid.UUID{u2.Id, a2.Id}, result.Activated)

	active := store.activeIds(convId)
	assert.Equal(t, map[uuid.UUID]bool{u2.Id: true, a2.Id: true}, active)
}

func TestSwitchVersionByIdRoundTrip(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(store)
	ctx := context.Background()
	convId := uuid.New()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	u1 := seed(store, convId, "user", "original", nil, at(base))
	a1 := seed(store, convId, "assistant", "reply", &u1.Id, at(base.Add(time.Second)))

	edited, err := engine.CreateVersion(ctx, u1.Id, "edited", true)
	require.NoError(t, err)

	// Switch back to the original version.
	result, err := engine.SwitchVersion(ctx, edited.Message.Id, SwitchTarget{MessageId: &u1.Id})
	require.NoError(t, err)

	assert.Equal(t, u1.Id, result.Target.Id)
	active := store.activeIds(convId)
	assert.True(t, active[u1.Id])
	assert.True(t, active[a1.Id], "original reply chain restored")
	assert.False(t, active[edited.Message.Id])
}

func TestSwitchVersionToActiveCurrentIsNoOp(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(store)
	ctx := context.Background()
	convId := uuid.New()

	u1 := seed(store, convId, "user", "hello", nil)

	result, err := engine.SwitchVersion(ctx, u1.Id, SwitchTarget{MessageId: &u1.Id})
	require.NoError(t, err)
	assert.Empty(t, result.Activated)
	assert.Empty(t, result.Deactivated)
	assert.True(t, store.messages[u1.Id].IsActive)
}

func TestSwitchVersionDirectionOutOfRange(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(store)
	ctx := context.Background()
	convId := uuid.New()

	u1 := seed(store, convId, "user", "only version", nil)

	for _, direction := range []string{"next", "prev"} {
		_, err := engine.SwitchVersion(ctx, u1.Id, SwitchTarget{Direction: direction})
		var noAdjacent *apperror.NoAdjacentVersionError
		require.ErrorAs(t, err, &noAdjacent, direction)
		assert.Equal(t, direction, noAdjacent.Direction)
	}
}

func TestSwitchVersionNewestChildTieBreak(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(store)
	ctx := context.Background()
	convId := uuid.New()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	u1 := seed(store, convId, "user", "v1", nil, at(base), inactive())
	u2 := seed(store, convId, "user", "v2", nil, at(base.Add(time.Minute)), inGroup(u1.VersionGroupId, 2))

	// Two candidate children of v1 with identical timestamps; the higher
	// version number wins.
	older := seed(store, convId, "assistant", "older reply", &u1.Id, at(base.Add(time.Second)), inactive())
	newer := seed(store, convId, "assistant", "newer reply", &u1.Id,
		at(base.Add(time.Second)), inGroup(older.VersionGroupId, 2), inactive())

	result, err := engine.SwitchVersion(ctx, u2.Id, SwitchTarget{Direction: "prev"})
	require.NoError(t, err)

	assert.Equal(t, u1.Id, result.Target.Id)
	active := store.activeIds(convId)
	assert.True(t, active[newer.Id])
	assert.False(t, active[older.Id])
}

func TestAppendMessageStartsFreshGroup(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(store)
	ctx := context.Background()
	convId := uuid.New()

	u1 := seed(store, convId, "user", "hello", nil)

	reply, err := engine.AppendMessage(ctx, convId, &u1.Id, "assistant", "hi")
	require.NoError(t, err)
	assert.Equal(t, reply.Id, reply.VersionGroupId)
	assert.Equal(t, 1, reply.VersionNumber)
	assert.True(t, reply.IsActive)
	assert.Equal(t, &u1.Id, reply.ParentId)
}

func TestEditSpawnsFreshReplyGroupWhileOldReplyKeepsItsGroup(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(store)
	ctx := context.Background()
	convId := uuid.New()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	u1 := seed(store, convId, "user", "question", nil, at(base))
	a1 := seed(store, convId, "assistant", "answer", &u1.Id, at(base.Add(time.Second)))

	edited, err := engine.CreateVersion(ctx, u1.Id, "different question", true)
	require.NoError(t, err)

	// The reply to the edited turn belongs to a brand-new group, not A1's.
	a2, err := engine.AppendMessage(ctx, convId, &edited.Message.Id, "assistant", "new answer")
	require.NoError(t, err)
	assert.NotEqual(t, a1.VersionGroupId, a2.VersionGroupId)
	assert.Equal(t, 1, a2.VersionNumber)

	active := store.activeIds(convId)
	assert.Equal(t, map[uuid.UUID]bool{edited.Message.Id: true, a2.Id: true}, active)
}

func TestGroupVersions(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(store)
	ctx := context.Background()
	convId := uuid.New()

	u1 := seed(store, convId, "user", "v1", nil, inactive())
	u2 := seed(store, convId, "user", "v2", nil, inGroup(u1.VersionGroupId, 2))

	versions, err := engine.GroupVersions(ctx, u2.Id)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, u1.Id, versions[0].Id)
	assert.Equal(t, u2.Id, versions[1].Id)

	next, err := engine.NextVersionNumber(ctx, u1.VersionGroupId)
	require.NoError(t, err)
	assert.Equal(t, 3, next)
}

func TestVersionNumbersStayContiguous(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(store)
	ctx := context.Background()
	convId := uuid.New()

	u1 := seed(store, convId, "user", "v1", nil)

	latest := u1
	for i := 2; i <= 5; i++ {
		result, err := engine.CreateVersion(ctx, latest.Id, "v"+string(rune('0'+i)), true)
		require.NoError(t, err)
		assert.Equal(t, i, result.Message.VersionNumber)
		latest = result.Message
	}

	versions, err := engine.GroupVersions(ctx, u1.Id)
	require.NoError(t, err)
	require.Len(t, versions, 5)
	for i, v := range versions {
		assert.Equal(t, i+1, v.VersionNumber)
	}
}
