package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"ai-chat-be/internal/apperror"
	"ai-chat-be/internal/constant"
	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/pkg/ratelimit"
	"ai-chat-be/internal/repository/contract"
	"ai-chat-be/internal/repository/specification"
	"ai-chat-be/internal/repository/unitofwork"
	"ai-chat-be/pkg/rag/prompt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStore backs the fake repositories for service tests.
type memoryStore struct {
	mu            sync.Mutex
	conversations map[uuid.UUID]*entity.Conversation
	messages      map[uuid.UUID]*entity.Message
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		conversations: make(map[uuid.UUID]*entity.Conversation),
		messages:      make(map[uuid.UUID]*entity.Message),
	}
}

type fakeUow struct {
	store *memoryStore
}

func (u *fakeUow) Begin(ctx context.Context) error { return nil }
func (u *fakeUow) Commit() error                   { return nil }
func (u *fakeUow) Rollback() error                 { return nil }

func (u *fakeUow) ConversationRepository() contract.ConversationRepository {
	return &fakeConversationRepo{store: u.store}
}

func (u *fakeUow) MessageRepository() contract.MessageRepository {
	return &fakeMessageRepo{store: u.store}
}

func (u *fakeUow) DocumentRepository() contract.DocumentRepository {
	panic("not used in chat service tests")
}

func (u *fakeUow) ChunkEmbeddingRepository() contract.ChunkEmbeddingRepository {
	panic("not used in chat service tests")
}

type fakeFactory struct {
	store *memoryStore
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUow{store: f.store}
}

type fakeConversationRepo struct {
	store *memoryStore
}

func (r *fakeConversationRepo) Create(ctx context.Context, c *entity.Conversation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	clone := *c
	r.store.conversations[c.Id] = &clone
	return nil
}

func (r *fakeConversationRepo) Update(ctx context.Context, c *entity.Conversation) error {
	return r.Create(ctx, c)
}

func (r *fakeConversationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.conversations, id)
	return nil
}

func (r *fakeConversationRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *fakeConversationRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Conversation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []*entity.Conversation
	for _, c := range r.store.conversations {
		if conversationMatches(c, specs) {
			clone := *c
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (r *fakeConversationRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	return int64(len(all)), err
}

func conversationMatches(c *entity.Conversation, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if c.Id != s.ID {
				return false
			}
		case specification.ByUserID:
			if c.UserId != s.UserID {
				return false
			}
		}
	}
	return true
}

type fakeMessageRepo struct {
	store *memoryStore
}

func (r *fakeMessageRepo) Create(ctx context.Context, m *entity.Message) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	clone := *m
	r.store.messages[m.Id] = &clone
	return nil
}

func (r *fakeMessageRepo) Update(ctx context.Context, m *entity.Message) error {
	return r.Create(ctx, m)
}

func (r *fakeMessageRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.messages, id)
	return nil
}

func (r *fakeMessageRepo) DeleteByConversationId(ctx context.Context, conversationId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for id, m := range r.store.messages {
		if m.ConversationId == conversationId {
			delete(r.store.messages, id)
		}
	}
	return nil
}

func (r *fakeMessageRepo) FindById(ctx context.Context, id uuid.UUID) (*entity.Message, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	m, ok := r.store.messages[id]
	if !ok {
		return nil, nil
	}
	clone := *m
	return &clone, nil
}

func (r *fakeMessageRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Message, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *fakeMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []*entity.Message
	for _, m := range r.store.messages {
		if messageMatches(m, specs) {
			clone := *m
			result = append(result, &clone)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *fakeMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	return int64(len(all)), err
}

func (r *fakeMessageRepo) FindByVersionGroup(ctx context.Context, groupId uuid.UUID) ([]*entity.Message, error) {
	all, err := r.FindAll(ctx, specification.ByVersionGroupID{VersionGroupID: groupId})
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].VersionNumber < all[j].VersionNumber
	})
	return all, nil
}

func (r *fakeMessageRepo) FindByVersionGroupLocked(ctx context.Context, groupId uuid.UUID) ([]*entity.Message, error) {
	return r.FindByVersionGroup(ctx, groupId)
}

func (r *fakeMessageRepo) FindByConversation(ctx context.Context, conversationId uuid.UUID) ([]*entity.Message, error) {
	return r.FindAll(ctx, specification.ByConversationID{ConversationID: conversationId})
}

func (r *fakeMessageRepo) FindActiveLeaf(ctx context.Context, conversationId uuid.UUID) (*entity.Message, error) {
	active, err := r.FindAll(ctx,
		specification.ByConversationID{ConversationID: conversationId},
		specification.ActiveOnly{},
	)
	if err != nil || len(active) == 0 {
		return nil, err
	}
	hasActiveChild := make(map[uuid.UUID]bool)
	for _, m := range active {
		if m.ParentId != nil {
			hasActiveChild[*m.ParentId] = true
		}
	}
	for i := len(active) - 1; i >= 0; i-- {
		if !hasActiveChild[active[i].Id] {
			return active[i], nil
		}
	}
	return nil, nil
}

func (r *fakeMessageRepo) FindActivePath(ctx context.Context, conversationId uuid.UUID, limit int) ([]*entity.Message, error) {
	active, err := r.FindAll(ctx,
		specification.ByConversationID{ConversationID: conversationId},
		specification.ActiveOnly{},
	)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(active) > limit {
		active = active[len(active)-limit:]
	}
	return active, nil
}

func (r *fakeMessageRepo) BulkSetActive(ctx context.Context, ids []uuid.UUID, active bool) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, id := range ids {
		if m, ok := r.store.messages[id]; ok {
			m.IsActive = active
		}
	}
	return nil
}

func messageMatches(m *entity.Message, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if m.Id != s.ID {
				return false
			}
		case specification.ByConversationID:
			if m.ConversationId != s.ConversationID {
				return false
			}
		case specification.ByVersionGroupID:
			if m.VersionGroupId != s.VersionGroupID {
				return false
			}
		case specification.ByParentID:
			if m.ParentId == nil || *m.ParentId != s.ParentID {
				return false
			}
		case specification.ByRole:
			if m.Role != s.Role {
				return false
			}
		case specification.ActiveOnly:
			if !m.IsActive {
				return false
			}
		}
	}
	return true
}

type stubGenerator struct {
	answer      string
	citations   []prompt.Citation
	err         error
	lastQuery   string
	lastExclude []uuid.UUID
	calls       int
}

func (g *stubGenerator) Generate(ctx context.Context, conversationId uuid.UUID, query string, exclude ...uuid.UUID) (string, []prompt.Citation, error) {
	g.calls++
	g.lastQuery = query
	g.lastExclude = exclude
	if g.err != nil {
		return "", nil, g.err
	}
	return g.answer, g.citations, nil
}

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error                                                  { return nil }

type chatFixture struct {
	store     *memoryStore
	generator *stubGenerator
	service   IChatService
	userId    uuid.UUID
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	store := newMemoryStore()
	generator := &stubGenerator{answer: "generated answer"}
	svc := NewChatService(
		&fakeFactory{store: store},
		generator,
		ratelimit.NewLimiter(constant.RateLimitWindow),
		nil,
		nil,
		noopLogger{},
	)
	return &chatFixture{
		store:     store,
		generator: generator,
		service:   svc,
		userId:    uuid.New(),
	}
}

func (f *chatFixture) seedConversation() uuid.UUID {
	id := uuid.New()
	f.store.conversations[id] = &entity.Conversation{
		Id:        id,
		UserId:    f.userId,
		Title:     "Test",
		CreatedAt: time.Now(),
	}
	return id
}

func (f *chatFixture) seedMessage(conversationId uuid.UUID, parentId *uuid.UUID, role, content string, offset time.Duration) *entity.Message {
	m := &entity.Message{
		Id:             uuid.New(),
		ConversationId: conversationId,
		Role:           role,
		Content:        content,
		ParentId:       parentId,
		VersionNumber:  1,
		IsActive:       true,
		CreatedAt:      time.Now().Add(offset),
	}
	m.VersionGroupId = m.Id
	f.store.messages[m.Id] = m
	return m
}

func TestSendMessageAppendsUserTurnAndReply(t *testing.T) {
	f := newChatFixture(t)
	convId := f.seedConversation()

	resp, err := f.service.SendMessage(context.Background(), f.userId, &dto.SendMessageRequest{
		ConversationId: convId,
		Content:        "hello there",
	})
	require.NoError(t, err)

	assert.Equal(t, constant.ChatMessageRoleUser, resp.Sent.Role)
	assert.Equal(t, constant.ChatMessageRoleAssistant, resp.Reply.Role)
	assert.Equal(t, "generated answer", resp.Reply.Content)
	require.NotNil(t, resp.Reply.ParentId)
	assert.Equal(t, resp.Sent.Id, *resp.Reply.ParentId)
	assert.Equal(t, "hello there", f.generator.lastQuery)
}

func TestSendMessageChainsOntoActiveLeaf(t *testing.T) {
	f := newChatFixture(t)
	convId := f.seedConversation()
	first := f.seedMessage(convId, nil, constant.ChatMessageRoleUser, "first", 0)
	reply := f.seedMessage(convId, &first.Id, constant.ChatMessageRoleAssistant, "first reply", time.Second)

	resp, err := f.service.SendMessage(context.Background(), f.userId, &dto.SendMessageRequest{
		ConversationId: convId,
		Content:        "second",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Sent.ParentId)
	assert.Equal(t, reply.Id, *resp.Sent.ParentId)
}

func TestSendMessageUnknownConversation(t *testing.T) {
	f := newChatFixture(t)

	_, err := f.service.SendMessage(context.Background(), f.userId, &dto.SendMessageRequest{
		ConversationId: uuid.New(),
		Content:        "hello",
	})

	var notFound *apperror.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestSendMessageForeignConversationHidden(t *testing.T) {
	f := newChatFixture(t)
	convId := f.seedConversation()

	_, err := f.service.SendMessage(context.Background(), uuid.New(), &dto.SendMessageRequest{
		ConversationId: convId,
		Content:        "hello",
	})

	var notFound *apperror.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestEditMessageSpawnsFreshReplyGroup(t *testing.T) {
	f := newChatFixture(t)
	convId := f.seedConversation()
	userMsg := f.seedMessage(convId, nil, constant.ChatMessageRoleUser, "original", 0)
	oldReply := f.seedMessage(convId, &userMsg.Id, constant.ChatMessageRoleAssistant, "old reply", time.Second)

	resp, err := f.service.EditMessage(context.Background(), f.userId, userMsg.Id, &dto.EditMessageRequest{
		Content: "edited content",
	})
	require.NoError(t, err)
	require.False(t, resp.NoOp)

	assert.Equal(t, "edited content", resp.Edited.Content)
	assert.Equal(t, 2, resp.Edited.VersionNumber)
	assert.Equal(t, userMsg.VersionGroupId, resp.Edited.VersionGroupId)
	assert.True(t, resp.Edited.IsEdited)

	// The new reply gets its own version group, leaving the old reply's
	// group intact on the abandoned branch.
	require.NotNil(t, resp.Reply)
	assert.Equal(t, resp.Reply.Id, resp.Reply.VersionGroupId)
	assert.NotEqual(t, oldReply.VersionGroupId, resp.Reply.VersionGroupId)

	assert.Contains(t, resp.ChangedIds, userMsg.Id)
	assert.Contains(t, resp.ChangedIds, oldReply.Id)
	assert.False(t, f.store.messages[userMsg.Id].IsActive)
	assert.False(t, f.store.messages[oldReply.Id].IsActive)
}

func TestEditMessageUnchangedContentIsNoOp(t *testing.T) {
	f := newChatFixture(t)
	convId := f.seedConversation()
	userMsg := f.seedMessage(convId, nil, constant.ChatMessageRoleUser, "original", 0)

	resp, err := f.service.EditMessage(context.Background(), f.userId, userMsg.Id, &dto.EditMessageRequest{
		Content: "  original  ",
	})
	require.NoError(t, err)

	assert.True(t, resp.NoOp)
	assert.Equal(t, userMsg.Id, resp.Edited.Id)
	assert.Zero(t, f.generator.calls)
}

func TestEditMessageRejectsAssistantTurn(t *testing.T) {
	f := newChatFixture(t)
	convId := f.seedConversation()
	userMsg := f.seedMessage(convId, nil, constant.ChatMessageRoleUser, "q", 0)
	reply := f.seedMessage(convId, &userMsg.Id, constant.ChatMessageRoleAssistant, "a", time.Second)

	_, err := f.service.EditMessage(context.Background(), f.userId, reply.Id, &dto.EditMessageRequest{
		Content: "rewritten",
	})

	var invalid *apperror.InvalidOperationError
	require.ErrorAs(t, err, &invalid)
}

func TestEditMessageRateLimited(t *testing.T) {
	f := newChatFixture(t)
	convId := f.seedConversation()
	userMsg := f.seedMessage(convId, nil, constant.ChatMessageRoleUser, "v0", 0)

	targetId := userMsg.Id
	for i := 0; i < constant.EditMaxPerWindow; i++ {
		resp, err := f.service.EditMessage(context.Background(), f.userId, targetId, &dto.EditMessageRequest{
			Content: "version " + uuid.NewString(),
		})
		require.NoError(t, err)
		targetId = resp.Edited.Id
	}

	_, err := f.service.EditMessage(context.Background(), f.userId, targetId, &dto.EditMessageRequest{
		Content: "one too many",
	})

	var limited *apperror.RateLimitedError
	require.ErrorAs(t, err, &limited)
	assert.Equal(t, "edit", limited.Operation)
	assert.Greater(t, limited.RetryAfter, time.Duration(0))
}

func TestEditMessageGenerationFailureLeavesEditActive(t *testing.T) {
	f := newChatFixture(t)
	convId := f.seedConversation()
	userMsg := f.seedMessage(convId, nil, constant.ChatMessageRoleUser, "original", 0)
	f.generator.err = errors.New("model unavailable")

	_, err := f.service.EditMessage(context.Background(), f.userId, userMsg.Id, &dto.EditMessageRequest{
		Content: "edited content",
	})

	var genErr *apperror.GenerationFailedError
	require.ErrorAs(t, err, &genErr)

	// The edit itself is committed: the new version is active and the
	// old one is not, so a regenerate can pick up from here.
	var edited *entity.Message
	for _, m := range f.store.messages {
		if m.Content == "edited content" {
			edited = m
		}
	}
	require.NotNil(t, edited)
	assert.True(t, edited.IsActive)
	assert.False(t, f.store.messages[userMsg.Id].IsActive)
}

func TestRegenerateAppendsToExistingReplyGroup(t *testing.T) {
	f := newChatFixture(t)
	convId := f.seedConversation()
	userMsg := f.seedMessage(convId, nil, constant.ChatMessageRoleUser, "question", 0)
	oldReply := f.seedMessage(convId, &userMsg.Id, constant.ChatMessageRoleAssistant, "first answer", time.Second)

	resp, err := f.service.RegenerateResponse(context.Background(), f.userId, userMsg.Id)
	require.NoError(t, err)

	assert.Equal(t, oldReply.VersionGroupId, resp.Reply.VersionGroupId)
	assert.Equal(t, 2, resp.Reply.VersionNumber)
	assert.False(t, resp.Reply.IsEdited)
	assert.Contains(t, resp.ChangedIds, oldReply.Id)
	assert.False(t, f.store.messages[oldReply.Id].IsActive)

	// The replaced reply must not leak back in as context.
	assert.Equal(t, []uuid.UUID{oldReply.Id}, f.generator.lastExclude)
	assert.Equal(t, "question", f.generator.lastQuery)
}

func TestRegenerateAcceptsAssistantId(t *testing.T) {
	f := newChatFixture(t)
	convId := f.seedConversation()
	userMsg := f.seedMessage(convId, nil, constant.ChatMessageRoleUser, "question", 0)
	oldReply := f.seedMessage(convId, &userMsg.Id, constant.ChatMessageRoleAssistant, "first answer", time.Second)

	resp, err := f.service.RegenerateResponse(context.Background(), f.userId, oldReply.Id)
	require.NoError(t, err)
	assert.Equal(t, oldReply.VersionGroupId, resp.Reply.VersionGroupId)
	assert.Equal(t, 2, resp.Reply.VersionNumber)
}

func TestRegenerateRecoversBareUserLeaf(t *testing.T) {
	f := newChatFixture(t)
	convId := f.seedConversation()
	userMsg := f.seedMessage(convId, nil, constant.ChatMessageRoleUser, "question", 0)

	resp, err := f.service.RegenerateResponse(context.Background(), f.userId, userMsg.Id)
	require.NoError(t, err)

	assert.Equal(t, constant.ChatMessageRoleAssistant, resp.Reply.Role)
	assert.Equal(t, 1, resp.Reply.VersionNumber)
	assert.Equal(t, resp.Reply.Id, resp.Reply.VersionGroupId)
	assert.Empty(t, f.generator.lastExclude)
}

func TestRegenerateRateLimited(t *testing.T) {
	f := newChatFixture(t)
	convId := f.seedConversation()
	userMsg := f.seedMessage(convId, nil, constant.ChatMessageRoleUser, "question", 0)
	f.seedMessage(convId, &userMsg.Id, constant.ChatMessageRoleAssistant, "answer", time.Second)

	for i := 0; i < constant.RegenerateMaxPerWindow; i++ {
		_, err := f.service.RegenerateResponse(context.Background(), f.userId, userMsg.Id)
		require.NoError(t, err)
	}

	_, err := f.service.RegenerateResponse(context.Background(), f.userId, userMsg.Id)

	var limited *apperror.RateLimitedError
	require.ErrorAs(t, err, &limited)
	assert.Equal(t, "regenerate", limited.Operation)
}

func TestSwitchVersionReturnsChangedIds(t *testing.T) {
	f := newChatFixture(t)
	convId := f.seedConversation()
	userMsg := f.seedMessage(convId, nil, constant.ChatMessageRoleUser, "question", 0)
	f.seedMessage(convId, &userMsg.Id, constant.ChatMessageRoleAssistant, "answer", time.Second)

	regen, err := f.service.RegenerateResponse(context.Background(), f.userId, userMsg.Id)
	require.NoError(t, err)

	resp, err := f.service.SwitchVersion(context.Background(), f.userId, regen.Reply.Id, &dto.SwitchVersionRequest{
		Direction: "prev",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Target.VersionNumber)
	assert.Contains(t, resp.ChangedIds, regen.Reply.Id)
	assert.Contains(t, resp.ChangedIds, resp.Target.Id)
	assert.True(t, f.store.messages[resp.Target.Id].IsActive)
	assert.False(t, f.store.messages[regen.Reply.Id].IsActive)
}

func TestSwitchVersionRequiresTarget(t *testing.T) {
	f := newChatFixture(t)
	convId := f.seedConversation()
	userMsg := f.seedMessage(convId, nil, constant.ChatMessageRoleUser, "question", 0)

	_, err := f.service.SwitchVersion(context.Background(), f.userId, userMsg.Id, &dto.SwitchVersionRequest{})

	var invalid *apperror.InvalidOperationError
	require.ErrorAs(t, err, &invalid)
}

func TestSwitchVersionNoAdjacent(t *testing.T) {
	f := newChatFixture(t)
	convId := f.seedConversation()
	userMsg := f.seedMessage(convId, nil, constant.ChatMessageRoleUser, "question", 0)

	_, err := f.service.SwitchVersion(context.Background(), f.userId, userMsg.Id, &dto.SwitchVersionRequest{
		Direction: "next",
	})

	var noAdjacent *apperror.NoAdjacentVersionError
	require.ErrorAs(t, err, &noAdjacent)
}

func TestGetVersionsListsGroupInOrder(t *testing.T) {
	f := newChatFixture(t)
	convId := f.seedConversation()
	userMsg := f.seedMessage(convId, nil, constant.ChatMessageRoleUser, "v1", 0)

	edit, err := f.service.EditMessage(context.Background(), f.userId, userMsg.Id, &dto.EditMessageRequest{Content: "v2"})
	require.NoError(t, err)

	resp, err := f.service.GetVersions(context.Background(), f.userId, edit.Edited.Id)
	require.NoError(t, err)

	require.Len(t, resp.Versions, 2)
	assert.Equal(t, 1, resp.Versions[0].VersionNumber)
	assert.Equal(t, 2, resp.Versions[1].VersionNumber)
	assert.Equal(t, 2, resp.Versions[0].VersionCount)
}

func TestGetActivePathSkipsInactiveBranches(t *testing.T) {
	f := newChatFixture(t)
	convId := f.seedConversation()
	userMsg := f.seedMessage(convId, nil, constant.ChatMessageRoleUser, "original", 0)
	f.seedMessage(convId, &userMsg.Id, constant.ChatMessageRoleAssistant, "old reply", time.Second)

	edit, err := f.service.EditMessage(context.Background(), f.userId, userMsg.Id, &dto.EditMessageRequest{Content: "edited"})
	require.NoError(t, err)

	resp, err := f.service.GetActivePath(context.Background(), f.userId, convId)
	require.NoError(t, err)

	require.Len(t, resp.Messages, 2)
	assert.Equal(t, edit.Edited.Id, resp.Messages[0].Id)
	assert.Equal(t, edit.Reply.Id, resp.Messages[1].Id)
	assert.Equal(t, 2, resp.Messages[0].VersionCount)
}

func TestDeleteConversationRemovesMessages(t *testing.T) {
	f := newChatFixture(t)
	convId := f.seedConversation()
	userMsg := f.seedMessage(convId, nil, constant.ChatMessageRoleUser, "q", 0)
	f.seedMessage(convId, &userMsg.Id, constant.ChatMessageRoleAssistant, "a", time.Second)

	require.NoError(t, f.service.DeleteConversation(context.Background(), f.userId, convId))

	assert.Empty(t, f.store.messages)
	assert.Empty(t, f.store.conversations)
}

func TestCreateConversationDefaultsTitle(t *testing.T) {
	f := newChatFixture(t)

	resp, err := f.service.CreateConversation(context.Background(), f.userId, &dto.CreateConversationRequest{Title: "  "})
	require.NoError(t, err)
	assert.Equal(t, "New Conversation", resp.Title)
}
