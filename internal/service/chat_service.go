package service

import (
	"context"
	"strings"
	"time"

	"ai-chat-be/internal/apperror"
	"ai-chat-be/internal/constant"
	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/pkg/ratelimit"
	"ai-chat-be/internal/repository/specification"
	"ai-chat-be/internal/repository/unitofwork"
	"ai-chat-be/internal/websocket"
	"ai-chat-be/pkg/branching"
	"ai-chat-be/pkg/events"
	pkgNats "ai-chat-be/pkg/nats"

	"github.com/google/uuid"
)

type IChatService interface {
	CreateConversation(ctx context.Context, userId uuid.UUID, req *dto.CreateConversationRequest) (*dto.ConversationResponse, error)
	GetConversations(ctx context.Context, userId uuid.UUID) ([]*dto.ConversationResponse, error)
	DeleteConversation(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) error

	SendMessage(ctx context.Context, userId uuid.UUID, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	EditMessage(ctx context.Context, userId uuid.UUID, messageId uuid.UUID, req *dto.EditMessageRequest) (*dto.EditMessageResponse, error)
	RegenerateResponse(ctx context.Context, userId uuid.UUID, messageId uuid.UUID) (*dto.RegenerateResponse, error)
	SwitchVersion(ctx context.Context, userId uuid.UUID, messageId uuid.UUID, req *dto.SwitchVersionRequest) (*dto.SwitchVersionResponse, error)
	GetVersions(ctx context.Context, userId uuid.UUID, messageId uuid.UUID) (*dto.GetVersionsResponse, error)
	GetActivePath(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) (*dto.GetActivePathResponse, error)
}

type chatService struct {
	uowFactory     unitofwork.RepositoryFactory
	generator      ResponseGenerator
	limiter        *ratelimit.Limiter
	eventPublisher *pkgNats.Publisher
	hub            *websocket.Hub
	logger         logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	generator ResponseGenerator,
	limiter *ratelimit.Limiter,
	eventPublisher *pkgNats.Publisher,
	hub *websocket.Hub,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:     uowFactory,
		generator:      generator,
		limiter:        limiter,
		eventPublisher: eventPublisher,
		hub:            hub,
		logger:         log,
	}
}

func (s *chatService) CreateConversation(ctx context.Context, userId uuid.UUID, req *dto.CreateConversationRequest) (*dto.ConversationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "New Conversation"
	}

	conversation := &entity.Conversation{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     title,
		CreatedAt: time.Now(),
	}
	if err := uow.ConversationRepository().Create(ctx, conversation); err != nil {
		return nil, err
	}

	return toConversationResponse(conversation), nil
}

func (s *chatService) GetConversations(ctx context.Context, userId uuid.UUID) ([]*dto.ConversationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversations, err := uow.ConversationRepository().FindAll(ctx,
		specification.ByUserID{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.ConversationResponse, len(conversations))
	for i, c := range conversations {
		result[i] = toConversationResponse(c)
	}
	return result, nil
}

func (s *chatService) DeleteConversation(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := s.authorizeConversation(ctx, uow, userId, conversationId); err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.MessageRepository().DeleteByConversationId(ctx, conversationId); err != nil {
		return err
	}
	if err := uow.ConversationRepository().Delete(ctx, conversationId); err != nil {
		return err
	}

	return uow.Commit()
}

// SendMessage appends a normal turn: the user message continues the
// active path, and the assistant reply starts its own version group.
func (s *chatService) SendMessage(ctx context.Context, userId uuid.UUID, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := s.authorizeConversation(ctx, uow, userId, req.ConversationId); err != nil {
		return nil, err
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperror.NewInvalidOperation("message content cannot be empty")
	}

	leaf, err := uow.MessageRepository().FindActiveLeaf(ctx, req.ConversationId)
	if err != nil {
		return nil, err
	}
	var parentId *uuid.UUID
	if leaf != nil {
		parentId = &leaf.Id
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	engine := branching.NewEngine(uow.MessageRepository())
	sent, err := engine.AppendMessage(ctx, req.ConversationId, parentId, constant.ChatMessageRoleUser, content)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	answer, citations, err := s.generator.Generate(ctx, req.ConversationId, content)
	if err != nil {
		s.logger.Error("ChatService", "Generation failed for send", map[string]interface{}{
			"conversation_id": req.ConversationId,
			"error":           err.Error(),
		})
		return nil, &apperror.GenerationFailedError{Err: err}
	}

	reply, err := s.appendReply(ctx, req.ConversationId, sent.Id, answer)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, userId, events.TypeMessageCreated, websocket.MessageDelta{
		ConversationId: req.ConversationId,
		Kind:           "created",
		ChangedIds:     []uuid.UUID{sent.Id, reply.Id},
	})

	return &dto.SendMessageResponse{
		ConversationId: req.ConversationId,
		Sent:           toMessageResponse(sent, 0),
		Reply:          toMessageResponse(reply, 0),
		Citations:      citations,
	}, nil
}

// EditMessage creates a new version of a user turn and pairs it with a
// freshly generated reply in a brand-new version group. A failed
// generation leaves the committed edit active, so the conversation ends
// on a valid user leaf.
func (s *chatService) EditMessage(ctx context.Context, userId uuid.UUID, messageId uuid.UUID, req *dto.EditMessageRequest) (*dto.EditMessageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	message, err := s.authorizeMessage(ctx, uow, userId, messageId)
	if err != nil {
		return nil, err
	}
	if message.Role != constant.ChatMessageRoleUser {
		return nil, apperror.NewInvalidOperation("only user messages can be edited")
	}

	if ok, retryAfter := s.limiter.Allow("edit:"+userId.String(), constant.EditMaxPerWindow, constant.RateLimitWindow); !ok {
		return nil, &apperror.RateLimitedError{Operation: "edit", RetryAfter: retryAfter}
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	engine := branching.NewEngine(uow.MessageRepository())
	result, err := engine.CreateVersion(ctx, messageId, req.Content, true)
	if err != nil {
		return nil, err
	}
	if result.NoOp {
		return &dto.EditMessageResponse{
			Edited: toMessageResponse(result.Message, 0),
			NoOp:   true,
		}, nil
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	edited := result.Message
	answer, citations, err := s.generator.Generate(ctx, edited.ConversationId, edited.Content)
	if err != nil {
		s.logger.Error("ChatService", "Generation failed for edit", map[string]interface{}{
			"message_id": messageId,
			"error":      err.Error(),
		})
		return nil, &apperror.GenerationFailedError{Err: err}
	}

	reply, err := s.appendReply(ctx, edited.ConversationId, edited.Id, answer)
	if err != nil {
		return nil, err
	}

	changed := append([]uuid.UUID{}, result.Deactivated...)
	s.notify(ctx, userId, events.TypeMessageEdited, websocket.MessageDelta{
		ConversationId: edited.ConversationId,
		Kind:           "edited",
		ChangedIds:     append(changed, edited.Id, reply.Id),
	})

	return &dto.EditMessageResponse{
		Edited:     toMessageResponse(edited, 0),
		Reply:      toMessageResponse(reply, 0),
		ChangedIds: changed,
		Citations:  citations,
	}, nil
}

// RegenerateResponse replaces an assistant reply with a new version in
// the same group. Accepts either the user turn or the reply itself.
func (s *chatService) RegenerateResponse(ctx context.Context, userId uuid.UUID, messageId uuid.UUID) (*dto.RegenerateResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	message, err := s.authorizeMessage(ctx, uow, userId, messageId)
	if err != nil {
		return nil, err
	}

	if ok, retryAfter := s.limiter.Allow("regenerate:"+userId.String(), constant.RegenerateMaxPerWindow, constant.RateLimitWindow); !ok {
		return nil, &apperror.RateLimitedError{Operation: "regenerate", RetryAfter: retryAfter}
	}

	var userTurn, reply *entity.Message
	if message.Role == constant.ChatMessageRoleAssistant {
		reply = message
		if message.ParentId != nil {
			userTurn, err = uow.MessageRepository().FindById(ctx, *message.ParentId)
			if err != nil {
				return nil, err
			}
		}
	} else {
		userTurn = message
		reply, err = uow.MessageRepository().FindOne(ctx,
			specification.ByParentID{ParentID: message.Id},
			specification.ByRole{Role: constant.ChatMessageRoleAssistant},
			specification.ActiveOnly{},
		)
		if err != nil {
			return nil, err
		}
	}
	if userTurn == nil {
		return nil, apperror.NewInvalidOperation("no user turn found to regenerate from")
	}

	exclude := []uuid.UUID{}
	if reply != nil {
		exclude = append(exclude, reply.Id)
	}
	answer, citations, err := s.generator.Generate(ctx, userTurn.ConversationId, userTurn.Content, exclude...)
	if err != nil {
		s.logger.Error("ChatService", "Generation failed for regenerate", map[string]interface{}{
			"message_id": messageId,
			"error":      err.Error(),
		})
		return nil, &apperror.GenerationFailedError{Err: err}
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	engine := branching.NewEngine(uow.MessageRepository())
	var newReply *entity.Message
	var changed []uuid.UUID
	if reply != nil {
		result, err := engine.CreateVersion(ctx, reply.Id, answer, false)
		if err != nil {
			return nil, err
		}
		newReply = result.Message
		changed = result.Deactivated
	} else {
		// The prior generation failed and left a bare user leaf.
		newReply, err = engine.AppendMessage(ctx, userTurn.ConversationId, &userTurn.Id, constant.ChatMessageRoleAssistant, answer)
		if err != nil {
			return nil, err
		}
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.notify(ctx, userId, events.TypeMessageRegenerated, websocket.MessageDelta{
		ConversationId: userTurn.ConversationId,
		Kind:           "regenerated",
		ChangedIds:     append(append([]uuid.UUID{}, changed...), newReply.Id),
	})

	return &dto.RegenerateResponse{
		Reply:      toMessageResponse(newReply, 0),
		ChangedIds: changed,
		Citations:  citations,
	}, nil
}

func (s *chatService) SwitchVersion(ctx context.Context, userId uuid.UUID, messageId uuid.UUID, req *dto.SwitchVersionRequest) (*dto.SwitchVersionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	message, err := s.authorizeMessage(ctx, uow, userId, messageId)
	if err != nil {
		return nil, err
	}

	if req.MessageId == nil && req.Direction == "" {
		return nil, apperror.NewInvalidOperation("either message_id or direction is required")
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	engine := branching.NewEngine(uow.MessageRepository())
	result, err := engine.SwitchVersion(ctx, messageId, branching.SwitchTarget{
		MessageId: req.MessageId,
		Direction: req.Direction,
	})
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	changed := append(append([]uuid.UUID{}, result.Deactivated...), result.Activated...)
	if len(changed) > 0 {
		s.notify(ctx, userId, events.TypeVersionSwitched, websocket.MessageDelta{
			ConversationId: message.ConversationId,
			Kind:           "switched",
			ChangedIds:     changed,
		})
	}

	return &dto.SwitchVersionResponse{
		Target:     toMessageResponse(result.Target, 0),
		ChangedIds: changed,
	}, nil
}

func (s *chatService) GetVersions(ctx context.Context, userId uuid.UUID, messageId uuid.UUID) (*dto.GetVersionsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	message, err := s.authorizeMessage(ctx, uow, userId, messageId)
	if err != nil {
		return nil, err
	}

	versions, err := uow.MessageRepository().FindByVersionGroup(ctx, message.VersionGroupId)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.MessageResponse, len(versions))
	for i, v := range versions {
		result[i] = toMessageResponse(v, len(versions))
	}
	return &dto.GetVersionsResponse{Versions: result}, nil
}

func (s *chatService) GetActivePath(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) (*dto.GetActivePathResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := s.authorizeConversation(ctx, uow, userId, conversationId); err != nil {
		return nil, err
	}

	messages, err := uow.MessageRepository().FindActivePath(ctx, conversationId, constant.HistoryLimit)
	if err != nil {
		return nil, err
	}

	// Version counts let the UI render "2 / 3" style switchers.
	counts := make(map[uuid.UUID]int)
	for _, m := range messages {
		if _, ok := counts[m.VersionGroupId]; ok {
			continue
		}
		n, err := uow.MessageRepository().Count(ctx, specification.ByVersionGroupID{VersionGroupID: m.VersionGroupId})
		if err != nil {
			return nil, err
		}
		counts[m.VersionGroupId] = int(n)
	}

	result := make([]*dto.MessageResponse, len(messages))
	for i, m := range messages {
		result[i] = toMessageResponse(m, counts[m.VersionGroupId])
	}
	return &dto.GetActivePathResponse{Messages: result}, nil
}

// appendReply commits the assistant turn in its own transaction.
func (s *chatService) appendReply(ctx context.Context, conversationId, parentId uuid.UUID, answer string) (*entity.Message, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	engine := branching.NewEngine(uow.MessageRepository())
	reply, err := engine.AppendMessage(ctx, conversationId, &parentId, constant.ChatMessageRoleAssistant, answer)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return reply, nil
}

func (s *chatService) authorizeConversation(ctx context.Context, uow unitofwork.UnitOfWork, userId, conversationId uuid.UUID) (*entity.Conversation, error) {
	conversation, err := uow.ConversationRepository().FindOne(ctx, specification.ByID{ID: conversationId})
	if err != nil {
		return nil, err
	}
	if conversation == nil || conversation.UserId != userId {
		return nil, apperror.NewNotFound("conversation", conversationId)
	}
	return conversation, nil
}

func (s *chatService) authorizeMessage(ctx context.Context, uow unitofwork.UnitOfWork, userId, messageId uuid.UUID) (*entity.Message, error) {
	message, err := uow.MessageRepository().FindById(ctx, messageId)
	if err != nil {
		return nil, err
	}
	if message == nil {
		return nil, apperror.NewNotFound("message", messageId)
	}
	if _, err := s.authorizeConversation(ctx, uow, userId, message.ConversationId); err != nil {
		return nil, apperror.NewNotFound("message", messageId)
	}
	return message, nil
}

func (s *chatService) notify(ctx context.Context, userId uuid.UUID, eventType string, delta websocket.MessageDelta) {
	if s.eventPublisher != nil {
		evt := events.New(eventType, map[string]interface{}{
			"user_id":         userId.String(),
			"conversation_id": delta.ConversationId.String(),
			"changed_ids":     delta.ChangedIds,
		})
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("ChatService", "Failed to publish event", map[string]interface{}{
				"type":  eventType,
				"error": err.Error(),
			})
		}
	}
	if s.hub != nil {
		s.hub.Send(userId, delta)
	}
}

func toConversationResponse(c *entity.Conversation) *dto.ConversationResponse {
	return &dto.ConversationResponse{
		Id:        c.Id,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toMessageResponse(m *entity.Message, versionCount int) *dto.MessageResponse {
	return &dto.MessageResponse{
		Id:             m.Id,
		ConversationId: m.ConversationId,
		Role:           m.Role,
		Content:        m.Content,
		ParentId:       m.ParentId,
		VersionGroupId: m.VersionGroupId,
		VersionNumber:  m.VersionNumber,
		VersionCount:   versionCount,
		IsEdited:       m.IsEdited,
		IsActive:       m.IsActive,
		CreatedAt:      m.CreatedAt,
	}
}
