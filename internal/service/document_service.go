package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"ai-chat-be/internal/apperror"
	"ai-chat-be/internal/constant"
	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/repository/specification"
	"ai-chat-be/internal/repository/unitofwork"
	"ai-chat-be/pkg/events"
	pkgNats "ai-chat-be/pkg/nats"
	"ai-chat-be/pkg/rag/search"

	"github.com/google/uuid"
)

type IDocumentService interface {
	Upload(ctx context.Context, userId uuid.UUID, req *dto.UploadDocumentRequest) (*dto.DocumentResponse, error)
	List(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) ([]*dto.DocumentResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, documentId uuid.UUID) error
	Search(ctx context.Context, userId uuid.UUID, req *dto.SearchDocumentsRequest) ([]*dto.SearchResultResponse, error)
}

type documentService struct {
	uowFactory     unitofwork.RepositoryFactory
	publisher      IPublisherService
	searcher       *search.Orchestrator
	eventPublisher *pkgNats.Publisher
	logger         logger.ILogger
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	publisher IPublisherService,
	searcher *search.Orchestrator,
	eventPublisher *pkgNats.Publisher,
	log logger.ILogger,
) IDocumentService {
	return &documentService{
		uowFactory:     uowFactory,
		publisher:      publisher,
		searcher:       searcher,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

// Upload stores the document in "processing" state and queues it for
// chunking and embedding. The worker flips the status when done.
func (s *documentService) Upload(ctx context.Context, userId uuid.UUID, req *dto.UploadDocumentRequest) (*dto.DocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := s.authorizeConversation(ctx, uow, userId, req.ConversationId); err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.Content) == "" {
		return nil, apperror.NewInvalidOperation("document content cannot be empty")
	}

	document := &entity.Document{
		Id:             uuid.New(),
		UserId:         userId,
		ConversationId: req.ConversationId,
		Filename:       req.Filename,
		MimeType:       req.MimeType,
		Content:        req.Content,
		Status:         constant.DocumentStatusProcessing,
		CreatedAt:      time.Now(),
	}
	if err := uow.DocumentRepository().Create(ctx, document); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(dto.PublishEmbedDocumentMessage{DocumentId: document.Id})
	if err != nil {
		return nil, err
	}
	if err := s.publisher.Publish(ctx, payload); err != nil {
		s.logger.Error("DocumentService", "Failed to queue document for embedding", map[string]interface{}{
			"document_id": document.Id,
			"error":       err.Error(),
		})
		if updateErr := uow.DocumentRepository().UpdateStatus(ctx, document.Id, constant.DocumentStatusFailed); updateErr != nil {
			s.logger.Error("DocumentService", "Failed to mark document failed", map[string]interface{}{
				"document_id": document.Id,
				"error":       updateErr.Error(),
			})
		}
		return nil, err
	}

	if s.eventPublisher != nil {
		evt := events.New(events.TypeDocumentUploaded, map[string]interface{}{
			"document_id":     document.Id.String(),
			"conversation_id": document.ConversationId.String(),
		})
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("DocumentService", "Failed to publish event", map[string]interface{}{
				"type":  events.TypeDocumentUploaded,
				"error": err.Error(),
			})
		}
	}

	return toDocumentResponse(document), nil
}

func (s *documentService) List(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) ([]*dto.DocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := s.authorizeConversation(ctx, uow, userId, conversationId); err != nil {
		return nil, err
	}

	documents, err := uow.DocumentRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: conversationId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.DocumentResponse, len(documents))
	for i, d := range documents {
		result[i] = toDocumentResponse(d)
	}
	return result, nil
}

func (s *documentService) Delete(ctx context.Context, userId uuid.UUID, documentId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: documentId})
	if err != nil {
		return err
	}
	if document == nil || document.UserId != userId {
		return apperror.NewNotFound("document", documentId)
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChunkEmbeddingRepository().DeleteByDocumentId(ctx, documentId); err != nil {
		return err
	}
	if err := uow.DocumentRepository().DeleteChunksByDocumentId(ctx, documentId); err != nil {
		return err
	}
	if err := uow.DocumentRepository().Delete(ctx, documentId); err != nil {
		return err
	}

	return uow.Commit()
}

func (s *documentService) Search(ctx context.Context, userId uuid.UUID, req *dto.SearchDocumentsRequest) ([]*dto.SearchResultResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := s.authorizeConversation(ctx, uow, userId, req.ConversationId); err != nil {
		return nil, err
	}

	results, err := s.searcher.Execute(ctx, uow, req.ConversationId, req.Query, search.DefaultConfig())
	if err != nil {
		return nil, err
	}

	response := make([]*dto.SearchResultResponse, len(results))
	for i, r := range results {
		response[i] = &dto.SearchResultResponse{
			DocumentId: r.DocumentId,
			ChunkIndex: r.ChunkIndex,
			Content:    r.Content,
			Similarity: r.Similarity,
		}
	}
	return response, nil
}

func (s *documentService) authorizeConversation(ctx context.Context, uow unitofwork.UnitOfWork, userId, conversationId uuid.UUID) error {
	conversation, err := uow.ConversationRepository().FindOne(ctx, specification.ByID{ID: conversationId})
	if err != nil {
		return err
	}
	if conversation == nil || conversation.UserId != userId {
		return apperror.NewNotFound("conversation", conversationId)
	}
	return nil
}

func toDocumentResponse(d *entity.Document) *dto.DocumentResponse {
	return &dto.DocumentResponse{
		Id:             d.Id,
		ConversationId: d.ConversationId,
		Filename:       d.Filename,
		MimeType:       d.MimeType,
		Status:         d.Status,
		CreatedAt:      d.CreatedAt,
	}
}
