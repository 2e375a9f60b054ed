package dto

import (
	"time"

	"ai-chat-be/pkg/rag/prompt"

	"github.com/google/uuid"
)

type CreateConversationRequest struct {
	Title string `json:"title"`
}

type ConversationResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type MessageResponse struct {
	Id             uuid.UUID  `json:"id"`
	ConversationId uuid.UUID  `json:"conversation_id"`
	Role           string     `json:"role"`
	Content        string     `json:"content"`
	ParentId       *uuid.UUID `json:"parent_id,omitempty"`
	VersionGroupId uuid.UUID  `json:"version_group_id"`
	VersionNumber  int        `json:"version_number"`
	VersionCount   int        `json:"version_count,omitempty"`
	IsEdited       bool       `json:"is_edited"`
	IsActive       bool       `json:"is_active"`
	CreatedAt      time.Time  `json:"created_at"`
}

type SendMessageRequest struct {
	ConversationId uuid.UUID `json:"conversation_id" validate:"required"`
	Content        string    `json:"content" validate:"required"`
}

type SendMessageResponse struct {
	ConversationId uuid.UUID         `json:"conversation_id"`
	Sent           *MessageResponse  `json:"sent"`
	Reply          *MessageResponse  `json:"reply"`
	Citations      []prompt.Citation `json:"citations,omitempty"`
}

type EditMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

type EditMessageResponse struct {
	Edited     *MessageResponse  `json:"edited"`
	Reply      *MessageResponse  `json:"reply,omitempty"`
	ChangedIds []uuid.UUID       `json:"changed_ids"`
	Citations  []prompt.Citation `json:"citations,omitempty"`
	NoOp       bool              `json:"no_op,omitempty"`
}

type RegenerateResponse struct {
	Reply      *MessageResponse  `json:"reply"`
	ChangedIds []uuid.UUID       `json:"changed_ids"`
	Citations  []prompt.Citation `json:"citations,omitempty"`
}

type SwitchVersionRequest struct {
	MessageId *uuid.UUID `json:"message_id,omitempty"`
	Direction string     `json:"direction,omitempty" validate:"omitempty,oneof=next prev"`
}

type SwitchVersionResponse struct {
	Target     *MessageResponse `json:"target"`
	ChangedIds []uuid.UUID      `json:"changed_ids"`
}

type GetVersionsResponse struct {
	Versions []*MessageResponse `json:"versions"`
}

type GetActivePathResponse struct {
	Messages []*MessageResponse `json:"messages"`
}
