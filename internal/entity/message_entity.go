package entity

import (
	"time"

	"github.com/google/uuid"
)

// Message is a single turn in a conversation. Alternate versions of the same
// turn (edits of a user message, regenerations of an assistant reply) share a
// VersionGroupId; exactly one member of a group carries IsActive at a time.
type Message struct {
	Id             uuid.UUID
	ConversationId uuid.UUID
	Role           string
	Content        string
	ParentId       *uuid.UUID
	VersionGroupId uuid.UUID
	VersionNumber  int
	IsEdited       bool
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}
