package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Message struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ConversationId uuid.UUID      `gorm:"type:uuid;not null;index"`
	Role           string         `gorm:"type:varchar(20);not null"`
	Content        string         `gorm:"type:text;not null"`
	ParentId       *uuid.UUID     `gorm:"type:uuid;index"`
	VersionGroupId uuid.UUID      `gorm:"type:uuid;not null;index"`
	VersionNumber  int            `gorm:"not null;default:1"`
	IsEdited       bool           `gorm:"not null;default:false"`
	IsActive       bool           `gorm:"not null;default:true;index"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

func (Message) TableName() string {
	return "messages"
}
