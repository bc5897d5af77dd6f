package types

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Review is the persistence record for one published-or-draft review. The
// canvas editor owns only StructuredContent; the remaining columns belong to
// the wider platform and are carried for the upsert path.
type Review struct {
	ID                int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Title             string         `gorm:"column:title" json:"title"`
	Status            string         `gorm:"column:status;not null;default:'draft'" json:"status"`
	StructuredContent datatypes.JSON `gorm:"column:structured_content;type:jsonb" json:"structured_content"`
	EditorVersion     string         `gorm:"column:editor_version" json:"editor_version"`
	CreatedAt         time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Review) TableName() string { return "review" }
