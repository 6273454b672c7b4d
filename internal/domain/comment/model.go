package comment

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrCommentTooLong = errors.New("comment exceeds maximum length")
)

// MaxContentLength is the longest comment accepted, in runes.
const MaxContentLength = 5000

type Comment struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	TaskID    uuid.UUID `json:"taskId" gorm:"type:uuid;not null;index:idx_comment_task"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null;index:idx_comment_created"`
}

func (Comment) TableName() string {
	return "comments"
}

// BeforeCreate is called before inserting a new comment
func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	c.CreatedAt = c.CreatedAt.UTC()
	return nil
}
