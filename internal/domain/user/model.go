package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the minimal profile the API keeps for display purposes.
type User struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null;default:''"`
	Email     string    `json:"email" gorm:"type:varchar(255);index:idx_user_email"`
	CreatedAt time.Time `json:"createdAt" gorm:"index:idx_user_created"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate is called before inserting a new user
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// DisplayName falls back to the id when no name was stored.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.ID.String()
}
