package project

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Common errors
var (
	ErrProjectNotFound   = errors.New("project not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrAccessDenied      = errors.New("access denied")
	ErrInvalidRole       = errors.New("invalid project role")
	ErrCannotRemoveOwner = errors.New("project owner cannot be removed")
	ErrOwnerMembership   = errors.New("project owner membership cannot be changed")
	ErrMemberNotFound    = errors.New("project member not found")
)

// Role is a member's permission level on a project.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
	RoleViewer Role = "viewer"
)

var roleRank = map[Role]int{
	RoleViewer: 1,
	RoleMember: 2,
	RoleAdmin:  3,
	RoleOwner:  4,
}

// IsValid validates the role
func (r Role) IsValid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r ranks equal to or above other.
func (r Role) AtLeast(other Role) bool {
	return roleRank[r] >= roleRank[other] && roleRank[r] > 0
}

type Project struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Name        string    `json:"name" gorm:"type:varchar(255);not null"`
	Description string    `json:"description" gorm:"type:text"`
	OwnerID     uuid.UUID `json:"ownerId" gorm:"type:uuid;not null;index:idx_project_owner"`
	CreatedAt   time.Time `json:"createdAt" gorm:"index:idx_project_created"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Project) TableName() string {
	return "projects"
}

// BeforeCreate is called before inserting a new project
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Name == "" || p.OwnerID == uuid.Nil {
		return ErrInvalidInput
	}
	return nil
}

// Member links a user to a project with a role.
type Member struct {
	ProjectID uuid.UUID `json:"projectId" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;primaryKey;index:idx_member_user"`
	Role      Role      `json:"role" gorm:"type:varchar(16);not null"`
	JoinedAt  time.Time `json:"joinedAt"`
}

func (Member) TableName() string {
	return "project_members"
}

// BeforeCreate is called before inserting a new member
func (m *Member) BeforeCreate(tx *gorm.DB) error {
	if !m.Role.IsValid() {
		return ErrInvalidRole
	}
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now().UTC()
	}
	return nil
}

type CreateProjectInput struct {
	Name        string
	Description string
	OwnerID     uuid.UUID
}

type AddMemberInput struct {
	UserID uuid.UUID
	Role   Role
}
