package dto

import "github.com/google/uuid"

type CreateProjectRequest struct {
	Name        string `json:"name" validate:"required,not_empty,max=255"`
	Description string `json:"description" validate:"max=10000"`
}

// AddMemberRequest adds or re-roles a member. Ownership cannot be granted.
type AddMemberRequest struct {
	UserID uuid.UUID `json:"userId" validate:"required"`
	Role   string    `json:"role" validate:"required,oneof=admin member viewer"`
}
