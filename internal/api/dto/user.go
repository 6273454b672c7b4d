package dto

// UpsertProfileRequest is the body of PUT /api/users/me.
type UpsertProfileRequest struct {
	Name  string `json:"name" validate:"required,not_empty,max=255"`
	Email string `json:"email" validate:"omitempty,email"`
}
