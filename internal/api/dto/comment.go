package dto

type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,not_empty,max=5000"`
}
