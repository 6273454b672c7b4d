package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/proup-app/proup-api/internal/api/dto"
	"github.com/proup-app/proup-api/internal/api/middleware"
	"github.com/proup-app/proup-api/internal/domain/comment"
	"go.uber.org/zap"
)

type CommentHandler struct {
	service comment.Service
	logger  *zap.Logger
}

func NewCommentHandler(service comment.Service, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{service: service, logger: logger}
}

// AddComment handles POST /api/tasks/:id/comments
func (h *CommentHandler) AddComment(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		unauthorized(c)
		return
	}
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task ID"})
		return
	}
	req, ok := middleware.Validated[dto.CreateCommentRequest](c)
	if !ok {
		invalidBody(c)
		return
	}

	created, err := h.service.AddComment(c.Request.Context(), taskID, userID, req.Content)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": created})
}

// ListComments handles GET /api/tasks/:id/comments
func (h *CommentHandler) ListComments(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		unauthorized(c)
		return
	}
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task ID"})
		return
	}

	comments, err := h.service.ListComments(c.Request.Context(), taskID, userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if comments == nil {
		comments = []comment.Comment{}
	}

	c.JSON(http.StatusOK, gin.H{"data": comments})
}
