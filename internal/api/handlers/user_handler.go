package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/proup-app/proup-api/internal/api/dto"
	"github.com/proup-app/proup-api/internal/api/middleware"
	"github.com/proup-app/proup-api/internal/domain/user"
	"go.uber.org/zap"
)

type UserHandler struct {
	service user.Service
	logger  *zap.Logger
}

func NewUserHandler(service user.Service, logger *zap.Logger) *UserHandler {
	return &UserHandler{service: service, logger: logger}
}

// GetMe handles GET /api/users/me
func (h *UserHandler) GetMe(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		unauthorized(c)
		return
	}

	u, err := h.service.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": u})
}

// UpsertMe handles PUT /api/users/me. The email defaults to the token's
// email claim.
func (h *UserHandler) UpsertMe(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		unauthorized(c)
		return
	}
	req, ok := middleware.Validated[dto.UpsertProfileRequest](c)
	if !ok {
		invalidBody(c)
		return
	}

	email := req.Email
	if email == "" {
		email = middleware.GetEmail(c)
	}

	u, err := h.service.UpsertProfile(c.Request.Context(), userID, user.UpsertProfileInput{
		Name:  req.Name,
		Email: email,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": u})
}
