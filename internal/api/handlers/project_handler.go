package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/proup-app/proup-api/internal/api/dto"
	"github.com/proup-app/proup-api/internal/api/middleware"
	"github.com/proup-app/proup-api/internal/domain/project"
	"go.uber.org/zap"
)

// ProjectHandler handles HTTP requests for projects and their members
type ProjectHandler struct {
	service project.Service
	logger  *zap.Logger
}

func NewProjectHandler(service project.Service, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{service: service, logger: logger}
}

// CreateProject handles POST /api/projects. The caller becomes the owner.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		unauthorized(c)
		return
	}
	req, ok := middleware.Validated[dto.CreateProjectRequest](c)
	if !ok {
		invalidBody(c)
		return
	}

	created, err := h.service.CreateProject(c.Request.Context(), project.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     userID,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": created})
}

// ListProjects handles GET /api/projects
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		unauthorized(c)
		return
	}

	projects, err := h.service.ListProjectsForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if projects == nil {
		projects = []project.Project{}
	}

	c.JSON(http.StatusOK, gin.H{"data": projects})
}

// GetProject handles GET /api/projects/:id
func (h *ProjectHandler) GetProject(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		unauthorized(c)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project ID"})
		return
	}

	p, err := h.service.GetProject(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": p})
}

// ListMembers handles GET /api/projects/:id/members
func (h *ProjectHandler) ListMembers(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		unauthorized(c)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project ID"})
		return
	}

	members, err := h.service.ListMembers(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if members == nil {
		members = []project.Member{}
	}

	c.JSON(http.StatusOK, gin.H{"data": members})
}

// AddMember handles POST /api/projects/:id/members
func (h *ProjectHandler) AddMember(c *gin.Context) {
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		unauthorized(c)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project ID"})
		return
	}
	req, ok := middleware.Validated[dto.AddMemberRequest](c)
	if !ok {
		invalidBody(c)
		return
	}

	member, err := h.service.AddMember(c.Request.Context(), id, actorID, project.AddMemberInput{
		UserID: req.UserID,
		Role:   project.Role(req.Role),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": member})
}

// RemoveMember handles DELETE /api/projects/:id/members/:userId
func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		unauthorized(c)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project ID"})
		return
	}
	memberID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID"})
		return
	}

	if err := h.service.RemoveMember(c.Request.Context(), id, actorID, memberID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}
