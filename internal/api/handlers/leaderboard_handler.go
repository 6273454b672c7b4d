package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/proup-app/proup-api/internal/api/middleware"
	"github.com/proup-app/proup-api/internal/domain/leaderboard"
	"go.uber.org/zap"
)

type LeaderboardHandler struct {
	service leaderboard.Service
	logger  *zap.Logger
}

func NewLeaderboardHandler(service leaderboard.Service, logger *zap.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{service: service, logger: logger}
}

// GetLeaderboard handles GET /api/projects/:id/leaderboard. The response
// is not wrapped so clients receive { projectId, today, leaderboard }.
func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		unauthorized(c)
		return
	}
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project ID"})
		return
	}

	start := time.Now()
	resp, err := h.service.GetLeaderboard(c.Request.Context(), projectID, userID)
	observeAnalytics("leaderboard", start, err)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
