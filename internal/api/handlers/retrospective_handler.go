package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/proup-app/proup-api/internal/api/dto"
	"github.com/proup-app/proup-api/internal/api/middleware"
	"github.com/proup-app/proup-api/internal/domain/insights"
	"github.com/proup-app/proup-api/internal/domain/retrospective"
	"go.uber.org/zap"
)

type RetrospectiveHandler struct {
	service retrospective.Service
	logger  *zap.Logger
}

func NewRetrospectiveHandler(service retrospective.Service, logger *zap.Logger) *RetrospectiveHandler {
	return &RetrospectiveHandler{service: service, logger: logger}
}

// GetData handles GET /api/retrospective/data?from=&to=&projectId=
// A caller with no accessible projects gets 200 with the regular result
// shape: zeroed summary and empty lists.
func (h *RetrospectiveHandler) GetData(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		unauthorized(c)
		return
	}

	var q dto.RetrospectiveQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}
	query, ok := h.buildQuery(c, userID, q.From, q.To, q.ProjectID)
	if !ok {
		return
	}

	start := time.Now()
	result, err := h.service.GetRetrospective(c.Request.Context(), query)
	observeAnalytics("retrospective", start, err)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GenerateInsights handles POST /api/retrospective/insights: it aggregates
// the range and runs the insight rules over the summary and the supplied
// mood and focus data.
func (h *RetrospectiveHandler) GenerateInsights(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		unauthorized(c)
		return
	}
	req, ok := middleware.Validated[dto.InsightsRequest](c)
	if !ok {
		invalidBody(c)
		return
	}

	projectID := ""
	if req.ProjectID != nil {
		projectID = req.ProjectID.String()
	}
	query, ok := h.buildQuery(c, userID, req.From, req.To, projectID)
	if !ok {
		return
	}

	start := time.Now()
	result, err := h.service.GetRetrospective(c.Request.Context(), query)
	observeAnalytics("insights", start, err)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	generated := insights.Generate(insights.FromRetrospective(result, req.MoodEntries(), req.Sessions()))
	c.JSON(http.StatusOK, dto.InsightsResponse{
		Retrospective: result,
		Insights:      generated,
	})
}

func (h *RetrospectiveHandler) buildQuery(c *gin.Context, userID uuid.UUID, from, to, projectID string) (retrospective.Query, bool) {
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to are required (YYYY-MM-DD)"})
		return retrospective.Query{}, false
	}
	r, err := retrospective.ParseRange(from, to)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return retrospective.Query{}, false
	}

	query := retrospective.Query{Range: r, UserID: userID}
	if projectID != "" {
		id, err := uuid.Parse(projectID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project ID"})
			return retrospective.Query{}, false
		}
		query.ProjectID = &id
	}
	return query, true
}
