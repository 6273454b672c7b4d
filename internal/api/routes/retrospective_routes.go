package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/proup-app/proup-api/internal/api/dto"
	"github.com/proup-app/proup-api/internal/api/handlers"
)

type RetrospectiveRoutes struct {
	handler *handlers.RetrospectiveHandler
	guard   Guard
}

func NewRetrospectiveRoutes(handler *handlers.RetrospectiveHandler, guard Guard) *RetrospectiveRoutes {
	return &RetrospectiveRoutes{handler: handler, guard: guard}
}

func (r *RetrospectiveRoutes) RegisterRoutes(router *gin.Engine) {
	retro := router.Group("/api/retrospective")
	retro.Use(r.guard.chain()...)

	retro.GET("/data", r.guard.Validation.ValidateQuery(&dto.RetrospectiveQuery{}), r.handler.GetData)
	retro.POST("/insights", r.guard.Validation.ValidateRequest(&dto.InsightsRequest{}), r.handler.GenerateInsights)
}
