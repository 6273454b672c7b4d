package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/proup-app/proup-api/internal/api/dto"
	"github.com/proup-app/proup-api/internal/api/handlers"
)

type UserRoutes struct {
	handler *handlers.UserHandler
	guard   Guard
}

func NewUserRoutes(handler *handlers.UserHandler, guard Guard) *UserRoutes {
	return &UserRoutes{handler: handler, guard: guard}
}

func (r *UserRoutes) RegisterRoutes(router *gin.Engine) {
	users := router.Group("/api/users")
	users.Use(r.guard.chain()...)

	users.GET("/me", r.handler.GetMe)
	users.PUT("/me", r.guard.Validation.ValidateRequest(&dto.UpsertProfileRequest{}), r.handler.UpsertMe)
}
