package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/proup-app/proup-api/internal/api/handlers"
)

// RealtimeRoutes registers the WebSocket endpoint. Its auth middleware must
// accept the token query parameter since browsers cannot set headers on
// WebSocket requests.
type RealtimeRoutes struct {
	handler *handlers.RealtimeHandler
	auth    gin.HandlerFunc
}

func NewRealtimeRoutes(handler *handlers.RealtimeHandler, auth gin.HandlerFunc) *RealtimeRoutes {
	return &RealtimeRoutes{handler: handler, auth: auth}
}

func (r *RealtimeRoutes) RegisterRoutes(router *gin.Engine) {
	router.GET("/ws", r.auth, r.handler.Connect)
}
