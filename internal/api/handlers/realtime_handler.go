package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/proup-app/proup-api/internal/api/middleware"
	"github.com/proup-app/proup-api/internal/realtime"
	"go.uber.org/zap"
)

// RealtimeHandler upgrades authenticated requests to WebSocket connections
// served by the hub.
type RealtimeHandler struct {
	hub      *realtime.Hub
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewRealtimeHandler accepts any origin when allowedOrigins contains "*".
func NewRealtimeHandler(hub *realtime.Hub, allowedOrigins []string, logger *zap.Logger) *RealtimeHandler {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	return &RealtimeHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origins["*"] || origins[origin]
			},
		},
		logger: logger,
	}
}

// Connect handles GET /ws
func (h *RealtimeHandler) Connect(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		unauthorized(c)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	h.hub.Serve(conn, userID)
}
