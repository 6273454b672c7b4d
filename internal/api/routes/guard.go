package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/proup-app/proup-api/internal/api/middleware"
)

// Guard is the middleware shared by every protected route group.
type Guard struct {
	Auth       gin.HandlerFunc
	RateLimit  gin.HandlerFunc
	Validation *middleware.ValidationMiddleware
}

// chain returns auth first so the rate limiter can key on the user.
func (g Guard) chain() []gin.HandlerFunc {
	handlers := []gin.HandlerFunc{g.Auth}
	if g.RateLimit != nil {
		handlers = append(handlers, g.RateLimit)
	}
	return handlers
}
