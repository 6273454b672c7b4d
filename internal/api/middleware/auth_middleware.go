package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/proup-app/proup-api/pkg/logger"
	"github.com/proup-app/proup-api/pkg/security/auth"
	"go.uber.org/zap"
)

const (
	bearerSchema = "Bearer "

	contextUserID = "user_id"
	contextEmail  = "email"
)

// TokenValidator checks a bearer token and returns its claims.
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// NewAuthMiddleware requires a valid bearer token in the Authorization
// header. When allowQueryToken is set, a "token" query parameter is accepted
// as well, for WebSocket clients that cannot set headers.
func NewAuthMiddleware(validator TokenValidator, log *logger.Logger, allowQueryToken bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := extractToken(c, allowQueryToken)
		if !ok {
			log.Debug("Missing bearer token", zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header is required"})
			return
		}

		claims, err := validator.ValidateToken(tokenString)
		if err != nil {
			log.Warn("Token validation failed",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(contextUserID, claims.UserID)
		c.Set(contextEmail, claims.Email)
		c.Next()
	}
}

func extractToken(c *gin.Context, allowQueryToken bool) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		if !strings.HasPrefix(authHeader, bearerSchema) {
			return "", false
		}
		token := strings.TrimSpace(authHeader[len(bearerSchema):])
		return token, token != ""
	}
	if allowQueryToken {
		if token := c.Query("token"); token != "" {
			return token, true
		}
	}
	return "", false
}

// GetUserID retrieves the authenticated user's ID from the context
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(contextUserID)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := userID.(uuid.UUID)
	return id, ok
}

// GetEmail returns the email claim of the authenticated user, if any.
func GetEmail(c *gin.Context) string {
	return c.GetString(contextEmail)
}
