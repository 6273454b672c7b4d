package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/proup-app/proup-api/internal/domain/comment"
	"github.com/proup-app/proup-api/internal/domain/project"
	"github.com/proup-app/proup-api/internal/domain/retrospective"
	"github.com/proup-app/proup-api/internal/domain/task"
	"github.com/proup-app/proup-api/internal/domain/user"
	"go.uber.org/zap"
)

var (
	badRequestErrors = []error{
		task.ErrInvalidInput,
		task.ErrInvalidStatus,
		task.ErrInvalidPriority,
		task.ErrInvalidCreator,
		project.ErrInvalidInput,
		project.ErrInvalidRole,
		project.ErrCannotRemoveOwner,
		project.ErrOwnerMembership,
		comment.ErrInvalidInput,
		comment.ErrCommentTooLong,
		user.ErrInvalidInput,
		retrospective.ErrInvalidDate,
		retrospective.ErrInvalidRange,
	}
	forbiddenErrors = []error{
		task.ErrTaskAccessDenied,
		project.ErrAccessDenied,
	}
	notFoundErrors = []error{
		task.ErrTaskNotFound,
		project.ErrProjectNotFound,
		project.ErrMemberNotFound,
		user.ErrUserNotFound,
	}
)

func statusFor(err error) int {
	for _, group := range []struct {
		status int
		errs   []error
	}{
		{http.StatusBadRequest, badRequestErrors},
		{http.StatusForbidden, forbiddenErrors},
		{http.StatusNotFound, notFoundErrors},
	} {
		for _, target := range group.errs {
			if errors.Is(err, target) {
				return group.status
			}
		}
	}
	return http.StatusInternalServerError
}

// respondError maps domain errors to their status codes. Anything else is
// logged and reported as a generic 500.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.String("method", c.Request.Method),
			zap.Error(err),
		)
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
}

func invalidBody(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
}
