package retrospective

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/proup-app/proup-api/internal/domain/activity"
	"github.com/proup-app/proup-api/internal/domain/project"
	"github.com/proup-app/proup-api/internal/domain/task"
	"go.uber.org/zap"
)

type ProjectSource interface {
	AccessibleProjectIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	ProjectsByIDs(ctx context.Context, ids []uuid.UUID) ([]project.Project, error)
}

type TaskSource interface {
	FindByProjects(ctx context.Context, projectIDs []uuid.UUID) ([]task.Task, error)
}

type ActivitySource interface {
	ListForProjects(ctx context.Context, projectIDs []uuid.UUID, from, to time.Time) ([]activity.Log, error)
}

type CommentCounter interface {
	CountForProjects(ctx context.Context, projectIDs []uuid.UUID, from, to time.Time) (int64, error)
}

type Query struct {
	Range     Range
	ProjectID *uuid.UUID
	UserID    uuid.UUID
}

type Service interface {
	// GetRetrospective aggregates the caller's accessible projects, or the
	// single requested one. A project the caller cannot see yields an empty
	// result rather than an error.
	GetRetrospective(ctx context.Context, q Query) (*Result, error)
}

type service struct {
	projects ProjectSource
	tasks    TaskSource
	logs     ActivitySource
	comments CommentCounter
	logger   *zap.Logger
}

func NewService(projects ProjectSource, tasks TaskSource, logs ActivitySource, comments CommentCounter, logger *zap.Logger) Service {
	return &service{projects: projects, tasks: tasks, logs: logs, comments: comments, logger: logger}
}

func (s *service) GetRetrospective(ctx context.Context, q Query) (*Result, error) {
	ids, err := s.projects.AccessibleProjectIDs(ctx, q.UserID)
	if err != nil {
		return nil, err
	}
	if q.ProjectID != nil {
		ids = intersect(ids, *q.ProjectID)
	}
	if len(ids) == 0 {
		return Aggregate(q.Range, Dataset{}), nil
	}

	var data Dataset
	if data.Projects, err = s.projects.ProjectsByIDs(ctx, ids); err != nil {
		return nil, err
	}
	if data.Tasks, err = s.tasks.FindByProjects(ctx, ids); err != nil {
		return nil, err
	}

	if data.Logs, err = s.logs.ListForProjects(ctx, ids, q.Range.From, q.Range.To); err != nil {
		return nil, err
	}
	if data.CommentCount, err = s.comments.CountForProjects(ctx, ids, q.Range.From, q.Range.To); err != nil {
		return nil, err
	}

	s.logger.Debug("Retrospective data loaded",
		zap.String("user_id", q.UserID.String()),
		zap.Int("projects", len(data.Projects)),
		zap.Int("tasks", len(data.Tasks)),
		zap.Int("logs", len(data.Logs)),
	)

	return Aggregate(q.Range, data), nil
}

func intersect(ids []uuid.UUID, want uuid.UUID) []uuid.UUID {
	for _, id := range ids {
		if id == want {
			return []uuid.UUID{want}
		}
	}
	return nil
}
