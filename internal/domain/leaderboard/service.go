package leaderboard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/proup-app/proup-api/internal/domain/activity"
	"github.com/proup-app/proup-api/internal/domain/project"
	"go.uber.org/zap"
)

type CompletionSource interface {
	CompletionsForProject(ctx context.Context, projectID uuid.UUID, since time.Time) ([]activity.Completion, error)
}

type ProjectAccess interface {
	MemberRole(ctx context.Context, projectID, userID uuid.UUID) (project.Role, error)
}

type NameResolver interface {
	DisplayNames(ctx context.Context, ids []string) (map[string]string, error)
}

// Response is the leaderboard for one project as of Today.
type Response struct {
	ProjectID   uuid.UUID `json:"projectId"`
	Today       string    `json:"today"`
	Leaderboard []Row     `json:"leaderboard"`
}

type Service interface {
	// GetLeaderboard fails with project.ErrProjectNotFound or
	// project.ErrAccessDenied when the caller cannot see the project.
	GetLeaderboard(ctx context.Context, projectID, userID uuid.UUID) (*Response, error)
}

type service struct {
	completions CompletionSource
	projects    ProjectAccess
	names       NameResolver
	logger      *zap.Logger
	now         func() time.Time
}

type Option func(*service)

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

func NewService(completions CompletionSource, projects ProjectAccess, names NameResolver, logger *zap.Logger, opts ...Option) Service {
	s := &service{
		completions: completions,
		projects:    projects,
		names:       names,
		logger:      logger,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) GetLeaderboard(ctx context.Context, projectID, userID uuid.UUID) (*Response, error) {
	if _, err := s.projects.MemberRole(ctx, projectID, userID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	completions, err := s.completions.CompletionsForProject(ctx, projectID, Since(now))
	if err != nil {
		s.logger.Error("Failed to load completions",
			zap.String("project_id", projectID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	rows := Compute(completions, now)
	if len(rows) > 0 {
		ids := make([]string, len(rows))
		for i := range rows {
			ids[i] = rows[i].UserID
		}
		names, err := s.names.DisplayNames(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i := range rows {
			rows[i].Name = names[rows[i].UserID]
			if rows[i].Name == "" {
				rows[i].Name = rows[i].UserID
			}
		}
	}

	return &Response{
		ProjectID:   projectID,
		Today:       DateKey(now),
		Leaderboard: rows,
	}, nil
}
