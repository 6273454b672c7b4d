package comment

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/proup-app/proup-api/internal/domain/events"
	"github.com/proup-app/proup-api/internal/domain/task"
	"go.uber.org/zap"
)

// TaskReader loads a task on behalf of a user, enforcing read access.
type TaskReader interface {
	GetTask(ctx context.Context, id, userID uuid.UUID) (*task.Task, error)
}

type Service interface {
	AddComment(ctx context.Context, taskID, userID uuid.UUID, content string) (*Comment, error)
	ListComments(ctx context.Context, taskID, userID uuid.UUID) ([]Comment, error)
}

type service struct {
	repo      Repository
	tasks     TaskReader
	publisher events.Publisher
	logger    *zap.Logger
}

func NewService(repo Repository, tasks TaskReader, publisher events.Publisher, logger *zap.Logger) Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &service{repo: repo, tasks: tasks, publisher: publisher, logger: logger}
}

func (s *service) AddComment(ctx context.Context, taskID, userID uuid.UUID, content string) (*Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrInvalidInput
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return nil, ErrCommentTooLong
	}

	// Commenting only needs read access, viewers included.
	if _, err := s.tasks.GetTask(ctx, taskID, userID); err != nil {
		return nil, err
	}

	c := &Comment{TaskID: taskID, UserID: userID, Content: content}
	if err := s.repo.Create(ctx, c); err != nil {
		s.logger.Error("Failed to create comment", zap.Error(err))
		return nil, err
	}

	s.publisher.Publish(ctx, events.New(events.EventCommentCreated, events.TaskRoom(taskID), c))
	return c, nil
}

func (s *service) ListComments(ctx context.Context, taskID, userID uuid.UUID) ([]Comment, error) {
	if _, err := s.tasks.GetTask(ctx, taskID, userID); err != nil {
		return nil, err
	}
	return s.repo.ListByTask(ctx, taskID)
}
