package comment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/proup-app/proup-api/internal/domain/activity"
	"github.com/proup-app/proup-api/internal/infrastructure/persistence/postgres/connection"
)

type Repository interface {
	Create(ctx context.Context, comment *Comment) error
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]Comment, error)
	CountForProjects(ctx context.Context, projectIDs []uuid.UUID, from, to time.Time) (int64, error)
}

type repository struct {
	db *connection.Database
}

func NewRepository(db *connection.Database) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, comment *Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *repository) ListByTask(ctx context.Context, taskID uuid.UUID) ([]Comment, error) {
	var comments []Comment
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

func (r *repository) CountForProjects(ctx context.Context, projectIDs []uuid.UUID, from, to time.Time) (int64, error) {
	if len(projectIDs) == 0 {
		return 0, nil
	}
	db := r.db.WithContext(ctx)
	var count int64
	err := db.
		Model(&Comment{}).
		Where("task_id IN (?)", activity.LiveTaskIDs(db, projectIDs)).
		Where("created_at >= ? AND created_at <= ?", from.UTC(), to.UTC()).
		Count(&count).Error
	return count, err
}
