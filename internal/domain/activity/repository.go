package activity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/proup-app/proup-api/internal/infrastructure/persistence/postgres/connection"
	"gorm.io/gorm"
)

// Repository persists the activity log. Rows are never updated or deleted.
type Repository interface {
	Append(ctx context.Context, logs ...*Log) error
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]Log, error)
	CompletionsForProject(ctx context.Context, projectID uuid.UUID, since time.Time) ([]Completion, error)
	ListForProjects(ctx context.Context, projectIDs []uuid.UUID, from, to time.Time) ([]Log, error)
}

type repository struct {
	db *connection.Database
}

func NewRepository(db *connection.Database) Repository {
	return &repository{db: db}
}

func (r *repository) Append(ctx context.Context, logs ...*Log) error {
	if len(logs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(logs).Error
}

func (r *repository) ListByTask(ctx context.Context, taskID uuid.UUID) ([]Log, error) {
	var logs []Log
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("timestamp ASC").
		Find(&logs).Error
	return logs, err
}

func (r *repository) CompletionsForProject(ctx context.Context, projectID uuid.UUID, since time.Time) ([]Completion, error) {
	var completions []Completion
	err := r.db.WithContext(ctx).
		Model(&Log{}).
		Select("activity_logs.task_id, activity_logs.user_id, activity_logs.timestamp").
		Joins("JOIN tasks ON tasks.id = activity_logs.task_id").
		Where("tasks.project_id = ? AND tasks.deleted_at IS NULL", projectID).
		Where("activity_logs.field_name = ? AND activity_logs.new_value = ?", FieldStatus, StatusDone).
		Where("activity_logs.timestamp >= ?", since.UTC()).
		Order("activity_logs.timestamp ASC").
		Scan(&completions).Error
	return completions, err
}

// ListForProjects returns the rows in [from, to] of every live task in the
// given projects. Tasks are selected by subquery so the bind-parameter count
// stays bounded by the number of projects.
func (r *repository) ListForProjects(ctx context.Context, projectIDs []uuid.UUID, from, to time.Time) ([]Log, error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}
	db := r.db.WithContext(ctx)
	var logs []Log
	err := db.
		Where("task_id IN (?)", LiveTaskIDs(db, projectIDs)).
		Where("timestamp >= ? AND timestamp <= ?", from.UTC(), to.UTC()).
		Order("timestamp ASC").
		Find(&logs).Error
	return logs, err
}

// LiveTaskIDs is a subquery selecting the ids of non-deleted tasks in
// projectIDs.
func LiveTaskIDs(db *gorm.DB, projectIDs []uuid.UUID) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true}).
		Table("tasks").
		Select("id").
		Where("project_id IN ? AND deleted_at IS NULL", projectIDs)
}
