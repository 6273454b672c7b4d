package task

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/proup-app/proup-api/internal/domain/activity"
	"github.com/proup-app/proup-api/internal/infrastructure/persistence/postgres/connection"
	"gorm.io/gorm"
)

// TaskFilter defines filtering options for tasks
type TaskFilter struct {
	// ProjectIDs limits results to these projects.
	ProjectIDs []uuid.UUID
	// PersonalFor additionally includes project-less tasks created by or
	// assigned to this user.
	PersonalFor *uuid.UUID
	Status      *TaskStatus
	Priority    *TaskPriority
	AssigneeID  *uuid.UUID
	Page        int
	PageSize    int
}

// TaskRepository defines the interface for task persistence operations.
// Writes that change tracked fields carry their activity rows so both land
// in one transaction.
type TaskRepository interface {
	Create(ctx context.Context, task *Task, logs ...*activity.Log) error
	FindByID(ctx context.Context, id uuid.UUID) (*Task, error)
	FindAll(ctx context.Context, filter TaskFilter) ([]Task, int64, error)
	FindByProjects(ctx context.Context, projectIDs []uuid.UUID) ([]Task, error)
	Update(ctx context.Context, task *Task, logs ...*activity.Log) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type taskRepository struct {
	db *connection.Database
}

func NewRepository(db *connection.Database) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *Task, logs ...*activity.Log) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(task).Error; err != nil {
			return err
		}
		txDB := &connection.Database{DB: tx}
		return activity.NewRepository(txDB).Append(ctx, logs...)
	})
}

func (r *taskRepository) FindByID(ctx context.Context, id uuid.UUID) (*Task, error) {
	var task Task
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&task)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, result.Error
	}
	return &task, nil
}

func (r *taskRepository) FindAll(ctx context.Context, filter TaskFilter) ([]Task, int64, error) {
	var tasks []Task
	var total int64

	query := r.db.WithContext(ctx).Model(&Task{})

	switch {
	case len(filter.ProjectIDs) > 0 && filter.PersonalFor != nil:
		query = query.Where(
			"project_id IN ? OR (project_id IS NULL AND (creator_id = ? OR assigned_user_id = ?))",
			filter.ProjectIDs, *filter.PersonalFor, *filter.PersonalFor,
		)
	case len(filter.ProjectIDs) > 0:
		query = query.Where("project_id IN ?", filter.ProjectIDs)
	case filter.PersonalFor != nil:
		query = query.Where(
			"project_id IS NULL AND (creator_id = ? OR assigned_user_id = ?)",
			*filter.PersonalFor, *filter.PersonalFor,
		)
	default:
		return []Task{}, 0, nil
	}

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("priority = ?", *filter.Priority)
	}
	if filter.AssigneeID != nil {
		query = query.Where("assigned_user_id = ?", *filter.AssigneeID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}
	if filter.Page < 0 {
		filter.Page = 0
	}

	err := query.
		Order("created_at DESC").
		Offset(filter.Page * filter.PageSize).
		Limit(filter.PageSize).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

func (r *taskRepository) FindByProjects(ctx context.Context, projectIDs []uuid.UUID) ([]Task, error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}
	var tasks []Task
	err := r.db.WithContext(ctx).
		Where("project_id IN ?", projectIDs).
		Order("created_at ASC").
		Find(&tasks).Error
	return tasks, err
}

func (r *taskRepository) Update(ctx context.Context, task *Task, logs ...*activity.Log) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(task).Error; err != nil {
			return err
		}
		txDB := &connection.Database{DB: tx}
		return activity.NewRepository(txDB).Append(ctx, logs...)
	})
}

// Delete soft-deletes the task. Its activity rows stay in place.
func (r *taskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Task{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}
