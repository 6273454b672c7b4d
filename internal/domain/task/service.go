package task

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/proup-app/proup-api/internal/domain/activity"
	"github.com/proup-app/proup-api/internal/domain/events"
	"github.com/proup-app/proup-api/internal/domain/project"
	"go.uber.org/zap"
)

// ProjectAccess resolves a caller's standing on projects.
type ProjectAccess interface {
	MemberRole(ctx context.Context, projectID, userID uuid.UUID) (project.Role, error)
	AccessibleProjectIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type CreateTaskInput struct {
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Status       TaskStatus   `json:"status"`
	Priority     TaskPriority `json:"priority"`
	AssignedUser *uuid.UUID   `json:"assignedUser,omitempty"`
	DueDate      *time.Time   `json:"dueDate,omitempty"`
	ProjectID    *uuid.UUID   `json:"projectId,omitempty"`
	CreatorID    uuid.UUID    `json:"creatorId"`
}

// UpdateTaskInput carries a partial update. Nil fields are left unchanged;
// the Clear flags unset nullable fields.
type UpdateTaskInput struct {
	Title             *string       `json:"title,omitempty"`
	Description       *string       `json:"description,omitempty"`
	Status            *TaskStatus   `json:"status,omitempty"`
	Priority          *TaskPriority `json:"priority,omitempty"`
	AssignedUser      *uuid.UUID    `json:"assignedUser,omitempty"`
	ClearAssignedUser bool          `json:"-"`
	DueDate           *time.Time    `json:"dueDate,omitempty"`
	ClearDueDate      bool          `json:"-"`
}

type Service interface {
	CreateTask(ctx context.Context, input CreateTaskInput) (*Task, error)
	GetTask(ctx context.Context, id, userID uuid.UUID) (*Task, error)
	ListTasks(ctx context.Context, userID uuid.UUID, projectID *uuid.UUID, filter TaskFilter) ([]Task, int64, error)
	UpdateTask(ctx context.Context, id, userID uuid.UUID, input UpdateTaskInput) (*Task, error)
	DeleteTask(ctx context.Context, id, userID uuid.UUID) error
	GetTaskActivity(ctx context.Context, id, userID uuid.UUID) ([]activity.Log, error)
}

type service struct {
	repo      TaskRepository
	logs      activity.Repository
	projects  ProjectAccess
	publisher events.Publisher
	logger    *zap.Logger
}

func NewService(repo TaskRepository, logs activity.Repository, projects ProjectAccess, publisher events.Publisher, logger *zap.Logger) Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &service{repo: repo, logs: logs, projects: projects, publisher: publisher, logger: logger}
}

func (s *service) CreateTask(ctx context.Context, input CreateTaskInput) (*Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrInvalidInput
	}
	if input.CreatorID == uuid.Nil {
		return nil, ErrInvalidCreator
	}
	if input.Status == "" {
		input.Status = TaskStatusTodo
	}
	if !input.Status.IsValid() {
		return nil, ErrInvalidStatus
	}
	if input.Priority == "" {
		input.Priority = TaskPriorityMedium
	}
	if !input.Priority.IsValid() {
		return nil, ErrInvalidPriority
	}

	if input.ProjectID != nil {
		if err := s.requireProjectRole(ctx, *input.ProjectID, input.CreatorID, project.RoleMember); err != nil {
			return nil, err
		}
	}

	task := &Task{
		Title:        title,
		Description:  input.Description,
		Status:       input.Status,
		Priority:     input.Priority,
		AssignedUser: input.AssignedUser,
		DueDate:      normalizeDate(input.DueDate),
		ProjectID:    input.ProjectID,
		CreatorID:    input.CreatorID,
	}
	task.ID = uuid.New()

	created := activity.NewCreatedRow(task.ID, input.CreatorID.String())
	if err := s.repo.Create(ctx, task, &created); err != nil {
		s.logger.Error("Failed to create task", zap.Error(err))
		return nil, err
	}

	s.publish(ctx, events.EventTaskCreated, task)
	return task, nil
}

func (s *service) GetTask(ctx context.Context, id, userID uuid.UUID) (*Task, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, task, userID, project.RoleViewer); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *service) ListTasks(ctx context.Context, userID uuid.UUID, projectID *uuid.UUID, filter TaskFilter) ([]Task, int64, error) {
	if projectID != nil {
		if err := s.requireProjectRole(ctx, *projectID, userID, project.RoleViewer); err != nil {
			return nil, 0, err
		}
		filter.ProjectIDs = []uuid.UUID{*projectID}
		filter.PersonalFor = nil
		return s.repo.FindAll(ctx, filter)
	}

	accessible, err := s.projects.AccessibleProjectIDs(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	filter.ProjectIDs = accessible
	filter.PersonalFor = &userID
	return s.repo.FindAll(ctx, filter)
}

func (s *service) UpdateTask(ctx context.Context, id, userID uuid.UUID, input UpdateTaskInput) (*Task, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, task, userID, project.RoleMember); err != nil {
		return nil, err
	}

	actor := userID.String()
	oldStatus := task.Status
	var changes []*activity.Log
	record := func(field, oldValue, newValue string) {
		row := activity.NewFieldChangeRow(task.ID, actor, field, oldValue, newValue)
		changes = append(changes, &row)
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrInvalidInput
		}
		task.Title = title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil && *input.Status != task.Status {
		if !input.Status.IsValid() {
			return nil, ErrInvalidStatus
		}
		record(activity.FieldStatus, string(task.Status), string(*input.Status))
		task.Status = *input.Status
	}
	if input.Priority != nil && *input.Priority != task.Priority {
		if !input.Priority.IsValid() {
			return nil, ErrInvalidPriority
		}
		record(activity.FieldPriority, string(task.Priority), string(*input.Priority))
		task.Priority = *input.Priority
	}

	newAssignee := task.AssignedUser
	if input.ClearAssignedUser {
		newAssignee = nil
	} else if input.AssignedUser != nil {
		newAssignee = input.AssignedUser
	}
	if oldValue, newValue := formatUUID(task.AssignedUser), formatUUID(newAssignee); oldValue != newValue {
		record(activity.FieldAssignedUser, oldValue, newValue)
		task.AssignedUser = newAssignee
	}

	newDue := task.DueDate
	if input.ClearDueDate {
		newDue = nil
	} else if input.DueDate != nil {
		newDue = normalizeDate(input.DueDate)
	}
	if oldValue, newValue := formatDate(task.DueDate), formatDate(newDue); oldValue != newValue {
		record(activity.FieldDueDate, oldValue, newValue)
		task.DueDate = newDue
	}

	if err := s.repo.Update(ctx, task, changes...); err != nil {
		s.logger.Error("Failed to update task",
			zap.String("task_id", task.ID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	s.publish(ctx, events.EventTaskUpdated, task)
	if oldStatus != TaskStatusDone && task.Status == TaskStatusDone {
		s.publish(ctx, events.EventTaskCompleted, task)
	}
	return task, nil
}

func (s *service) DeleteTask(ctx context.Context, id, userID uuid.UUID) error {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, task, userID, project.RoleMember); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, events.EventTaskDeleted, task)
	return nil
}

func (s *service) GetTaskActivity(ctx context.Context, id, userID uuid.UUID) ([]activity.Log, error) {
	if _, err := s.GetTask(ctx, id, userID); err != nil {
		return nil, err
	}
	return s.logs.ListByTask(ctx, id)
}

// authorize checks the caller against the task's project, or against the
// creator and assignee for personal tasks.
func (s *service) authorize(ctx context.Context, task *Task, userID uuid.UUID, min project.Role) error {
	if task.IsPersonal() {
		if task.CreatorID == userID || (task.AssignedUser != nil && *task.AssignedUser == userID) {
			return nil
		}
		return ErrTaskAccessDenied
	}
	return s.requireProjectRole(ctx, *task.ProjectID, userID, min)
}

func (s *service) requireProjectRole(ctx context.Context, projectID, userID uuid.UUID, min project.Role) error {
	role, err := s.projects.MemberRole(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, project.ErrAccessDenied) {
			return ErrTaskAccessDenied
		}
		return err
	}
	if !role.AtLeast(min) {
		return ErrTaskAccessDenied
	}
	return nil
}

func (s *service) publish(ctx context.Context, eventType string, task *Task) {
	if task.ProjectID != nil {
		s.publisher.Publish(ctx, events.New(eventType, events.ProjectRoom(*task.ProjectID), task))
	} else {
		s.publisher.Publish(ctx, events.New(eventType, events.UserRoom(task.CreatorID), task))
	}
	if eventType == events.EventTaskUpdated {
		s.publisher.Publish(ctx, events.New(eventType, events.TaskRoom(task.ID), task))
	}
}

// normalizeDate keeps only the UTC calendar date of d.
func normalizeDate(d *time.Time) *time.Time {
	if d == nil {
		return nil
	}
	u := d.UTC()
	day := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return &day
}
