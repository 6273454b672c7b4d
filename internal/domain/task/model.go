package task

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "inprogress"
	TaskStatusDone       TaskStatus = "done"
)

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Common errors
var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidStatus    = errors.New("invalid task status")
	ErrInvalidPriority  = errors.New("invalid task priority")
	ErrInvalidCreator   = errors.New("invalid creator ID")
	ErrTaskAccessDenied = errors.New("task access denied")
)

// Task represents a task in the system
type Task struct {
	ID           uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	Title        string         `json:"title" gorm:"type:varchar(255);not null"`
	Description  string         `json:"description" gorm:"type:text"`
	Status       TaskStatus     `json:"status" gorm:"type:varchar(16);not null;default:'todo';index:idx_task_status"`
	Priority     TaskPriority   `json:"priority" gorm:"type:varchar(16);not null;default:'medium';index:idx_task_priority"`
	AssignedUser *uuid.UUID     `json:"assignedUser,omitempty" gorm:"column:assigned_user_id;type:uuid;index:idx_task_assignee"`
	DueDate      *time.Time     `json:"dueDate,omitempty" gorm:"index:idx_task_due"`
	ProjectID    *uuid.UUID     `json:"projectId,omitempty" gorm:"type:uuid;index:idx_task_project"`
	CreatorID    uuid.UUID      `json:"creatorId" gorm:"type:uuid;not null;index:idx_task_creator"`
	CreatedAt    time.Time      `json:"createdAt" gorm:"not null;index:idx_task_created"`
	UpdatedAt    time.Time      `json:"updatedAt" gorm:"not null"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

func (t TaskStatus) IsValid() bool {
	switch t {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

func (t TaskPriority) IsValid() bool {
	switch t {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// TableName specifies the table name for the Task model
func (Task) TableName() string {
	return "tasks"
}

// Validate checks if the task data is valid
func (t *Task) Validate() error {
	if t.Title == "" {
		return ErrInvalidInput
	}
	if !t.Status.IsValid() {
		return ErrInvalidStatus
	}
	if !t.Priority.IsValid() {
		return ErrInvalidPriority
	}
	if t.CreatorID == uuid.Nil {
		return ErrInvalidCreator
	}
	return nil
}

// BeforeCreate is called before creating a new task record
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Status == "" {
		t.Status = TaskStatusTodo
	}
	if t.Priority == "" {
		t.Priority = TaskPriorityMedium
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	t.UpdatedAt = t.CreatedAt
	return t.Validate()
}

// BeforeUpdate is called before updating a task record
func (t *Task) BeforeUpdate(tx *gorm.DB) error {
	t.UpdatedAt = time.Now().UTC()
	return t.Validate()
}

// IsPersonal reports whether the task belongs to no project.
func (t *Task) IsPersonal() bool {
	return t.ProjectID == nil
}

// DueDateKey renders the due date as YYYY-MM-DD, or "" when unset.
func (t *Task) DueDateKey() string {
	return formatDate(t.DueDate)
}

func formatDate(d *time.Time) string {
	if d == nil {
		return ""
	}
	return d.UTC().Format("2006-01-02")
}

func formatUUID(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}
