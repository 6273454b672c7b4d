package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateTaskRequest is the body of POST /api/tasks. dueDate accepts
// YYYY-MM-DD or an RFC3339 timestamp.
type CreateTaskRequest struct {
	Title        string     `json:"title" validate:"required,not_empty,max=255"`
	Description  string     `json:"description" validate:"max=10000"`
	Status       string     `json:"status" validate:"omitempty,oneof=todo inprogress done"`
	Priority     string     `json:"priority" validate:"omitempty,oneof=low medium high"`
	AssignedUser *uuid.UUID `json:"assignedUser,omitempty"`
	DueDate      *string    `json:"dueDate,omitempty"`
	ProjectID    *uuid.UUID `json:"projectId,omitempty"`
}

// UpdateTaskRequest is the body of PUT /api/tasks/:id. Absent fields are
// left unchanged; an explicit null clears assignedUser or dueDate.
type UpdateTaskRequest struct {
	Title        *string      `json:"title,omitempty" validate:"omitempty,not_empty,max=255"`
	Description  *string      `json:"description,omitempty" validate:"omitempty,max=10000"`
	Status       *string      `json:"status,omitempty" validate:"omitempty,oneof=todo inprogress done"`
	Priority     *string      `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	AssignedUser OptionalUUID `json:"assignedUser"`
	DueDate      Optional     `json:"dueDate"`
}

type TaskResponse struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Status       string     `json:"status"`
	Priority     string     `json:"priority"`
	AssignedUser *uuid.UUID `json:"assignedUser"`
	DueDate      *string    `json:"dueDate"`
	ProjectID    *uuid.UUID `json:"projectId"`
	CreatorID    uuid.UUID  `json:"creatorId"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// TaskListResponse represents a paginated list of tasks with metadata
type TaskListResponse struct {
	Tasks      []TaskResponse `json:"tasks"`
	TotalCount int64          `json:"totalCount"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
}

// TaskFilterRequest represents the query parameters for filtering tasks
type TaskFilterRequest struct {
	ProjectID  string `form:"projectId" validate:"omitempty,uuid"`
	Status     string `form:"status" validate:"omitempty,oneof=todo inprogress done"`
	Priority   string `form:"priority" validate:"omitempty,oneof=low medium high"`
	AssigneeID string `form:"assigneeId" validate:"omitempty,uuid"`
	Page       int    `form:"page" validate:"gte=0"`
	PageSize   int    `form:"pageSize" validate:"gte=0,lte=200"`
}

type ActivityResponse struct {
	ID         uuid.UUID `json:"id"`
	TaskID     uuid.UUID `json:"taskId"`
	UserID     string    `json:"userId"`
	ActionType string    `json:"actionType"`
	FieldName  string    `json:"fieldName"`
	OldValue   string    `json:"oldValue"`
	NewValue   string    `json:"newValue"`
	Timestamp  time.Time `json:"timestamp"`
}
