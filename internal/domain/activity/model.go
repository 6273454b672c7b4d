package activity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ActionType string

const (
	ActionCreatedTask ActionType = "CREATED_TASK"
	ActionUpdatedTask ActionType = "UPDATED_TASK"
)

// Tracked task fields
const (
	FieldPriority     = "priority"
	FieldStatus       = "status"
	FieldAssignedUser = "assignedUser"
	FieldDueDate      = "dueDate"
)

// StatusDone is the status value that marks a completion event.
const StatusDone = "done"

// SystemUser is the actor recorded for changes not made by a person.
const SystemUser = "system"

// Log is one append-only row of a task's history. UserID is free text so
// that non-user actors can be recorded.
type Log struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primary_key"`
	TaskID     uuid.UUID  `json:"taskId" gorm:"type:uuid;not null;index:idx_activity_task"`
	UserID     string     `json:"userId" gorm:"not null;default:'';index:idx_activity_user"`
	ActionType ActionType `json:"actionType" gorm:"type:varchar(32);not null"`
	FieldName  string     `json:"fieldName" gorm:"type:varchar(64);index:idx_activity_field"`
	OldValue   string     `json:"oldValue"`
	NewValue   string     `json:"newValue"`
	Timestamp  time.Time  `json:"timestamp" gorm:"not null;index:idx_activity_timestamp"`
}

func (Log) TableName() string {
	return "activity_logs"
}

// BeforeCreate is called before inserting a new log row
func (l *Log) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.Timestamp.IsZero() {
		l.Timestamp = time.Now()
	}
	l.Timestamp = l.Timestamp.UTC()
	return nil
}

// IsCompletion reports whether the row moved a task to done.
func (l Log) IsCompletion() bool {
	return l.FieldName == FieldStatus && l.NewValue == StatusDone
}

// NewCreatedRow records the creation of a task.
func NewCreatedRow(taskID uuid.UUID, actor string) Log {
	return Log{
		TaskID:     taskID,
		UserID:     actor,
		ActionType: ActionCreatedTask,
		Timestamp:  time.Now().UTC(),
	}
}

// NewFieldChangeRow records a single tracked field change.
func NewFieldChangeRow(taskID uuid.UUID, actor, field, oldValue, newValue string) Log {
	return Log{
		TaskID:     taskID,
		UserID:     actor,
		ActionType: ActionUpdatedTask,
		FieldName:  field,
		OldValue:   oldValue,
		NewValue:   newValue,
		Timestamp:  time.Now().UTC(),
	}
}

// Completion is a completion event attributed to a user.
type Completion struct {
	TaskID    uuid.UUID `json:"taskId"`
	UserID    string    `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
}
