package handlers

import (
	"github.com/proup-app/proup-api/internal/api/dto"
	"github.com/proup-app/proup-api/internal/domain/activity"
	"github.com/proup-app/proup-api/internal/domain/task"
)

// TaskToResponse renders dueDate as a plain date.
func TaskToResponse(t *task.Task) *dto.TaskResponse {
	if t == nil {
		return nil
	}
	resp := &dto.TaskResponse{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		Status:       string(t.Status),
		Priority:     string(t.Priority),
		AssignedUser: t.AssignedUser,
		ProjectID:    t.ProjectID,
		CreatorID:    t.CreatorID,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
	if t.DueDate != nil {
		due := t.DueDateKey()
		resp.DueDate = &due
	}
	return resp
}

func TasksToResponse(tasks []task.Task) []dto.TaskResponse {
	out := make([]dto.TaskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, *TaskToResponse(&tasks[i]))
	}
	return out
}

func ActivityToResponse(logs []activity.Log) []dto.ActivityResponse {
	out := make([]dto.ActivityResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, dto.ActivityResponse{
			ID:         l.ID,
			TaskID:     l.TaskID,
			UserID:     l.UserID,
			ActionType: string(l.ActionType),
			FieldName:  l.FieldName,
			OldValue:   l.OldValue,
			NewValue:   l.NewValue,
			Timestamp:  l.Timestamp,
		})
	}
	return out
}
