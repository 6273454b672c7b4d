package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/proup-app/proup-api/internal/api/dto"
	"github.com/proup-app/proup-api/internal/api/middleware"
	"github.com/proup-app/proup-api/internal/domain/task"
	"go.uber.org/zap"
)

const defaultPageSize = 50

// TaskHandler handles HTTP requests for task operations
type TaskHandler struct {
	service task.Service
	logger  *zap.Logger
}

// NewTaskHandler creates a new TaskHandler instance
func NewTaskHandler(service task.Service, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{service: service, logger: logger}
}

// CreateTask handles POST /api/tasks
func (h *TaskHandler) CreateTask(c *gin.Context) {
	creatorID, ok := middleware.GetUserID(c)
	if !ok {
		unauthorized(c)
		return
	}
	req, ok := middleware.Validated[dto.CreateTaskRequest](c)
	if !ok {
		invalidBody(c)
		return
	}

	input := task.CreateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		Status:       task.TaskStatus(req.Status),
		Priority:     task.TaskPriority(req.Priority),
		AssignedUser: req.AssignedUser,
		ProjectID:    req.ProjectID,
		CreatorID:    creatorID,
	}
	if req.DueDate != nil && *req.DueDate != "" {
		due, err := dto.ParseDueDate(*req.DueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		input.DueDate = &due
	}

	created, err := h.service.CreateTask(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": TaskToResponse(created)})
}

// GetTask handles GET /api/tasks/:id
func (h *TaskHandler) GetTask(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		unauthorized(c)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task ID"})
		return
	}

	tsk, err := h.service.GetTask(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": TaskToResponse(tsk)})
}

// ListTasks handles GET /api/tasks. Without projectId it lists every task
// the caller can see, personal tasks included.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		unauthorized(c)
		return
	}

	var q dto.TaskFilterRequest
	if v, exists := c.Get(middleware.ValidatedQueryKey); exists {
		q = *v.(*dto.TaskFilterRequest)
	} else if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}

	filter := task.TaskFilter{Page: q.Page, PageSize: q.PageSize}
	if filter.PageSize == 0 {
		filter.PageSize = defaultPageSize
	}
	if q.Status != "" {
		status := task.TaskStatus(q.Status)
		filter.Status = &status
	}
	if q.Priority != "" {
		priority := task.TaskPriority(q.Priority)
		filter.Priority = &priority
	}
	if q.AssigneeID != "" {
		assignee, err := uuid.Parse(q.AssigneeID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid assignee ID"})
			return
		}
		filter.AssigneeID = &assignee
	}
	var projectID *uuid.UUID
	if q.ProjectID != "" {
		id, err := uuid.Parse(q.ProjectID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project ID"})
			return
		}
		projectID = &id
	}

	tasks, total, err := h.service.ListTasks(c.Request.Context(), userID, projectID, filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.TaskListResponse{
		Tasks:      TasksToResponse(tasks),
		TotalCount: total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
	}})
}

// UpdateTask handles PUT /api/tasks/:id
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		unauthorized(c)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task ID"})
		return
	}
	req, ok := middleware.Validated[dto.UpdateTaskRequest](c)
	if !ok {
		invalidBody(c)
		return
	}

	input := task.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Status != nil {
		status := task.TaskStatus(*req.Status)
		input.Status = &status
	}
	if req.Priority != nil {
		priority := task.TaskPriority(*req.Priority)
		input.Priority = &priority
	}
	if req.AssignedUser.Set {
		input.AssignedUser = req.AssignedUser.Value
		input.ClearAssignedUser = req.AssignedUser.Value == nil
	}
	if req.DueDate.Set {
		if req.DueDate.Value == nil || *req.DueDate.Value == "" {
			input.ClearDueDate = true
		} else {
			due, err := dto.ParseDueDate(*req.DueDate.Value)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			input.DueDate = &due
		}
	}

	updated, err := h.service.UpdateTask(c.Request.Context(), id, userID, input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": TaskToResponse(updated)})
}

// DeleteTask handles DELETE /api/tasks/:id
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		unauthorized(c)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task ID"})
		return
	}

	if err := h.service.DeleteTask(c.Request.Context(), id, userID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetTaskActivity handles GET /api/tasks/:id/activity
func (h *TaskHandler) GetTaskActivity(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		unauthorized(c)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task ID"})
		return
	}

	logs, err := h.service.GetTaskActivity(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": ActivityToResponse(logs)})
}
