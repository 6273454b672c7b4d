package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/proup-app/proup-api/internal/api/dto"
	"github.com/proup-app/proup-api/internal/api/handlers"
)

// TaskRoutes handles the setup of task-related routes
type TaskRoutes struct {
	tasks    *handlers.TaskHandler
	comments *handlers.CommentHandler
	guard    Guard
}

// NewTaskRoutes creates a new TaskRoutes instance
func NewTaskRoutes(tasks *handlers.TaskHandler, comments *handlers.CommentHandler, guard Guard) *TaskRoutes {
	return &TaskRoutes{tasks: tasks, comments: comments, guard: guard}
}

// RegisterRoutes registers all task-related routes
func (r *TaskRoutes) RegisterRoutes(router *gin.Engine) {
	validation := r.guard.Validation

	tasks := router.Group("/api/tasks")
	tasks.Use(r.guard.chain()...)

	tasks.GET("", validation.ValidateQuery(&dto.TaskFilterRequest{}), r.tasks.ListTasks)
	tasks.POST("", validation.ValidateRequest(&dto.CreateTaskRequest{}), r.tasks.CreateTask)
	tasks.GET("/:id", r.tasks.GetTask)
	tasks.PUT("/:id", validation.ValidateRequest(&dto.UpdateTaskRequest{}), r.tasks.UpdateTask)
	tasks.DELETE("/:id", r.tasks.DeleteTask)
	tasks.GET("/:id/activity", r.tasks.GetTaskActivity)

	tasks.GET("/:id/comments", r.comments.ListComments)
	tasks.POST("/:id/comments", validation.ValidateRequest(&dto.CreateCommentRequest{}), r.comments.AddComment)
}
