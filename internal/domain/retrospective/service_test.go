package retrospective

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/proup-app/proup-api/internal/domain/activity"
	"github.com/proup-app/proup-api/internal/domain/comment"
	"github.com/proup-app/proup-api/internal/domain/project"
	"github.com/proup-app/proup-api/internal/domain/task"
	"github.com/proup-app/proup-api/internal/infrastructure/persistence/postgres/connection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type env struct {
	svc      Service
	projects project.Service
	tasks    task.Service
	comments comment.Service
}

func setupEnv(t *testing.T) *env {
	t.Helper()
	db, err := connection.NewSQLite(":memory:", false)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&project.Project{}, &project.Member{}, &task.Task{}, &activity.Log{}, &comment.Comment{}))

	logger := zap.NewNop()
	projects := project.NewService(project.NewRepository(db), logger)
	taskRepo := task.NewRepository(db)
	logRepo := activity.NewRepository(db)
	commentRepo := comment.NewRepository(db)
	tasks := task.NewService(taskRepo, logRepo, projects, nil, logger)

	return &env{
		svc:      NewService(projects, taskRepo, logRepo, commentRepo, logger),
		projects: projects,
		tasks:    tasks,
		comments: comment.NewService(commentRepo, tasks, nil, logger),
	}
}

func todayRange(t *testing.T) Range {
	today := time.Now().UTC().Format("2006-01-02")
	return mustRange(t, today, today)
}

func TestGetRetrospectiveEndToEnd(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	owner := uuid.New()

	p, err := e.projects.CreateProject(ctx, project.CreateProjectInput{Name: "Launch", OwnerID: owner})
	require.NoError(t, err)

	done := task.TaskStatusDone
	high := task.TaskPriorityHigh
	for i := 0; i < 4; i++ {
		tk, err := e.tasks.CreateTask(ctx, task.CreateTaskInput{Title: "t", Priority: high, ProjectID: &p.ID, CreatorID: owner})
		require.NoError(t, err)
		if i%2 == 0 {
			_, err = e.tasks.UpdateTask(ctx, tk.ID, owner, task.UpdateTaskInput{Status: &done})
			require.NoError(t, err)
		}
		if i == 0 {
			_, err = e.comments.AddComment(ctx, tk.ID, owner, "nice")
			require.NoError(t, err)
		}
	}

	res, err := e.svc.GetRetrospective(ctx, Query{Range: todayRange(t), UserID: owner})
	require.NoError(t, err)

	assert.Equal(t, 4, res.Summary.TotalTasks)
	assert.Equal(t, 4, res.Summary.TasksCreated)
	assert.Equal(t, 2, res.Summary.TasksCompleted)
	assert.Equal(t, 50, res.Summary.CompletionRate)
	assert.Equal(t, 2.0, res.Summary.AvgCompletedPerDay)
	assert.Equal(t, 2, res.Summary.StatusChanges)
	assert.Equal(t, 6, res.Summary.ActivityCount)
	assert.Equal(t, 1, res.Summary.CommentCount)
	assert.Equal(t, 2, res.Summary.PriorityBreakdown["high"])
	require.Len(t, res.Projects, 1)
	assert.Equal(t, 2, res.Projects[0].Completed)
}

func TestGetRetrospectiveNoAccessibleProjects(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()

	res, err := e.svc.GetRetrospective(ctx, Query{Range: todayRange(t), UserID: uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Summary.TotalTasks)
	assert.Empty(t, res.Projects)
	assert.Empty(t, res.CompletedTaskTitles)
}

func TestGetRetrospectiveForeignProjectIsEmpty(t *testing.T) {
	e := setupEnv(t)
	ctx := context.Background()
	owner, stranger := uuid.New(), uuid.New()

	p, err := e.projects.CreateProject(ctx, project.CreateProjectInput{Name: "Private", OwnerID: owner})
	require.NoError(t, err)
	_, err = e.tasks.CreateTask(ctx, task.CreateTaskInput{Title: "secret", ProjectID: &p.ID, CreatorID: owner})
	require.NoError(t, err)

	res, err := e.svc.GetRetrospective(ctx, Query{Range: todayRange(t), ProjectID: &p.ID, UserID: stranger})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Summary.TotalTasks)

	res, err = e.svc.GetRetrospective(ctx, Query{Range: todayRange(t), ProjectID: &p.ID, UserID: owner})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Summary.TotalTasks)
}
