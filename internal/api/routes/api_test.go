package routes

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/proup-app/proup-api/internal/api/dto"
	"github.com/proup-app/proup-api/internal/api/handlers"
	"github.com/proup-app/proup-api/internal/api/middleware"
	"github.com/proup-app/proup-api/internal/domain/activity"
	"github.com/proup-app/proup-api/internal/domain/comment"
	"github.com/proup-app/proup-api/internal/domain/leaderboard"
	"github.com/proup-app/proup-api/internal/domain/project"
	"github.com/proup-app/proup-api/internal/domain/retrospective"
	"github.com/proup-app/proup-api/internal/domain/task"
	"github.com/proup-app/proup-api/internal/domain/user"
	"github.com/proup-app/proup-api/internal/infrastructure/persistence/postgres/connection"
	"github.com/proup-app/proup-api/internal/infrastructure/persistence/postgres/migrations"
	"github.com/proup-app/proup-api/internal/realtime"
	"github.com/proup-app/proup-api/pkg/logger"
	"github.com/proup-app/proup-api/pkg/security/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testAPI struct {
	router *gin.Engine
	jwt    *auth.JWTService
	hub    *realtime.Hub
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := connection.NewSQLite(":memory:", false)
	require.NoError(t, err)
	require.NoError(t, migrations.AutoMigrate(db, zap.NewNop()))

	log := logger.NewNop()
	zl := log.Logger

	userService := user.NewService(user.NewRepository(db), zl)
	projectService := project.NewService(project.NewRepository(db), zl)
	activityRepo := activity.NewRepository(db)
	taskRepo := task.NewRepository(db)
	commentRepo := comment.NewRepository(db)

	hub := realtime.NewHub(nil, log, 8)
	bridge := realtime.NewBridge(hub, nil, "proup:test", log)

	taskService := task.NewService(taskRepo, activityRepo, projectService, bridge, zl)
	commentService := comment.NewService(commentRepo, taskService, bridge, zl)
	leaderboardService := leaderboard.NewService(activityRepo, projectService, userService, zl)
	retroService := retrospective.NewService(projectService, taskRepo, activityRepo, commentRepo, zl)

	jwtService := auth.NewJWTService("test-secret", "proup", 1)
	guard := Guard{
		Auth:       middleware.NewAuthMiddleware(jwtService, log, false),
		Validation: middleware.NewValidationMiddleware(log),
	}

	router := gin.New()
	NewTaskRoutes(handlers.NewTaskHandler(taskService, zl), handlers.NewCommentHandler(commentService, zl), guard).RegisterRoutes(router)
	NewProjectRoutes(handlers.NewProjectHandler(projectService, zl), handlers.NewLeaderboardHandler(leaderboardService, zl), guard).RegisterRoutes(router)
	NewRetrospectiveRoutes(handlers.NewRetrospectiveHandler(retroService, zl), guard).RegisterRoutes(router)
	NewUserRoutes(handlers.NewUserHandler(userService, zl), guard).RegisterRoutes(router)
	SetupHealthRoutes(router, HealthDeps{Database: db, Breaker: bridge})

	return &testAPI{router: router, jwt: jwtService, hub: hub}
}

func (a *testAPI) token(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, err := a.jwt.GenerateToken(userID, userID.String()[:8]+"@example.com")
	require.NoError(t, err)
	return token
}

func (a *testAPI) do(t *testing.T, method, path string, userID uuid.UUID, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != uuid.Nil {
		req.Header.Set("Authorization", "Bearer "+a.token(t, userID))
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), w.Body.String())
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func (a *testAPI) createProject(t *testing.T, owner uuid.UUID, name string) project.Project {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/projects", owner, dto.CreateProjectRequest{Name: name})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var p project.Project
	decodeData(t, w, &p)
	return p
}

func (a *testAPI) createTask(t *testing.T, creator uuid.UUID, projectID uuid.UUID, title string) dto.TaskResponse {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/tasks", creator, dto.CreateTaskRequest{Title: title, ProjectID: &projectID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var out dto.TaskResponse
	decodeData(t, w, &out)
	return out
}

func TestUnauthenticatedRequestsAreRejected(t *testing.T) {
	api := newTestAPI(t)

	for _, path := range []string{"/api/tasks", "/api/projects", "/api/retrospective/data?from=2024-01-01&to=2024-01-02"} {
		w := api.do(t, http.MethodGet, path, uuid.Nil, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		assert.NotContains(t, w.Body.String(), `"data"`)
	}
}

func TestCompletionFlowFeedsAnalytics(t *testing.T) {
	api := newTestAPI(t)
	owner := uuid.New()

	w := api.do(t, http.MethodPut, "/api/users/me", owner, dto.UpsertProfileRequest{Name: "Ada"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	p := api.createProject(t, owner, "Launch")
	created := api.createTask(t, owner, p.ID, "Write docs")
	assert.Equal(t, "todo", created.Status)

	w = api.do(t, http.MethodPut, "/api/tasks/"+created.ID.String(), owner, map[string]interface{}{"status": "done"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.do(t, http.MethodGet, "/api/tasks/"+created.ID.String()+"/activity", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history []dto.ActivityResponse
	decodeData(t, w, &history)
	require.Len(t, history, 2)
	assert.Equal(t, string(activity.ActionCreatedTask), history[0].ActionType)
	assert.Equal(t, activity.FieldStatus, history[1].FieldName)
	assert.Equal(t, "done", history[1].NewValue)

	w = api.do(t, http.MethodGet, "/api/projects/"+p.ID.String()+"/leaderboard", owner, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var board leaderboard.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &board))
	assert.Equal(t, p.ID, board.ProjectID)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), board.Today)
	require.Len(t, board.Leaderboard, 1)
	assert.Equal(t, leaderboard.Row{
		UserID:             owner.String(),
		Name:               "Ada",
		CompletedToday:     1,
		CompletedLast7Days: 1,
		Streak:             1,
	}, board.Leaderboard[0])

	today := time.Now().UTC().Format("2006-01-02")
	w = api.do(t, http.MethodGet, "/api/retrospective/data?from="+today+"&to="+today, owner, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var retro retrospective.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &retro))
	assert.Equal(t, 1, retro.Summary.TotalTasks)
	assert.Equal(t, 1, retro.Summary.TasksCreated)
	assert.Equal(t, 1, retro.Summary.TasksCompleted)
	assert.Equal(t, 100, retro.Summary.CompletionRate)
	assert.Equal(t, 1, retro.Summary.StatusChanges)
	assert.Equal(t, []string{"Write docs"}, retro.CompletedTaskTitles)

	w = api.do(t, http.MethodPost, "/api/retrospective/insights", owner, dto.InsightsRequest{
		From:  today,
		To:    today,
		Moods: []dto.MoodEntryRequest{{Date: today, Score: 4}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var insightsResp dto.InsightsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &insightsResp))
	assert.NotEmpty(t, insightsResp.Insights.Positive)
	assert.NotEmpty(t, insightsResp.Insights.Negative)
	assert.NotEmpty(t, insightsResp.Insights.Action)
	assert.Equal(t, 1, insightsResp.Retrospective.Summary.TasksCompleted)
}

func TestRetrospectiveValidation(t *testing.T) {
	api := newTestAPI(t)
	caller := uuid.New()

	tests := []struct {
		name   string
		target string
		status int
	}{
		{"missing dates", "/api/retrospective/data", http.StatusBadRequest},
		{"malformed date", "/api/retrospective/data?from=2024-13-01&to=2024-12-31", http.StatusBadRequest},
		{"from after to", "/api/retrospective/data?from=2024-02-01&to=2024-01-01", http.StatusBadRequest},
		{"bad project", "/api/retrospective/data?from=2024-01-01&to=2024-01-07&projectId=abc", http.StatusBadRequest},
		{"no projects", "/api/retrospective/data?from=2024-01-01&to=2024-01-07", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := api.do(t, http.MethodGet, tt.target, caller, nil)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}

	w := api.do(t, http.MethodGet, "/api/retrospective/data?from=2024-01-01&to=2024-01-07", caller, nil)
	var retro retrospective.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &retro))
	assert.Zero(t, retro.Summary.TotalTasks)
	assert.Zero(t, retro.Summary.CompletionRate)
	assert.Empty(t, retro.Projects)
	assert.Equal(t, 7, retro.Period.Days)

	w = api.do(t, http.MethodPost, "/api/retrospective/insights", caller, map[string]interface{}{
		"from":  "2024-01-01",
		"to":    "2024-01-07",
		"moods": []map[string]interface{}{{"date": "2024-01-02", "score": 9}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProjectAccessControl(t *testing.T) {
	api := newTestAPI(t)
	owner, viewer, stranger := uuid.New(), uuid.New(), uuid.New()

	p := api.createProject(t, owner, "Secret")
	w := api.do(t, http.MethodPost, "/api/projects/"+p.ID.String()+"/members", owner, dto.AddMemberRequest{UserID: viewer, Role: "viewer"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	leaderboardPath := "/api/projects/" + p.ID.String() + "/leaderboard"
	assert.Equal(t, http.StatusOK, api.do(t, http.MethodGet, leaderboardPath, viewer, nil).Code)
	assert.Equal(t, http.StatusForbidden, api.do(t, http.MethodGet, leaderboardPath, stranger, nil).Code)
	assert.Equal(t, http.StatusNotFound, api.do(t, http.MethodGet, "/api/projects/"+uuid.NewString()+"/leaderboard", owner, nil).Code)
	assert.Equal(t, http.StatusBadRequest, api.do(t, http.MethodGet, "/api/projects/not-a-uuid/leaderboard", owner, nil).Code)

	pid := p.ID
	w = api.do(t, http.MethodPost, "/api/tasks", viewer, dto.CreateTaskRequest{Title: "Nope", ProjectID: &pid})
	assert.Equal(t, http.StatusForbidden, w.Code)

	created := api.createTask(t, owner, p.ID, "Visible")
	w = api.do(t, http.MethodGet, "/api/tasks/"+created.ID.String(), viewer, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = api.do(t, http.MethodGet, "/api/tasks/"+created.ID.String(), stranger, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(t, http.MethodPost, "/api/tasks/"+created.ID.String()+"/comments", viewer, dto.CreateCommentRequest{Content: "Looks good"})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = api.do(t, http.MethodDelete, "/api/projects/"+p.ID.String()+"/members/"+owner.String(), owner, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodPost, "/api/projects/"+p.ID.String()+"/members", owner, dto.AddMemberRequest{UserID: owner, Role: "viewer"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), project.ErrOwnerMembership.Error())

	// the stranger's retrospective for someone else's project is empty, not an error
	w = api.do(t, http.MethodGet, "/api/retrospective/data?from=2024-01-01&to=2024-01-07&projectId="+p.ID.String(), stranger, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateTaskClearsNullableFields(t *testing.T) {
	api := newTestAPI(t)
	owner := uuid.New()
	p := api.createProject(t, owner, "Dates")
	created := api.createTask(t, owner, p.ID, "Due soon")

	path := "/api/tasks/" + created.ID.String()
	w := api.do(t, http.MethodPut, path, owner, map[string]interface{}{"dueDate": "2024-05-01", "assignedUser": owner})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated dto.TaskResponse
	decodeData(t, w, &updated)
	require.NotNil(t, updated.DueDate)
	assert.Equal(t, "2024-05-01", *updated.DueDate)
	require.NotNil(t, updated.AssignedUser)

	w = api.do(t, http.MethodPut, path, owner, map[string]interface{}{"dueDate": nil, "assignedUser": nil})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decodeData(t, w, &updated)
	assert.Nil(t, updated.DueDate)
	assert.Nil(t, updated.AssignedUser)

	w = api.do(t, http.MethodGet, path+"/activity", owner, nil)
	var history []dto.ActivityResponse
	decodeData(t, w, &history)
	var dueChanges []string
	for _, h := range history {
		if h.FieldName == activity.FieldDueDate {
			dueChanges = append(dueChanges, h.OldValue+"->"+h.NewValue)
		}
	}
	assert.Equal(t, []string{"->2024-05-01", "2024-05-01->"}, dueChanges)

	w = api.do(t, http.MethodPut, path, owner, map[string]interface{}{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type failingPinger struct{}

func (failingPinger) Ping() error { return errors.New("down") }

func TestHealthRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupHealthRoutes(router, HealthDeps{Database: failingPinger{}})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"down"`)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
