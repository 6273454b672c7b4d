package realtime

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/proup-app/proup-api/internal/domain/events"
	"github.com/proup-app/proup-api/internal/domain/project"
	"github.com/proup-app/proup-api/internal/domain/task"
	"github.com/stretchr/testify/assert"
)

type stubProjects struct {
	roles map[uuid.UUID]project.Role
}

func (s stubProjects) MemberRole(_ context.Context, projectID, _ uuid.UUID) (project.Role, error) {
	role, ok := s.roles[projectID]
	if !ok {
		return "", project.ErrAccessDenied
	}
	return role, nil
}

type stubTasks struct {
	readable map[uuid.UUID]bool
}

func (s stubTasks) GetTask(_ context.Context, id, _ uuid.UUID) (*task.Task, error) {
	if !s.readable[id] {
		return nil, task.ErrTaskAccessDenied
	}
	return &task.Task{ID: id}, nil
}

func TestRoomAuthorizer(t *testing.T) {
	userID := uuid.New()
	memberOf := uuid.New()
	readableTask := uuid.New()

	auth := NewRoomAuthorizer(
		stubProjects{roles: map[uuid.UUID]project.Role{memberOf: project.RoleViewer}},
		stubTasks{readable: map[uuid.UUID]bool{readableTask: true}},
	)
	ctx := context.Background()

	assert.NoError(t, auth.CanJoin(ctx, userID, events.UserRoom(userID)))
	assert.ErrorIs(t, auth.CanJoin(ctx, userID, events.UserRoom(uuid.New())), ErrForbidden)

	assert.NoError(t, auth.CanJoin(ctx, userID, events.ProjectRoom(memberOf)))
	assert.ErrorIs(t, auth.CanJoin(ctx, userID, events.ProjectRoom(uuid.New())), ErrForbidden)

	assert.NoError(t, auth.CanJoin(ctx, userID, events.TaskRoom(readableTask)))
	assert.ErrorIs(t, auth.CanJoin(ctx, userID, events.TaskRoom(uuid.New())), ErrForbidden)

	assert.ErrorIs(t, auth.CanJoin(ctx, userID, "lobby"), ErrInvalidRoom)
}
