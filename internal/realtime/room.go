package realtime

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/proup-app/proup-api/internal/domain/project"
	"github.com/proup-app/proup-api/internal/domain/task"
)

var (
	ErrInvalidRoom = errors.New("invalid room")
	ErrForbidden   = errors.New("not allowed to join room")
)

type RoomKind string

const (
	RoomProject RoomKind = "project"
	RoomTask    RoomKind = "task"
	RoomUser    RoomKind = "user"
)

// ParseRoom splits "<kind>:<uuid>".
func ParseRoom(room string) (RoomKind, uuid.UUID, error) {
	kind, rawID, ok := strings.Cut(room, ":")
	if !ok {
		return "", uuid.Nil, ErrInvalidRoom
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return "", uuid.Nil, ErrInvalidRoom
	}
	switch RoomKind(kind) {
	case RoomProject, RoomTask, RoomUser:
		return RoomKind(kind), id, nil
	}
	return "", uuid.Nil, ErrInvalidRoom
}

// Authorizer decides whether a user may subscribe to a room.
type Authorizer interface {
	CanJoin(ctx context.Context, userID uuid.UUID, room string) error
}

type ProjectAccess interface {
	MemberRole(ctx context.Context, projectID, userID uuid.UUID) (project.Role, error)
}

type TaskReader interface {
	GetTask(ctx context.Context, id, userID uuid.UUID) (*task.Task, error)
}

// RoomAuthorizer admits project and task rooms to anyone with read access
// and user rooms only to their owner.
type RoomAuthorizer struct {
	projects ProjectAccess
	tasks    TaskReader
}

func NewRoomAuthorizer(projects ProjectAccess, tasks TaskReader) *RoomAuthorizer {
	return &RoomAuthorizer{projects: projects, tasks: tasks}
}

func (a *RoomAuthorizer) CanJoin(ctx context.Context, userID uuid.UUID, room string) error {
	kind, id, err := ParseRoom(room)
	if err != nil {
		return err
	}

	switch kind {
	case RoomUser:
		if id != userID {
			return ErrForbidden
		}
	case RoomProject:
		if _, err := a.projects.MemberRole(ctx, id, userID); err != nil {
			return ErrForbidden
		}
	case RoomTask:
		if _, err := a.tasks.GetTask(ctx, id, userID); err != nil {
			return ErrForbidden
		}
	}
	return nil
}
