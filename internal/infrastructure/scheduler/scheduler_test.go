package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/proup-app/proup-api/internal/domain/events"
	"github.com/proup-app/proup-api/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedProjects struct {
	ids []uuid.UUID
	err error
}

func (f fixedProjects) AllProjectIDs(context.Context) ([]uuid.UUID, error) {
	return f.ids, f.err
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingPublisher) Publish(_ context.Context, e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func TestRunRolloverNotifiesEveryProject(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New()}
	pub := &recordingPublisher{}
	s := NewScheduler(fixedProjects{ids: ids}, pub, logger.NewNop())
	s.now = func() time.Time { return time.Date(2024, 3, 10, 0, 0, 1, 0, time.UTC) }

	n, err := s.RunRollover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.Len(t, pub.events, 2)
	for i, e := range pub.events {
		assert.Equal(t, events.EventLeaderboardRollover, e.Type)
		assert.Equal(t, events.ProjectRoom(ids[i]), e.Room)
		assert.Equal(t, RolloverPayload{ProjectID: ids[i], Today: "2024-03-10"}, e.Payload)
	}
}

func TestRunRolloverPropagatesListError(t *testing.T) {
	pub := &recordingPublisher{}
	s := NewScheduler(fixedProjects{err: errors.New("db down")}, pub, logger.NewNop())

	_, err := s.RunRollover(context.Background())
	assert.Error(t, err)
	assert.Empty(t, pub.events)
}

func TestStartRejectsInvalidSpec(t *testing.T) {
	s := NewScheduler(fixedProjects{}, &recordingPublisher{}, logger.NewNop())
	assert.Error(t, s.Start("not a cron spec"))
}

func TestStartSchedulesNextMidnight(t *testing.T) {
	s := NewScheduler(fixedProjects{}, &recordingPublisher{}, logger.NewNop())
	require.NoError(t, s.Start(""))
	defer s.Stop()

	entries := s.cron.Entries()
	require.Len(t, entries, 1)
	next := entries[0].Next.UTC()
	assert.Equal(t, 0, next.Hour())
	assert.Equal(t, 0, next.Minute())
}
