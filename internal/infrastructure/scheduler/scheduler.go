package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/proup-app/proup-api/internal/domain/events"
	"github.com/proup-app/proup-api/pkg/logger"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const DefaultRolloverSpec = "0 0 * * *"

// ProjectLister lists every project that may have realtime subscribers.
type ProjectLister interface {
	AllProjectIDs(ctx context.Context) ([]uuid.UUID, error)
}

// RolloverPayload tells clients which UTC day just started.
type RolloverPayload struct {
	ProjectID uuid.UUID `json:"projectId"`
	Today     string    `json:"today"`
}

// Scheduler runs the day rollover job: at midnight UTC every project room
// is told to refetch its leaderboard, since "today" counts and streaks
// change at the date boundary.
type Scheduler struct {
	cron      *cron.Cron
	projects  ProjectLister
	publisher events.Publisher
	logger    *logger.Logger
	now       func() time.Time
}

func NewScheduler(projects ProjectLister, publisher events.Publisher, logger *logger.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithLocation(time.UTC)),
		projects:  projects,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Start registers the rollover job on spec (standard five-field cron, UTC)
// and starts the cron runner.
func (s *Scheduler) Start(spec string) error {
	if spec == "" {
		spec = DefaultRolloverSpec
	}
	if _, err := s.cron.AddFunc(spec, func() {
		if _, err := s.RunRollover(context.Background()); err != nil {
			s.logger.Error("Leaderboard rollover failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("invalid rollover schedule %q: %w", spec, err)
	}

	s.cron.Start()
	entries := s.cron.Entries()
	if len(entries) > 0 {
		s.logger.Info("Rollover scheduler initialized",
			zap.String("spec", spec),
			zap.Time("next_run", entries[0].Next),
		)
	}
	return nil
}

// Stop waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// RunRollover publishes leaderboard:rollover to every project room and
// returns the number of rooms notified.
func (s *Scheduler) RunRollover(ctx context.Context) (int, error) {
	startTime := time.Now()

	ids, err := s.projects.AllProjectIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list projects: %w", err)
	}

	today := s.now().Format("2006-01-02")
	for _, id := range ids {
		s.publisher.Publish(ctx, events.New(
			events.EventLeaderboardRollover,
			events.ProjectRoom(id),
			RolloverPayload{ProjectID: id, Today: today},
		))
	}

	s.logger.Info("Completed leaderboard rollover",
		zap.String("today", today),
		zap.Int("projects", len(ids)),
		zap.Duration("duration", time.Since(startTime)),
	)
	return len(ids), nil
}
