// Package reconcile periodically re-derives medals and achievements for users
// with recent activity, healing grants a failed request left behind.
package reconcile

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const DefaultConcurrency = 4

// cursorOverlap re-reads activity just before the cursor. Rows are stamped
// before their transaction commits, so a slow write can land behind a cursor
// that already moved past it.
const cursorOverlap = time.Minute

type ActivitySource interface {
	ActiveSince(ctx context.Context, since time.Time) ([]string, error)
}

type Reconciler interface {
	Reconcile(ctx context.Context, userID string) error
}

type Stats struct {
	Users  int
	Failed int
}

// Job walks users active since its last clean run. The cursor only advances
// when every user reconciled, so failed users are retried next time.
type Job struct {
	source      ActivitySource
	target      Reconciler
	logger      *zap.Logger
	concurrency int
	now         func() time.Time

	mu   sync.Mutex
	last time.Time
}

func NewJob(source ActivitySource, target Reconciler, logger *zap.Logger, concurrency int) *Job {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Job{source: source, target: target, logger: logger, concurrency: concurrency, now: time.Now}
}

func (j *Job) RunOnce(ctx context.Context) (Stats, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	started := j.now()
	since := j.last
	if !since.IsZero() {
		since = since.Add(-cursorOverlap)
	}
	users, err := j.source.ActiveSince(ctx, since)
	if err != nil {
		return Stats{}, err
	}

	var failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.concurrency)
	for _, userID := range users {
		g.Go(func() error {
			if err := j.target.Reconcile(gctx, userID); err != nil {
				failed.Add(1)
				j.logger.Warn("reconcile user failed", zap.String("user_id", userID), zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()

	stats := Stats{Users: len(users), Failed: int(failed.Load())}
	if stats.Failed == 0 {
		j.last = started
	}
	return stats, nil
}

// Start schedules the job every interval and starts the scheduler. Call
// Shutdown on the returned scheduler to stop it.
func Start(job *Job, interval time.Duration) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			stats, err := job.RunOnce(context.Background())
			if err != nil {
				job.logger.Error("reconcile run failed", zap.Error(err))
				return
			}
			if stats.Users > 0 {
				job.logger.Info("reconcile run finished", zap.Int("users", stats.Users), zap.Int("failed", stats.Failed))
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, err
	}

	s.Start()
	return s, nil
}
