package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gdg-garage/devotional-api/internal/database"
	"github.com/gdg-garage/devotional-api/internal/models"
	"github.com/gdg-garage/devotional-api/internal/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeSource struct {
	mu     sync.Mutex
	users  []string
	sinces []time.Time
}

func (f *fakeSource) ActiveSince(_ context.Context, since time.Time) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sinces = append(f.sinces, since)
	return f.users, nil
}

type fakeReconciler struct {
	mu      sync.Mutex
	seen    []string
	failFor string
}

func (f *fakeReconciler) Reconcile(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, userID)
	if userID == f.failFor {
		return errors.New("storage unavailable")
	}
	return nil
}

func (f *fakeReconciler) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seen)
}

func TestRunOnce_ReconcilesEveryActiveUser(t *testing.T) {
	src := &fakeSource{users: []string{"u1", "u2", "u3", "u4", "u5"}}
	target := &fakeReconciler{}
	job := NewJob(src, target, zaptest.NewLogger(t), 2)
	t0 := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	job.now = func() time.Time { return t0 }

	stats, err := job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{Users: 5}, stats)
	assert.ElementsMatch(t, src.users, target.seen)

	_, err = job.RunOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, src.sinces, 2)
	assert.True(t, src.sinces[0].IsZero(), "first run covers all history")
	assert.Equal(t, t0.Add(-cursorOverlap), src.sinces[1], "cursor advances after a clean run, minus the overlap")
}

func TestRunOnce_FailureKeepsCursor(t *testing.T) {
	src := &fakeSource{users: []string{"u1", "u2"}}
	target := &fakeReconciler{failFor: "u2"}
	job := NewJob(src, target, zaptest.NewLogger(t), 0)

	stats, err := job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{Users: 2, Failed: 1}, stats)
	assert.Len(t, target.seen, 2, "one failure does not stop the others")

	_, err = job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, src.sinces[1].IsZero(), "failed users are retried from the old cursor")
}

func TestRunOnce_PicksUpLateCommittedActivity(t *testing.T) {
	db := database.OpenTest(t)
	target := &fakeReconciler{}
	job := NewJob(progress.NewStore(db), target, zaptest.NewLogger(t), 1)
	t0 := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	job.now = func() time.Time { return t0 }

	stats, err := job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Users)

	// Stamped before the previous run started, committed after it finished.
	late := models.CompletionRecord{UserID: "u1", ItemID: "dev-1", ItemType: models.ItemDevotional, CreatedAt: t0.Add(-20 * time.Second)}
	require.NoError(t, db.Create(&late).Error)

	job.now = func() time.Time { return t0.Add(5 * time.Minute) }
	stats, err = job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{Users: 1}, stats)
	assert.Equal(t, []string{"u1"}, target.seen)
}

func TestStart_RunsOnSchedule(t *testing.T) {
	target := &fakeReconciler{}
	job := NewJob(&fakeSource{users: []string{"u1"}}, target, zaptest.NewLogger(t), 1)

	s, err := Start(job, 20*time.Millisecond)
	require.NoError(t, err)
	defer s.Shutdown()

	assert.Eventually(t, func() bool { return target.count() > 0 }, 2*time.Second, 10*time.Millisecond)
}
