package progression

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/gdg-garage/devotional-api/internal/achievements"
	"github.com/gdg-garage/devotional-api/internal/apperr"
	"github.com/gdg-garage/devotional-api/internal/database"
	"github.com/gdg-garage/devotional-api/internal/medals"
	"github.com/gdg-garage/devotional-api/internal/models"
	"github.com/gdg-garage/devotional-api/internal/notifier"
	"github.com/gdg-garage/devotional-api/internal/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type recorder struct {
	events []notifier.Event
	err    error
}

func (r *recorder) Notify(_ context.Context, ev notifier.Event) error {
	r.events = append(r.events, ev)
	return r.err
}

func (r *recorder) kinds() []string {
	out := []string{}
	for _, ev := range r.events {
		out = append(out, fmt.Sprintf("%s:%s", ev.Kind, ev.ID))
	}
	return out
}

func newTestService(t *testing.T) (*Service, *gorm.DB, *recorder) {
	t.Helper()
	db := database.OpenTest(t)
	require.NoError(t, achievements.Seed(context.Background(), db))

	logger := zaptest.NewLogger(t)
	rec := &recorder{}
	svc := NewService(
		progress.NewStore(db),
		medals.NewService(db, medals.DefaultCatalog(), logger, nil),
		achievements.NewEngine(db, logger),
		rec,
		logger,
	)
	return svc, db, rec
}

func complete(t *testing.T, svc *Service, user string, n int) Outcome {
	t.Helper()
	out, err := svc.Complete(context.Background(), user, fmt.Sprintf("dev-%d", n), models.ItemDevotional)
	require.NoError(t, err)
	return out
}

func TestComplete_CrossingOneThresholdCelebratesOnce(t *testing.T) {
	svc, _, rec := newTestService(t)

	for i := 1; i <= 9; i++ {
		complete(t, svc, "u1", i)
	}
	assert.Equal(t, []string{
		"achievement_granted:primeiro-passo",
		"achievement_granted:perseveranca",
	}, rec.kinds())
	rec.events = nil

	out := complete(t, svc, "u1", 10)
	assert.Equal(t, 10, out.Count)
	require.NotNil(t, out.Celebrated)
	assert.Equal(t, "bronze", out.Celebrated.ID)
	assert.Equal(t, []string{"tier_crossed:bronze"}, rec.kinds())
	rec.events = nil

	complete(t, svc, "u1", 11)
	out = complete(t, svc, "u1", 12)
	assert.Nil(t, out.Celebrated)
	assert.Empty(t, out.NewTiers)
	assert.Empty(t, rec.events, "11 and 12 cross no threshold")
}

func TestComplete_AdminGrantedTierIsNotCelebratedAgain(t *testing.T) {
	svc, _, rec := newTestService(t)
	admin := "admin-1"

	granted, err := svc.medals.GrantTier(context.Background(), "u1", "bronze", &admin)
	require.NoError(t, err)
	require.True(t, granted)

	for i := 1; i <= 9; i++ {
		complete(t, svc, "u1", i)
	}
	rec.events = nil

	out := complete(t, svc, "u1", 10)
	assert.Empty(t, out.NewTiers)
	assert.Nil(t, out.Celebrated)
	assert.Empty(t, rec.events, "bronze was announced when the admin granted it")
}

func TestComplete_DuplicateIsNoop(t *testing.T) {
	svc, _, rec := newTestService(t)

	first := complete(t, svc, "u1", 1)
	assert.True(t, first.Created)
	rec.events = nil

	again := complete(t, svc, "u1", 1)
	assert.False(t, again.Created)
	assert.Equal(t, 1, again.Count)
	assert.Empty(t, again.Achievements)
	assert.Empty(t, rec.events)
}

func TestComplete_RecordFailureSurfaces(t *testing.T) {
	svc, _, rec := newTestService(t)

	_, err := svc.Complete(context.Background(), "u1", "dev-1", models.ItemType("quiz"))
	assert.True(t, apperr.IsValidation(err))
	assert.Empty(t, rec.events)
}

func TestComplete_NotifierFailureDoesNotFailCompletion(t *testing.T) {
	svc, _, rec := newTestService(t)
	rec.err = errors.New("sink down")

	out := complete(t, svc, "u1", 1)
	assert.False(t, out.Partial)
	assert.Len(t, out.Achievements, 1)
}

func TestReconcile_BackfilledCompletions(t *testing.T) {
	svc, db, rec := newTestService(t)
	ctx := context.Background()

	// Completions written without running the pipeline, e.g. a bulk import.
	for i := 1; i <= 35; i++ {
		require.NoError(t, db.Create(&models.CompletionRecord{UserID: "u1", ItemID: fmt.Sprintf("dev-%d", i), ItemType: models.ItemDevotional}).Error)
	}

	require.NoError(t, svc.Reconcile(ctx, "u1"))
	assert.Equal(t, []string{
		"tier_crossed:ouro",
		"achievement_granted:primeiro-passo",
		"achievement_granted:perseveranca",
		"achievement_granted:discipulo-fiel",
	}, rec.kinds(), "a multi-tier jump announces only the highest tier")

	var held int64
	db.Model(&models.EarnedMedal{}).Where("user_id = ?", "u1").Count(&held)
	assert.EqualValues(t, 3, held, "every crossed tier is persisted")

	rec.events = nil
	require.NoError(t, svc.Reconcile(ctx, "u1"))
	assert.Empty(t, rec.events, "reconcile is idempotent")
}

func TestAfterCommunityEvent(t *testing.T) {
	svc, db, rec := newTestService(t)

	require.NoError(t, db.Create(&models.PrayerRequest{ID: "p1", UserID: "u1", Content: "please pray for me"}).Error)
	svc.AfterCommunityEvent(context.Background(), "u1")
	assert.Equal(t, []string{"achievement_granted:voz-da-fe"}, rec.kinds())
}

func TestSummary(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	sum, err := svc.Summary(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, sum.Current)
	require.NotNil(t, sum.Next)
	assert.Equal(t, "bronze", sum.Next.ID)
	assert.Equal(t, 10, sum.Remaining)

	for i := 1; i <= 12; i++ {
		complete(t, svc, "u1", i)
	}
	sum, err = svc.Summary(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, sum.Current)
	assert.Equal(t, "bronze", sum.Current.ID)
	assert.Equal(t, "prata", sum.Next.ID)
	assert.Equal(t, 8, sum.Remaining)
}
