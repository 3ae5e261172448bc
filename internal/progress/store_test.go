package progress

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gdg-garage/devotional-api/internal/apperr"
	"github.com/gdg-garage/devotional-api/internal/database"
	"github.com/gdg-garage/devotional-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordCompletion_Idempotent(t *testing.T) {
	store := NewStore(database.OpenTest(t))
	ctx := context.Background()

	res, err := store.RecordCompletion(ctx, "u1", "dev-1", models.ItemDevotional)
	require.NoError(t, err)
	assert.Equal(t, Result{Count: 1, Created: true}, res)
	assert.Equal(t, 0, res.Previous())

	res, err = store.RecordCompletion(ctx, "u1", "dev-1", models.ItemDevotional)
	require.NoError(t, err)
	assert.Equal(t, Result{Count: 1, Created: false}, res)
	assert.Equal(t, 1, res.Previous())

	res, err = store.RecordCompletion(ctx, "u1", "dev-1", models.ItemChallenge)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count, "same item id under another type counts separately")

	res, err = store.RecordCompletion(ctx, "u2", "dev-1", models.ItemDevotional)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)
}

func TestRecordCompletion_Concurrent(t *testing.T) {
	store := NewStore(database.OpenTest(t))
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.RecordCompletion(ctx, "u1", "dev-7", models.ItemDevotional)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	count, err := store.Count(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRecordCompletion_Validation(t *testing.T) {
	store := NewStore(database.OpenTest(t))
	ctx := context.Background()

	_, err := store.RecordCompletion(ctx, "u1", "dev-1", models.ItemType("sermon"))
	assert.True(t, apperr.IsValidation(err))

	_, err = store.RecordCompletion(ctx, "u1", "   ", models.ItemDevotional)
	assert.True(t, apperr.IsValidation(err))
}

func TestCounters(t *testing.T) {
	db := database.OpenTest(t)
	store := NewStore(db)
	ctx := context.Background()

	c, err := store.Counters(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, Counters{}, c)

	for _, id := range []string{"a", "b", "c"} {
		_, err := store.RecordCompletion(ctx, "u1", id, models.ItemDevotional)
		require.NoError(t, err)
	}
	require.NoError(t, db.Create(&models.PrayerRequest{ID: "p1", UserID: "u1", Content: "pray for my family"}).Error)
	require.NoError(t, db.Create(&models.PrayerRequest{ID: "p2", UserID: "u1", Content: "pray for my church"}).Error)
	require.NoError(t, db.Delete(&models.PrayerRequest{}, "id = ?", "p2").Error)
	require.NoError(t, db.Create(&models.Interaction{ID: "i1", PrayerRequestID: "p1", UserID: "u1", Type: models.InteractionPray}).Error)
	require.NoError(t, db.Create(&models.Interaction{ID: "i2", PrayerRequestID: "p1", UserID: "u2", Type: models.InteractionPray}).Error)

	c, err = store.Counters(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, Counters{Completions: 3, Interactions: 1, PrayerRequests: 1}, c)

	v, ok := c.Get(models.RequirementCompletions)
	assert.True(t, ok)
	assert.Equal(t, 3, v)
	_, ok = c.Get(models.RequirementCustom)
	assert.False(t, ok)
}

func TestCompletedAndActiveSince(t *testing.T) {
	store := NewStore(database.OpenTest(t))
	ctx := context.Background()
	before := time.Now().Add(-time.Minute)

	_, err := store.RecordCompletion(ctx, "u1", "a", models.ItemDevotional)
	require.NoError(t, err)
	_, err = store.RecordCompletion(ctx, "u2", "b", models.ItemChallenge)
	require.NoError(t, err)

	recs, err := store.Completed(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "a", recs[0].ItemID)

	users, err := store.ActiveSince(ctx, before)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"u1", "u2"}, users)

	users, err = store.ActiveSince(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, users)
}
