package profiles

import (
	"context"
	"testing"

	"github.com/gdg-garage/devotional-api/internal/apperr"
	"github.com/gdg-garage/devotional-api/internal/database"
	"github.com/gdg-garage/devotional-api/internal/moderation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestUpdateUsername(t *testing.T) {
	svc := NewService(database.OpenTest(t), moderation.NewFilter("banido"), zaptest.NewLogger(t))
	ctx := context.Background()

	_, err := svc.Get(ctx, "u1")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	p, err := svc.UpdateUsername(ctx, "u1", "Maria Silva")
	require.NoError(t, err)
	assert.Equal(t, "Maria Silva", p.Username)

	p, err = svc.UpdateUsername(ctx, "u1", " Maria S ")
	require.NoError(t, err)
	assert.Equal(t, "Maria S", p.Username)

	for _, bad := range []string{"Jo", "maria_silva", "merda", "Banido"} {
		_, err := svc.UpdateUsername(ctx, "u1", bad)
		assert.True(t, apperr.IsValidation(err), "username %q", bad)
	}

	p, err = svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Maria S", p.Username, "rejected names leave the stored one")
}
