package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/weather-crawler/internal/repository"
)

func TestRunLock(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	lock := NewRunLock()
	lock.now = func() time.Time { return now }

	release, err := lock.Acquire(ctx, "Winnipeg", time.Minute)
	require.NoError(t, err)

	_, err = lock.Acquire(ctx, "Winnipeg", time.Minute)
	assert.True(t, errors.Is(err, repository.ErrLockHeld))

	require.NoError(t, release(ctx))
	release, err = lock.Acquire(ctx, "Winnipeg", time.Minute)
	require.NoError(t, err)

	// An expired lease can be taken over; the stale release is then a no-op.
	now = now.Add(2 * time.Minute)
	release2, err := lock.Acquire(ctx, "Winnipeg", time.Minute)
	require.NoError(t, err)
	require.NoError(t, release(ctx))

	_, err = lock.Acquire(ctx, "Winnipeg", time.Minute)
	assert.True(t, errors.Is(err, repository.ErrLockHeld))
	require.NoError(t, release2(ctx))
}
