package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSessionRepo struct{}

func (f *failingSessionRepo) GetLastApplied(ctx context.Context, sessionID string) (time.Time, error) {
	return time.Time{}, errors.New("connection refused")
}

func (f *failingSessionRepo) SetLastApplied(ctx context.Context, sessionID string, ts time.Time) error {
	return errors.New("connection refused")
}

func (f *failingSessionRepo) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return false, errors.New("connection refused")
}

func TestFailoverSessionRepository(t *testing.T) {
	logger := zerolog.New(os.Stdout)
	fallback := NewMemorySessionRepository(time.Hour)
	repo := NewFailoverSessionRepository(&failingSessionRepo{}, fallback, &logger)

	ctx := context.Background()
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Primary fails; writes land in the fallback and reads find them.
	require.NoError(t, repo.SetLastApplied(ctx, "sess-1", ts))

	got, err := repo.GetLastApplied(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, got.Equal(ts))

	allowed, err := repo.CheckRateLimit(ctx, "client", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestMemorySessionRepository(t *testing.T) {
	repo := NewMemorySessionRepository(time.Hour)
	ctx := context.Background()

	got, err := repo.GetLastApplied(ctx, "none")
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	ts := time.Now()
	require.NoError(t, repo.SetLastApplied(ctx, "sess-1", ts))
	got, err = repo.GetLastApplied(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, got.Equal(ts))

	t.Run("RateLimit", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			allowed, err := repo.CheckRateLimit(ctx, "k", 5, time.Minute)
			require.NoError(t, err)
			assert.True(t, allowed)
		}
		allowed, err := repo.CheckRateLimit(ctx, "k", 5, time.Minute)
		require.NoError(t, err)
		assert.False(t, allowed)
	})
}
