package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"voyago/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisSessionRepository(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer client.Close()

	repo := NewRedisSessionRepository(client, time.Hour)
	ctx := context.Background()

	t.Run("SetAndGetLastApplied", func(t *testing.T) {
		ts := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
		require.NoError(t, repo.SetLastApplied(ctx, "sess-1", ts))

		got, err := repo.GetLastApplied(ctx, "sess-1")
		require.NoError(t, err)
		assert.True(t, got.Equal(ts))
	})

	t.Run("UnknownSessionIsZero", func(t *testing.T) {
		got, err := repo.GetLastApplied(ctx, "unknown")
		require.NoError(t, err)
		assert.True(t, got.IsZero())
	})

	t.Run("RateLimit", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			allowed, err := repo.CheckRateLimit(ctx, "client-1", 3, time.Minute)
			require.NoError(t, err)
			assert.True(t, allowed)
		}
		allowed, err := repo.CheckRateLimit(ctx, "client-1", 3, time.Minute)
		require.NoError(t, err)
		assert.False(t, allowed)

		// Window expiry resets the counter.
		s.FastForward(2 * time.Minute)
		allowed, err = repo.CheckRateLimit(ctx, "client-1", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("NilClient", func(t *testing.T) {
		nilRepo := NewRedisSessionRepository(nil, time.Hour)
		_, err := nilRepo.GetLastApplied(ctx, "x")
		assert.Error(t, err)
		assert.Error(t, nilRepo.SetLastApplied(ctx, "x", time.Now()))
	})
}

func TestRedisDeadLetterSink(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer client.Close()

	sink := NewRedisDeadLetterSink(client)
	ctx := context.Background()

	letter := models.DeadLetter{
		ID:     "dl-1",
		ItemID: "item-1",
		Type:   models.TypeReservation,
		Reason: "attempt ceiling reached",
	}
	require.NoError(t, sink.Push(ctx, letter))

	raw, err := client.LRange(ctx, "sync:deadletter", 0, -1).Result()
	require.NoError(t, err)
	require.Len(t, raw, 1)

	var got models.DeadLetter
	require.NoError(t, json.Unmarshal([]byte(raw[0]), &got))
	assert.Equal(t, "item-1", got.ItemID)
}
