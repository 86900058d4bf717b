package handler

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"voyago/internal/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cartPayload(t *testing.T, p CartPayload) json.RawMessage {
	raw, err := json.Marshal(p)
	require.NoError(t, err)
	return raw
}

func TestCartHandlerMerge(t *testing.T) {
	env := newTestEnv(t)
	h := NewCartHandler(env.db, env.sessions, env.validate, &env.logger)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	first := h.Apply(ctx, cartPayload(t, CartPayload{
		SessionID: "sess-1", Timestamp: base, Currency: "EUR",
		Lines: []CartLinePayload{
			{ProductID: 42, Quantity: 2, Participants: 3},
			{ProductID: 7, Quantity: 1},
		},
	}))
	require.True(t, first.OK, first.Reason)
	assert.Contains(t, first.Summary, "2 added")

	cart, err := env.db.GetCart(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, cart.Lines, 2)
	assert.InDelta(t, 2*59.90+19, cart.Total, 0.001)

	t.Run("MergeUpdatesQuantity", func(t *testing.T) {
		outcome := h.Apply(ctx, cartPayload(t, CartPayload{
			SessionID: "sess-1", Timestamp: base.Add(time.Minute),
			Lines: []CartLinePayload{
				{ProductID: 42, Quantity: 5},  // differs, updated
				{ProductID: 7, Quantity: 1},   // same, untouched
				{ProductID: 1, Quantity: 2},   // new, added
			},
		}))
		require.True(t, outcome.OK)
		assert.Contains(t, outcome.Summary, "1 added")
		assert.Contains(t, outcome.Summary, "1 updated")

		cart, err := env.db.GetCart(ctx, "sess-1")
		require.NoError(t, err)
		require.Len(t, cart.Lines, 3)
		assert.Equal(t, 5, cart.Lines[0].Quantity)
	})

	t.Run("StaleSnapshotIsNoOp", func(t *testing.T) {
		before, err := env.db.GetCart(ctx, "sess-1")
		require.NoError(t, err)

		outcome := h.Apply(ctx, cartPayload(t, CartPayload{
			SessionID: "sess-1", Timestamp: base, // older than last applied
			Lines:     []CartLinePayload{{ProductID: 2, Quantity: 9}},
		}))
		// Stale writes succeed without mutating anything.
		require.True(t, outcome.OK)
		assert.Contains(t, outcome.Summary, "stale")

		after, err := env.db.GetCart(ctx, "sess-1")
		require.NoError(t, err)
		assert.Equal(t, before.Lines, after.Lines)
		assert.Equal(t, before.Total, after.Total)
	})

	t.Run("UnknownProductLineErrored", func(t *testing.T) {
		outcome := h.Apply(ctx, cartPayload(t, CartPayload{
			SessionID: "sess-2", Timestamp: base,
			Lines: []CartLinePayload{
				{ProductID: 42, Quantity: 1},
				{ProductID: 9999, Quantity: 1},
			},
		}))
		require.True(t, outcome.OK)
		assert.Contains(t, outcome.Summary, "1 errored")

		cart, err := env.db.GetCart(ctx, "sess-2")
		require.NoError(t, err)
		assert.Len(t, cart.Lines, 1)
	})
}

func TestCartHandlerReplace(t *testing.T) {
	env := newTestEnv(t)
	h := NewCartHandler(env.db, env.sessions, env.validate, &env.logger)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	require.True(t, h.Apply(ctx, cartPayload(t, CartPayload{
		SessionID: "sess-r", Timestamp: base,
		Lines: []CartLinePayload{{ProductID: 42, Quantity: 2}, {ProductID: 7, Quantity: 1}},
	})).OK)

	outcome := h.Apply(ctx, cartPayload(t, CartPayload{
		SessionID: "sess-r", Timestamp: base.Add(time.Hour), Mode: "replace",
		Lines: []CartLinePayload{{ProductID: 1, Quantity: 1}},
	}))
	require.True(t, outcome.OK)

	cart, err := env.db.GetCart(ctx, "sess-r")
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, int64(1), cart.Lines[0].ProductID)
	assert.InDelta(t, 35, cart.Total, 0.001)

	t.Run("EmptyReplaceClearsStoredCart", func(t *testing.T) {
		outcome := h.Apply(ctx, cartPayload(t, CartPayload{
			SessionID: "sess-r", Timestamp: base.Add(2 * time.Hour), Mode: "replace",
		}))
		require.True(t, outcome.OK, outcome.Reason)

		cart, err := env.db.GetCart(ctx, "sess-r")
		require.NoError(t, err)
		assert.Nil(t, cart)
	})
}

func TestCartHandlerValidation(t *testing.T) {
	env := newTestEnv(t)
	h := NewCartHandler(env.db, env.sessions, env.validate, &env.logger)
	ctx := context.Background()

	outcome := h.Apply(ctx, json.RawMessage(`{"session_id":""}`))
	assert.False(t, outcome.OK)
	assert.Equal(t, worker.FailureValidation, outcome.Kind)

	outcome = h.Apply(ctx, cartPayload(t, CartPayload{
		SessionID: "s", Timestamp: time.Now(), Mode: "overwrite",
	}))
	assert.False(t, outcome.OK)
	assert.Equal(t, worker.FailureValidation, outcome.Kind)
}
