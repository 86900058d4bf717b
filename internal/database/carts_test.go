package database

import (
	"context"
	"testing"
	"time"

	"voyago/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartSaveGetClear(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	got, err := db.GetCart(ctx, "sess-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	cart := &models.Cart{
		SessionID: "sess-1",
		Currency:  "EUR",
		Lines: []models.CartLine{
			{ProductID: 42, Quantity: 2, Participants: 3, StartDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), Price: 59.90},
			{ProductID: 7, Quantity: 1, Variation: "evening", Price: 19},
		},
	}
	cart.Recalculate()
	require.NoError(t, db.SaveCart(ctx, cart))

	got, err = db.GetCart(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Lines, 2)
	assert.Equal(t, int64(42), got.Lines[0].ProductID)
	assert.Equal(t, 3, got.Lines[0].Participants)
	assert.Equal(t, "evening", got.Lines[1].Variation)
	assert.InDelta(t, 138.80, got.Total, 0.001)

	// Saving again rewrites the line set.
	cart.Lines = cart.Lines[:1]
	cart.Recalculate()
	require.NoError(t, db.SaveCart(ctx, cart))

	got, err = db.GetCart(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)

	require.NoError(t, db.ClearCart(ctx, "sess-1"))
	got, err = db.GetCart(ctx, "sess-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}
