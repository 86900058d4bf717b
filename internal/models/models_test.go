package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCartRecalculate(t *testing.T) {
	cart := &Cart{
		SessionID: "sess-1",
		Currency:  "EUR",
		Lines: []CartLine{
			{ProductID: 1, Quantity: 2, Price: 49.90},
			{ProductID: 2, Quantity: 1, Price: 120},
			{ProductID: 3, Quantity: 3, Price: 0},
		},
	}

	cart.Recalculate()
	assert.InDelta(t, 219.80, cart.Total, 0.001)

	t.Run("EmptyCart", func(t *testing.T) {
		empty := &Cart{SessionID: "sess-2"}
		empty.Recalculate()
		assert.Equal(t, 0.0, empty.Total)
	})
}

func TestBackoffConstants(t *testing.T) {
	// The retry schedule starts at 30s and doubles; by attempt 9 the delay
	// sits just under 4.5 hours.
	assert.Equal(t, 30*time.Second, BackoffBase)
	assert.Equal(t, 2.0, BackoffFactor)
	assert.Equal(t, 10, MaxSyncAttempts)
}
