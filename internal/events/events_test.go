package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus(t *testing.T) {
	bus := NewEventBus()

	var received []*Event
	bus.Subscribe(EventItemCompleted, func(e *Event) error {
		received = append(received, e)
		return nil
	})

	err := bus.PublishJSON(EventItemCompleted, ItemEventPayload{
		ItemID: "item-1", Type: "cart", Summary: "2 lines added",
	})
	require.NoError(t, err)
	require.Len(t, received, 1)

	var payload ItemEventPayload
	require.NoError(t, json.Unmarshal(received[0].Payload, &payload))
	assert.Equal(t, "item-1", payload.ItemID)
	assert.False(t, received[0].CreatedAt.IsZero())

	t.Run("UnsubscribedTypeIgnored", func(t *testing.T) {
		before := len(received)
		require.NoError(t, bus.PublishJSON(EventItemDeadLettered, ItemEventPayload{ItemID: "x"}))
		assert.Len(t, received, before)
	})

	t.Run("NilBusIsSafe", func(t *testing.T) {
		var nilBus *EventBus
		assert.NoError(t, nilBus.PublishJSON(EventItemEnqueued, nil))
	})
}
