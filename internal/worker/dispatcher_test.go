package worker

import (
	"context"
	"encoding/json"
	"testing"

	"voyago/internal/models"

	"github.com/stretchr/testify/assert"
)

type recordingHandler struct {
	outcome  Outcome
	payloads []json.RawMessage
}

func (h *recordingHandler) Apply(ctx context.Context, payload json.RawMessage) Outcome {
	h.payloads = append(h.payloads, payload)
	return h.outcome
}

func TestDispatcherRoutesByType(t *testing.T) {
	cart := &recordingHandler{outcome: Success("cart ok")}
	res := &recordingHandler{outcome: Retryable("upstream down")}
	d := NewDispatcher(map[string]Handler{
		models.TypeCart:        cart,
		models.TypeReservation: res,
	}, nil)

	out := d.Dispatch(context.Background(), models.SyncItem{
		ID: "i-1", Type: models.TypeCart, Payload: json.RawMessage(`{"a":1}`),
	})
	assert.True(t, out.OK)
	assert.Len(t, cart.payloads, 1)
	assert.Empty(t, res.payloads)

	out = d.Dispatch(context.Background(), models.SyncItem{
		ID: "i-2", Type: models.TypeReservation, Payload: json.RawMessage(`{}`),
	})
	assert.True(t, out.Retryable())
	assert.Len(t, res.payloads, 1)
}

func TestDispatcherToleratesUnknownType(t *testing.T) {
	d := NewDispatcher(map[string]Handler{}, nil)

	out := d.Dispatch(context.Background(), models.SyncItem{
		ID: "i-3", Type: "gift_card", Payload: json.RawMessage(`{}`),
	})
	// Items from newer clients must never jam the queue.
	assert.True(t, out.OK)
	assert.Contains(t, out.Summary, "gift_card")
}

func TestDispatcherTypes(t *testing.T) {
	d := NewDispatcher(map[string]Handler{
		models.TypeCart:      &recordingHandler{},
		models.TypeFavorites: &recordingHandler{},
	}, nil)
	assert.ElementsMatch(t, []string{models.TypeCart, models.TypeFavorites}, d.Types())
}
