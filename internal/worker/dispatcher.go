package worker

import (
	"context"

	"voyago/internal/models"

	"github.com/rs/zerolog"
)

// Dispatcher routes a queued item to the handler registered for its type.
// The mapping is fixed at construction; there is no runtime registration.
type Dispatcher struct {
	handlers map[string]Handler
	log      zerolog.Logger
}

func NewDispatcher(handlers map[string]Handler, logger *zerolog.Logger) *Dispatcher {
	base := zerolog.Nop()
	if logger != nil {
		base = logger.With().Str("component", "dispatcher").Logger()
	}
	return &Dispatcher{handlers: handlers, log: base}
}

// Dispatch applies the item through its handler. An unknown type is
// treated as trivially successful so that item types submitted by newer
// clients never jam the queue.
func (d *Dispatcher) Dispatch(ctx context.Context, item models.SyncItem) Outcome {
	handler, ok := d.handlers[item.Type]
	if !ok {
		d.log.Warn().Str("item_id", item.ID).Str("type", item.Type).
			Msg("no handler for item type, dropping as successful")
		return Success("unknown item type %q ignored", item.Type)
	}

	return handler.Apply(ctx, item.Payload)
}

// Types returns the registered item types, for status reporting.
func (d *Dispatcher) Types() []string {
	types := make([]string, 0, len(d.handlers))
	for t := range d.handlers {
		types = append(types, t)
	}
	return types
}
