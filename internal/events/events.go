package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventItemEnqueued       = "sync_item_enqueued"
	EventItemCompleted      = "sync_item_completed"
	EventItemDeadLettered   = "sync_item_dead_lettered"
	EventReservationCreated = "reservation_created"
)

// ItemEventPayload describes a sync item transition for event consumers.
type ItemEventPayload struct {
	ItemID  string `json:"item_id"`
	Type    string `json:"type"`
	Summary string `json:"summary,omitempty"`
}

// ReservationEventPayload is the minimal reservation snapshot published
// when an offline booking lands.
type ReservationEventPayload struct {
	ReservationID int64     `json:"reservation_id"`
	OfflineID     string    `json:"offline_id"`
	ProductID     int64     `json:"product_id"`
	ProductName   string    `json:"product_name"`
	StartDate     time.Time `json:"start_date"`
	Participants  int       `json:"participants"`
	Status        string    `json:"status"`
}

// Event represents a lightweight domain event.
type Event struct {
	ID        int64
	Type      string
	Payload   []byte
	CreatedAt time.Time
	Processed bool
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}
