package domain

import (
	"context"
	"encoding/json"
	"time"

	"voyago/internal/models"
)

// QueueStore owns sync item lifetime from enqueue to terminal removal.
type QueueStore interface {
	Enqueue(ctx context.Context, itemType string, payload json.RawMessage) (string, error)
	ListAll(ctx context.Context) ([]models.SyncItem, error)
	// ReplaceAll atomically removes the snapshot ids and inserts the
	// surviving items. Items enqueued after the snapshot was taken are
	// left untouched.
	ReplaceAll(ctx context.Context, snapshotIDs []string, survivors []models.SyncItem) error
	RemoveByID(ctx context.Context, id string) error
	AddDeadLetter(ctx context.Context, item models.SyncItem, reason string) error
	ListDeadLetters(ctx context.Context, limit int) ([]models.DeadLetter, error)
	CountPending(ctx context.Context) (int, error)
}

// Repository is the commerce-state surface the type handlers mutate.
type Repository interface {
	GetReservationByOfflineID(ctx context.Context, offlineID string) (*models.Reservation, error)
	CreateReservation(ctx context.Context, res *models.Reservation) error
	UpdateReservation(ctx context.Context, res *models.Reservation) error
	CheckAvailability(ctx context.Context, productID int64, date time.Time, participants int) (bool, error)

	GetCart(ctx context.Context, sessionID string) (*models.Cart, error)
	SaveCart(ctx context.Context, cart *models.Cart) error
	ClearCart(ctx context.Context, sessionID string) error

	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	SetPreferences(ctx context.Context, userID int64, prefs map[string]string) error
	GetPreferences(ctx context.Context, userID int64) (map[string]string, error)

	GetFavorites(ctx context.Context, userID int64) ([]int64, error)
	ReplaceFavorites(ctx context.Context, userID int64, productIDs []int64) error

	GetViewedHistory(ctx context.Context, userID int64) ([]models.ViewedExcursion, error)
	SaveViewedHistory(ctx context.Context, userID int64, entries []models.ViewedExcursion) error

	// AppendLedgerEntry inserts a loyalty transaction keyed by its offline
	// id; replaying an already-applied id reports applied=false without
	// double-crediting.
	AppendLedgerEntry(ctx context.Context, tx *models.LoyaltyTransaction) (applied bool, err error)
	FlushPendingLedger(ctx context.Context, userID int64) (int, error)
	GetPointBalance(ctx context.Context, userID int64) (int64, error)

	GetProductByID(id int64) (*models.Product, bool)
	GetActiveProducts() []*models.Product
}

// SessionStateRepository keeps per-session sync bookkeeping that does not
// belong in the durable commerce tables: the last applied cart snapshot
// timestamp and per-key rate limit counters.
type SessionStateRepository interface {
	GetLastApplied(ctx context.Context, sessionID string) (time.Time, error)
	SetLastApplied(ctx context.Context, sessionID string, ts time.Time) error
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// Prober answers whether outbound connectivity is currently usable.
type Prober interface {
	Probe(ctx context.Context) bool
}

// Notifier is the black-box notification sink (SMS, email) invoked when a
// reservation asks for a confirmation. Delivery mechanics live elsewhere.
type Notifier interface {
	NotifyReservation(ctx context.Context, res *models.Reservation) error
}

// EventPublisher publishes lightweight domain events for subscribers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// DeadLetterSink mirrors permanently failed items to a secondary surface
// (redis list) for operator tooling.
type DeadLetterSink interface {
	Push(ctx context.Context, letter models.DeadLetter) error
}
