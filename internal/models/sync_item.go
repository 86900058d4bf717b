package models

import (
	"encoding/json"
	"time"
)

// Sync item types submitted by offline clients.
const (
	TypeReservation      = "reservation"
	TypeCart             = "cart"
	TypeUserPreferences  = "user_preferences"
	TypeFavorites        = "favorites"
	TypeViewedExcursions = "viewed_excursions"
	TypeLoyaltyPoints    = "loyalty_points"
)

// SyncItem is a queued offline mutation awaiting application.
type SyncItem struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Payload       json.RawMessage `json:"payload"`
	EnqueuedAt    time.Time       `json:"enqueued_at"`
	LastAttemptAt time.Time       `json:"last_attempt_at"`
	Attempts      int             `json:"attempts"`
}

// DeadLetter is a sync item that left the queue without being applied:
// either the attempt ceiling was reached or the payload failed validation.
type DeadLetter struct {
	ID       string          `json:"id"`
	ItemID   string          `json:"item_id"`
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Reason   string          `json:"reason"`
	Attempts int             `json:"attempts"`
	FailedAt time.Time       `json:"failed_at"`
}
