package models

import "time"

// Loyalty ledger entry statuses.
const (
	LedgerPending = "pending"
	LedgerApplied = "applied"
)

// LoyaltyTransaction is one offline point accrual or deduction.
// OfflineID is assigned by the client and keys idempotent replay.
type LoyaltyTransaction struct {
	OfflineID string    `json:"id"`
	UserID    int64     `json:"user_id"`
	Points    int64     `json:"points"`
	Action    string    `json:"action"`
	Details   string    `json:"details,omitempty"`
	Source    string    `json:"source,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// LedgerEntry is a persisted loyalty transaction.
type LedgerEntry struct {
	ID        int64     `json:"id"`
	OfflineID string    `json:"offline_id"`
	UserID    int64     `json:"user_id"`
	Points    int64     `json:"points"`
	Action    string    `json:"action"`
	Source    string    `json:"source"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
