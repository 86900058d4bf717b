package models

import "time"

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// OriginOffline marks entities created from queued offline submissions.
const OriginOffline = "offline"

const (
	// MaxSyncAttempts is the hard ceiling after which an item is dropped
	// and recorded as a dead letter.
	MaxSyncAttempts = 10

	// BackoffBase is the delay before the second attempt; it doubles on
	// every failure after that. Tuned for intermittent high-latency links:
	// aggressive early retries, exponential pull-back later.
	BackoffBase = 30 * time.Second

	// BackoffFactor doubles the delay per failed attempt.
	BackoffFactor = 2.0

	// ProbeTimeout bounds a single connectivity probe request.
	ProbeTimeout = 5 * time.Second

	// DefaultSyncInterval is the periodic pass cadence.
	DefaultSyncInterval = time.Minute

	// DefaultSessionTTL is how long per-session sync state (last applied
	// cart timestamp) lives in redis.
	DefaultSessionTTL = 7 * 24 * time.Hour
)
