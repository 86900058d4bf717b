package repository

import (
	"context"
	"sync"
	"time"
)

// MemorySessionRepository is the in-process fallback for per-session sync
// state. State does not survive restarts, which only widens the stale
// window: the handlers' last-writer-wins checks stay correct.
type MemorySessionRepository struct {
	lastApplied sync.Map
	rateLimits  sync.Map
	ttl         time.Duration
}

func NewMemorySessionRepository(ttl time.Duration) *MemorySessionRepository {
	return &MemorySessionRepository{ttl: ttl}
}

type appliedEntry struct {
	ts        time.Time
	expiresAt time.Time
}

func (r *MemorySessionRepository) GetLastApplied(ctx context.Context, sessionID string) (time.Time, error) {
	val, ok := r.lastApplied.Load(sessionID)
	if !ok {
		return time.Time{}, nil
	}
	entry := val.(*appliedEntry)
	if r.ttl > 0 && time.Now().After(entry.expiresAt) {
		r.lastApplied.Delete(sessionID)
		return time.Time{}, nil
	}
	return entry.ts, nil
}

func (r *MemorySessionRepository) SetLastApplied(ctx context.Context, sessionID string, ts time.Time) error {
	r.lastApplied.Store(sessionID, &appliedEntry{ts: ts, expiresAt: time.Now().Add(r.ttl)})
	return nil
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func (r *MemorySessionRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	val, ok := r.rateLimits.Load(key)

	var entry *rateLimitEntry
	if !ok {
		entry = &rateLimitEntry{count: 1, expiresAt: now.Add(window)}
	} else {
		entry = val.(*rateLimitEntry)
		if now.After(entry.expiresAt) {
			entry.count = 1
			entry.expiresAt = now.Add(window)
		} else {
			entry.count++
		}
	}

	r.rateLimits.Store(key, entry)
	return entry.count <= limit, nil
}
