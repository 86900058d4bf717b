package repository

import (
	"context"
	"sync/atomic"
	"time"

	"voyago/internal/domain"

	"github.com/rs/zerolog"
)

// FailoverSessionRepository prefers redis and falls back to memory when it
// is down, retrying the primary once a minute.
type FailoverSessionRepository struct {
	primary   domain.SessionStateRepository
	fallback  domain.SessionStateRepository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck time.Time
}

func NewFailoverSessionRepository(primary, fallback domain.SessionStateRepository, logger *zerolog.Logger) *FailoverSessionRepository {
	return &FailoverSessionRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverSessionRepository) GetLastApplied(ctx context.Context, sessionID string) (time.Time, error) {
	if !r.isDown.Load() {
		ts, err := r.primary.GetLastApplied(ctx, sessionID)
		if err == nil {
			return ts, nil
		}
		r.logger.Error().Err(err).Msg("primary session repository failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	// Try to recover after 1 minute.
	if r.isDown.Load() && time.Since(r.lastCheck) > time.Minute {
		ts, err := r.primary.GetLastApplied(ctx, sessionID)
		if err == nil {
			r.isDown.Store(false)
			return ts, nil
		}
		r.lastCheck = time.Now()
	}

	return r.fallback.GetLastApplied(ctx, sessionID)
}

func (r *FailoverSessionRepository) SetLastApplied(ctx context.Context, sessionID string, ts time.Time) error {
	if !r.isDown.Load() {
		err := r.primary.SetLastApplied(ctx, sessionID, ts)
		if err == nil {
			return nil
		}
		r.logger.Error().Err(err).Msg("primary session repository failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	return r.fallback.SetLastApplied(ctx, sessionID, ts)
}

func (r *FailoverSessionRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if !r.isDown.Load() {
		allowed, err := r.primary.CheckRateLimit(ctx, key, limit, window)
		if err == nil {
			return allowed, nil
		}
		r.logger.Error().Err(err).Msg("primary session repository failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	return r.fallback.CheckRateLimit(ctx, key, limit, window)
}
