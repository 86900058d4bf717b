package worker

import (
	"math"
	"time"

	"voyago/internal/models"
)

// RetryPolicy defines exponential backoff parameters for queued items.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Factor      float64
}

// DefaultRetryPolicy returns the schedule tuned for intermittent links:
// 30s base, doubling per attempt, hard ceiling at 10 attempts.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: models.MaxSyncAttempts,
		BaseDelay:   models.BackoffBase,
		Factor:      models.BackoffFactor,
	}
}

// Delay returns the wait required after the given failed attempt count.
func (p RetryPolicy) Delay(attempts int) time.Duration {
	base := p.BaseDelay
	if base <= 0 {
		base = models.BackoffBase
	}
	factor := p.Factor
	if factor <= 0 {
		factor = models.BackoffFactor
	}
	if attempts < 0 {
		attempts = 0
	}

	d := time.Duration(float64(base) * math.Pow(factor, float64(attempts)))
	if d <= 0 {
		d = base
	}
	return d
}

// IsEligible reports whether enough time has passed since the last
// attempt. A never-attempted item is always eligible.
func (p RetryPolicy) IsEligible(item models.SyncItem, now time.Time) bool {
	if item.Attempts == 0 {
		return true
	}
	return now.Sub(item.LastAttemptAt) >= p.Delay(item.Attempts)
}

// Exhausted reports whether the item has reached the attempt ceiling.
func (p RetryPolicy) Exhausted(attempts int) bool {
	max := p.MaxAttempts
	if max <= 0 {
		max = models.MaxSyncAttempts
	}
	return attempts >= max
}
