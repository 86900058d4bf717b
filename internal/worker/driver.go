package worker

import (
	"context"
	"sync"
	"time"

	"voyago/internal/domain"
	"voyago/internal/events"
	"voyago/internal/metrics"
	"voyago/internal/models"

	"github.com/rs/zerolog"
)

// PassStats summarizes one processing pass.
type PassStats struct {
	Connected    bool      `json:"connected"`
	Processed    int       `json:"processed"`
	Succeeded    int       `json:"succeeded"`
	Retried      int       `json:"retried"`
	DeadLettered int       `json:"dead_lettered"`
	Skipped      int       `json:"skipped"`
	Remaining    int       `json:"remaining"`
	StartedAt    time.Time `json:"started_at"`
	Duration     time.Duration `json:"duration"`
}

// Driver orchestrates processing passes over the sync queue: probe
// connectivity, filter by backoff eligibility, dispatch, rewrite the
// queue. A pass that cannot confirm connectivity touches nothing.
type Driver struct {
	store      domain.QueueStore
	prober     domain.Prober
	dispatcher *Dispatcher
	policy     RetryPolicy
	sink       domain.DeadLetterSink
	bus        domain.EventPublisher
	interval   time.Duration
	log        zerolog.Logger

	// passMu serializes passes: a manual trigger racing the periodic
	// tick runs after it, not interleaved with it.
	passMu sync.Mutex

	mu       sync.Mutex
	lastPass *PassStats

	wake chan struct{}
}

func NewDriver(
	store domain.QueueStore,
	prober domain.Prober,
	dispatcher *Dispatcher,
	policy RetryPolicy,
	sink domain.DeadLetterSink,
	bus domain.EventPublisher,
	interval time.Duration,
	logger *zerolog.Logger,
) *Driver {
	if interval <= 0 {
		interval = models.DefaultSyncInterval
	}
	base := zerolog.Nop()
	if logger != nil {
		base = logger.With().Str("component", "sync-driver").Logger()
	}

	return &Driver{
		store:      store,
		prober:     prober,
		dispatcher: dispatcher,
		policy:     policy,
		sink:       sink,
		bus:        bus,
		interval:   interval,
		log:        base,
		wake:       make(chan struct{}, 1),
	}
}

// Start runs the periodic trigger loop until ctx is done. While the
// queue is empty the timer is disarmed; Wake re-arms it.
func (d *Driver) Start(ctx context.Context) {
	d.log.Info().Dur("interval", d.interval).Msg("sync driver started")
	defer d.log.Info().Msg("sync driver stopped")

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	armed := true

	for {
		if armed {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			case <-d.wake:
			}
		} else {
			select {
			case <-ctx.Done():
				return
			case <-d.wake:
				ticker.Reset(d.interval)
				armed = true
			}
		}

		stats := d.RunPass(ctx)
		if stats.Connected && stats.Remaining == 0 {
			armed = false
			d.log.Debug().Msg("queue empty, periodic trigger disarmed")
		}
	}
}

// Wake re-arms the periodic trigger after an enqueue and nudges the loop.
func (d *Driver) Wake() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// LastPass returns stats from the most recent pass, or nil before the first.
func (d *Driver) LastPass() *PassStats {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.lastPass == nil {
		return nil
	}
	copied := *d.lastPass
	return &copied
}

// RunPass executes one full processing pass. Safe to call concurrently
// with the periodic loop; passes serialize.
func (d *Driver) RunPass(ctx context.Context) PassStats {
	d.passMu.Lock()
	defer d.passMu.Unlock()

	stats := PassStats{StartedAt: time.Now()}
	defer func() {
		stats.Duration = time.Since(stats.StartedAt)
		d.mu.Lock()
		d.lastPass = &stats
		d.mu.Unlock()
	}()

	if !d.prober.Probe(ctx) {
		d.log.Info().Msg("no connectivity, pass skipped")
		metrics.IncPass("no_connectivity")
		return stats
	}
	stats.Connected = true

	items, err := d.store.ListAll(ctx)
	if err != nil {
		d.log.Error().Err(err).Msg("list sync queue")
		metrics.IncPass("error")
		return stats
	}
	if len(items) == 0 {
		metrics.IncPass("empty")
		return stats
	}

	now := time.Now()
	snapshotIDs := make([]string, 0, len(items))
	var survivors []models.SyncItem

	for _, item := range items {
		snapshotIDs = append(snapshotIDs, item.ID)

		if !d.policy.IsEligible(item, now) {
			stats.Skipped++
			survivors = append(survivors, item)
			continue
		}

		stats.Processed++
		outcome := d.dispatcher.Dispatch(ctx, item)

		switch {
		case outcome.OK:
			stats.Succeeded++
			metrics.IncItem(item.Type, "success")
			d.log.Info().Str("item_id", item.ID).Str("type", item.Type).
				Str("summary", outcome.Summary).Msg("sync item applied")
			d.publish(events.EventItemCompleted, events.ItemEventPayload{
				ItemID: item.ID, Type: item.Type, Summary: outcome.Summary,
			})

		case outcome.Retryable():
			item.Attempts++
			item.LastAttemptAt = now
			if d.policy.Exhausted(item.Attempts) {
				d.deadLetter(ctx, item, "attempt ceiling reached: "+outcome.Reason, &stats)
				continue
			}
			stats.Retried++
			metrics.IncItem(item.Type, "retry")
			d.log.Warn().Str("item_id", item.ID).Str("type", item.Type).
				Int("attempts", item.Attempts).Str("reason", outcome.Reason).
				Dur("next_backoff", d.policy.Delay(item.Attempts)).
				Msg("sync item failed, will retry")
			survivors = append(survivors, item)

		default:
			item.Attempts++
			item.LastAttemptAt = now
			d.deadLetter(ctx, item, outcome.Kind.String()+" failure: "+outcome.Reason, &stats)
		}
	}

	if err := d.store.ReplaceAll(ctx, snapshotIDs, survivors); err != nil {
		d.log.Error().Err(err).Msg("rewrite sync queue")
		metrics.IncPass("error")
		return stats
	}

	remaining, err := d.store.CountPending(ctx)
	if err == nil {
		stats.Remaining = remaining
		metrics.SetQueueDepth(remaining)
	}

	metrics.IncPass("processed")
	d.log.Info().
		Int("processed", stats.Processed).
		Int("succeeded", stats.Succeeded).
		Int("retried", stats.Retried).
		Int("dead_lettered", stats.DeadLettered).
		Int("skipped", stats.Skipped).
		Int("remaining", stats.Remaining).
		Msg("sync pass finished")
	return stats
}

// deadLetter drops the item permanently and records it for operators.
func (d *Driver) deadLetter(ctx context.Context, item models.SyncItem, reason string, stats *PassStats) {
	stats.DeadLettered++
	metrics.IncItem(item.Type, "dead_letter")
	metrics.IncDeadLetter()

	d.log.Error().Str("item_id", item.ID).Str("type", item.Type).
		Int("attempts", item.Attempts).Str("reason", reason).
		Msg("sync item permanently failed")

	if err := d.store.AddDeadLetter(ctx, item, reason); err != nil {
		d.log.Error().Err(err).Str("item_id", item.ID).Msg("record dead letter")
	}
	if d.sink != nil {
		letter := models.DeadLetter{
			ItemID:   item.ID,
			Type:     item.Type,
			Payload:  item.Payload,
			Reason:   reason,
			Attempts: item.Attempts,
			FailedAt: time.Now(),
		}
		if err := d.sink.Push(ctx, letter); err != nil {
			d.log.Error().Err(err).Str("item_id", item.ID).Msg("mirror dead letter")
		}
	}

	d.publish(events.EventItemDeadLettered, events.ItemEventPayload{
		ItemID: item.ID, Type: item.Type, Summary: reason,
	})
}

func (d *Driver) publish(eventType string, payload interface{}) {
	if d.bus == nil {
		return
	}
	if err := d.bus.PublishJSON(eventType, payload); err != nil {
		d.log.Error().Err(err).Str("event", eventType).Msg("publish event")
	}
}
