// Package notify delivers reservation confirmations. The current
// implementation records them to the log and a redis list consumed by
// the messaging gateway; the gateway itself is a separate service.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"voyago/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const outboxKey = "notify:outbox"

// Notification is one queued confirmation message.
type Notification struct {
	OfflineID     string    `json:"offline_id"`
	ProductID     int64     `json:"product_id"`
	ProductName   string    `json:"product_name"`
	StartDate     time.Time `json:"start_date"`
	Participants  int       `json:"participants"`
	CustomerName  string    `json:"customer_name"`
	CustomerPhone string    `json:"customer_phone"`
	CustomerEmail string    `json:"customer_email"`
	CreatedAt     time.Time `json:"created_at"`
}

// Notifier writes confirmations to the outbox list. A nil redis client
// degrades to log-only delivery.
type Notifier struct {
	client *redis.Client
	log    zerolog.Logger
}

func NewNotifier(client *redis.Client, logger *zerolog.Logger) *Notifier {
	base := zerolog.Nop()
	if logger != nil {
		base = logger.With().Str("component", "notifier").Logger()
	}
	return &Notifier{client: client, log: base}
}

func (n *Notifier) NotifyReservation(ctx context.Context, res *models.Reservation) error {
	msg := Notification{
		OfflineID:     res.OfflineID,
		ProductID:     res.ProductID,
		ProductName:   res.ProductName,
		StartDate:     res.StartDate,
		Participants:  res.Participants,
		CustomerName:  res.CustomerName,
		CustomerPhone: res.CustomerPhone,
		CustomerEmail: res.CustomerEmail,
		CreatedAt:     time.Now(),
	}

	n.log.Info().
		Str("offline_id", res.OfflineID).
		Int64("product_id", res.ProductID).
		Str("customer", res.CustomerName).
		Msg("reservation confirmation queued")

	if n.client == nil {
		return nil
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if err := n.client.LPush(ctx, outboxKey, data).Err(); err != nil {
		// The confirmation is lost for the gateway but the reservation
		// itself is safe; do not fail the sync over it.
		n.log.Error().Err(err).Str("offline_id", res.OfflineID).Msg("push notification to outbox")
		return nil
	}
	return nil
}
