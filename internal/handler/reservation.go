package handler

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"voyago/internal/database"
	"voyago/internal/domain"
	"voyago/internal/events"
	"voyago/internal/models"
	"voyago/internal/worker"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// ReservationPayload is a booking draft composed on the client while
// offline. OfflineID is the client-assigned reservation key.
type ReservationPayload struct {
	OfflineID      string    `json:"offline_id" validate:"required"`
	ProductID      int64     `json:"product_id" validate:"required,gt=0"`
	StartDate      time.Time `json:"start_date" validate:"required"`
	EndDate        time.Time `json:"end_date"`
	Participants   int       `json:"participants" validate:"required,gt=0"`
	Extras         []string  `json:"extras"`
	CustomerName   string    `json:"customer_name"`
	CustomerPhone  string    `json:"customer_phone"`
	CustomerEmail  string    `json:"customer_email"`
	Comment        string    `json:"comment"`
	NotifyCustomer bool      `json:"notify_customer"`
}

type ReservationHandler struct {
	repo     domain.Repository
	notifier domain.Notifier
	bus      domain.EventPublisher
	validate *validator.Validate
	log      zerolog.Logger
}

func NewReservationHandler(
	repo domain.Repository,
	notifier domain.Notifier,
	bus domain.EventPublisher,
	validate *validator.Validate,
	logger *zerolog.Logger,
) *ReservationHandler {
	return &ReservationHandler{
		repo:     repo,
		notifier: notifier,
		bus:      bus,
		validate: validate,
		log:      componentLogger(logger, "reservation-handler"),
	}
}

func (h *ReservationHandler) Apply(ctx context.Context, payload json.RawMessage) worker.Outcome {
	var p ReservationPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return worker.Validation("decode reservation payload: %v", err)
	}
	if err := h.validate.Struct(p); err != nil {
		return worker.Validation("invalid reservation payload: %v", err)
	}

	product, ok := h.repo.GetProductByID(p.ProductID)
	if !ok {
		return worker.Validation("unknown product %d", p.ProductID)
	}

	existing, err := h.repo.GetReservationByOfflineID(ctx, p.OfflineID)
	if err != nil {
		return worker.Retryable("reservation lookup: %v", err)
	}

	// Seats the existing row holds on that date are already in the booked
	// count, so only the extra seats an edit asks for are checked. A
	// re-delivered identical payload needs zero and always passes.
	needed := p.Participants
	if existing != nil && existing.ProductID == p.ProductID && sameDay(existing.StartDate, p.StartDate) {
		needed = p.Participants - existing.Participants
	}
	if needed > 0 {
		available, err := h.repo.CheckAvailability(ctx, p.ProductID, p.StartDate, needed)
		if err != nil {
			if errors.Is(err, database.ErrProductNotFound) {
				return worker.Validation("unknown product %d", p.ProductID)
			}
			return worker.Retryable("availability lookup: %v", err)
		}
		if !available {
			return worker.Fatal("no availability for product %d on %s", p.ProductID, p.StartDate.Format("2006-01-02"))
		}
	}

	if existing != nil {
		// Re-delivery or a client-side edit of the same draft: update the
		// existing row, never insert a second one.
		existing.ProductID = p.ProductID
		existing.ProductName = product.Name
		existing.StartDate = p.StartDate
		existing.EndDate = p.EndDate
		existing.Participants = p.Participants
		existing.Extras = p.Extras
		existing.CustomerName = p.CustomerName
		existing.CustomerPhone = p.CustomerPhone
		existing.CustomerEmail = p.CustomerEmail
		existing.Comment = p.Comment
		if err := h.repo.UpdateReservation(ctx, existing); err != nil {
			return worker.Retryable("update reservation: %v", err)
		}
		return worker.Success("reservation %s updated", p.OfflineID)
	}

	res := &models.Reservation{
		OfflineID:     p.OfflineID,
		ProductID:     p.ProductID,
		ProductName:   product.Name,
		StartDate:     p.StartDate,
		EndDate:       p.EndDate,
		Participants:  p.Participants,
		Extras:        p.Extras,
		CustomerName:  p.CustomerName,
		CustomerPhone: p.CustomerPhone,
		CustomerEmail: p.CustomerEmail,
		Comment:       p.Comment,
		Origin:        models.OriginOffline,
		Status:        models.StatusPending,
	}
	if err := h.repo.CreateReservation(ctx, res); err != nil {
		return worker.Retryable("create reservation: %v", err)
	}

	if h.bus != nil {
		_ = h.bus.PublishJSON(events.EventReservationCreated, events.ReservationEventPayload{
			ReservationID: res.ID,
			OfflineID:     res.OfflineID,
			ProductID:     res.ProductID,
			ProductName:   res.ProductName,
			StartDate:     res.StartDate,
			Participants:  res.Participants,
			Status:        res.Status,
		})
	}

	if p.NotifyCustomer && h.notifier != nil {
		// Notification failure never fails the sync: the reservation is in.
		if err := h.notifier.NotifyReservation(ctx, res); err != nil {
			h.log.Error().Err(err).Str("offline_id", res.OfflineID).Msg("reservation notification failed")
		}
	}

	return worker.Success("reservation %s created", p.OfflineID)
}

func sameDay(a, b time.Time) bool {
	return a.Format("2006-01-02") == b.Format("2006-01-02")
}
