package handler

import (
	"context"
	"encoding/json"
	"time"

	"voyago/internal/domain"
	"voyago/internal/models"
	"voyago/internal/resolve"
	"voyago/internal/worker"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// CartLinePayload is one submitted cart position.
type CartLinePayload struct {
	ProductID    int64     `json:"product_id" validate:"required,gt=0"`
	Quantity     int       `json:"quantity" validate:"required,gt=0"`
	Variation    string    `json:"variation"`
	Participants int       `json:"participants"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
}

// CartPayload is a full cart snapshot taken on the client.
type CartPayload struct {
	SessionID string            `json:"session_id" validate:"required"`
	Timestamp time.Time         `json:"timestamp" validate:"required"`
	Mode      string            `json:"mode" validate:"omitempty,oneof=merge replace"`
	Currency  string            `json:"currency"`
	Lines     []CartLinePayload `json:"items"`
}

type CartHandler struct {
	repo     domain.Repository
	sessions domain.SessionStateRepository
	validate *validator.Validate
	log      zerolog.Logger
}

func NewCartHandler(
	repo domain.Repository,
	sessions domain.SessionStateRepository,
	validate *validator.Validate,
	logger *zerolog.Logger,
) *CartHandler {
	return &CartHandler{
		repo:     repo,
		sessions: sessions,
		validate: validate,
		log:      componentLogger(logger, "cart-handler"),
	}
}

func (h *CartHandler) Apply(ctx context.Context, payload json.RawMessage) worker.Outcome {
	var p CartPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return worker.Validation("decode cart payload: %v", err)
	}
	if err := h.validate.Struct(p); err != nil {
		return worker.Validation("invalid cart payload: %v", err)
	}

	lastApplied, err := h.sessions.GetLastApplied(ctx, p.SessionID)
	if err != nil {
		return worker.Retryable("last applied lookup: %v", err)
	}
	if !resolve.LatestWins(p.Timestamp, lastApplied) {
		// Stale-write rejection is a success, not an error: the newer
		// snapshot already won and this one must stay a no-op.
		return worker.Success("stale cart snapshot for session %s ignored", p.SessionID)
	}

	mode := p.Mode
	if mode == "" {
		mode = models.CartModeMerge
	}

	var cart *models.Cart
	if mode == models.CartModeReplace {
		// A replace snapshot discards the stored cart outright, so an
		// emptied client cart leaves no zero-total row behind.
		if err := h.repo.ClearCart(ctx, p.SessionID); err != nil {
			return worker.Retryable("clear cart: %v", err)
		}
		cart = &models.Cart{SessionID: p.SessionID}
	} else {
		var err error
		cart, err = h.repo.GetCart(ctx, p.SessionID)
		if err != nil {
			return worker.Retryable("cart lookup: %v", err)
		}
		if cart == nil {
			cart = &models.Cart{SessionID: p.SessionID}
		}
	}
	if p.Currency != "" {
		cart.Currency = p.Currency
	}

	added, updated, errored := 0, 0, 0
	for _, line := range p.Lines {
		product, ok := h.repo.GetProductByID(line.ProductID)
		if !ok || !product.IsActive {
			errored++
			h.log.Warn().Str("session_id", p.SessionID).Int64("product_id", line.ProductID).
				Msg("cart line references unknown product, skipped")
			continue
		}

		idx := findLine(cart.Lines, line.ProductID)
		if idx >= 0 {
			if cart.Lines[idx].Quantity != line.Quantity {
				cart.Lines[idx].Quantity = line.Quantity
				updated++
			}
			continue
		}

		cart.Lines = append(cart.Lines, models.CartLine{
			ProductID:    line.ProductID,
			Quantity:     line.Quantity,
			Variation:    line.Variation,
			Participants: line.Participants,
			StartDate:    line.StartDate,
			EndDate:      line.EndDate,
			Price:        product.Price,
		})
		added++
	}

	// An emptied replace snapshot needs no row: the clear was the write.
	if mode != models.CartModeReplace || len(cart.Lines) > 0 {
		cart.Recalculate()
		if err := h.repo.SaveCart(ctx, cart); err != nil {
			return worker.Retryable("save cart: %v", err)
		}
	}
	if err := h.sessions.SetLastApplied(ctx, p.SessionID, p.Timestamp); err != nil {
		// The cart is saved; losing the watermark only means a replay
		// does redundant but idempotent work.
		h.log.Error().Err(err).Str("session_id", p.SessionID).Msg("record last applied timestamp")
	}

	return worker.Success("cart %s synced: %d added, %d updated, %d errored", mode, added, updated, errored)
}

func findLine(lines []models.CartLine, productID int64) int {
	for i := range lines {
		if lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}
