package handler

import (
	"context"
	"encoding/json"
	"errors"

	"voyago/internal/database"
	"voyago/internal/domain"
	"voyago/internal/models"
	"voyago/internal/worker"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// LoyaltyPayload carries a batch of offline point transactions.
type LoyaltyPayload struct {
	UserID       int64                      `json:"user_id" validate:"required,gt=0"`
	Transactions []models.LoyaltyTransaction `json:"transactions" validate:"required,min=1"`
}

// BatchResult reports the batch application outcome; it doubles as the
// response body of the direct loyalty sync endpoint.
type BatchResult struct {
	Synced        int      `json:"synced"`
	Failed        int      `json:"failed"`
	SyncedIDs     []string `json:"synced_ids"`
	CurrentPoints int64    `json:"current_points"`
}

type LoyaltyHandler struct {
	repo     domain.Repository
	validate *validator.Validate
	log      zerolog.Logger
}

func NewLoyaltyHandler(repo domain.Repository, validate *validator.Validate, logger *zerolog.Logger) *LoyaltyHandler {
	return &LoyaltyHandler{
		repo:     repo,
		validate: validate,
		log:      componentLogger(logger, "loyalty-handler"),
	}
}

func (h *LoyaltyHandler) Apply(ctx context.Context, payload json.RawMessage) worker.Outcome {
	var p LoyaltyPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return worker.Validation("decode loyalty payload: %v", err)
	}
	if err := h.validate.Struct(p); err != nil {
		return worker.Validation("invalid loyalty payload: %v", err)
	}

	result, err := h.SyncBatch(ctx, p.UserID, p.Transactions)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return worker.Fatal("user %d does not resolve", p.UserID)
		}
		return worker.Retryable("loyalty batch: %v", err)
	}

	return worker.Success("%d transactions synced, %d failed, balance %d",
		result.Synced, result.Failed, result.CurrentPoints)
}

// SyncBatch applies a transaction batch for a user. It is shared by the
// queue handler and the direct loyalty sync endpoint. Replays are safe:
// the ledger dedups on offline id, so partially applied batches can be
// retried wholesale.
func (h *LoyaltyHandler) SyncBatch(ctx context.Context, userID int64, txs []models.LoyaltyTransaction) (*BatchResult, error) {
	if _, err := h.repo.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}

	result := &BatchResult{SyncedIDs: []string{}}
	for _, tx := range txs {
		if tx.OfflineID == "" || tx.Points <= 0 {
			result.Failed++
			h.log.Warn().Int64("user_id", userID).Str("offline_id", tx.OfflineID).
				Int64("points", tx.Points).Msg("invalid loyalty transaction skipped")
			continue
		}

		tx.UserID = userID
		applied, err := h.repo.AppendLedgerEntry(ctx, &tx)
		if err != nil {
			return nil, err
		}
		// A duplicate offline id still acknowledges as synced: the credit
		// happened on an earlier delivery.
		result.Synced++
		result.SyncedIDs = append(result.SyncedIDs, tx.OfflineID)
		if !applied {
			h.log.Debug().Str("offline_id", tx.OfflineID).Msg("duplicate loyalty transaction, not re-credited")
		}
	}

	if flushed, err := h.repo.FlushPendingLedger(ctx, userID); err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("flush pending ledger")
	} else if flushed > 0 {
		h.log.Info().Int64("user_id", userID).Int("flushed", flushed).Msg("pending ledger entries applied")
	}

	balance, err := h.repo.GetPointBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	result.CurrentPoints = balance
	return result, nil
}
