package handler

import (
	"context"
	"encoding/json"

	"voyago/internal/domain"
	"voyago/internal/models"
	"voyago/internal/resolve"
	"voyago/internal/worker"

	"github.com/rs/zerolog"
)

// ViewedPayload contributes client-side browsing history.
type ViewedPayload struct {
	UserID  int64                    `json:"user_id"`
	Entries []models.ViewedExcursion `json:"viewed"`
}

type ViewedHandler struct {
	repo domain.Repository
	log  zerolog.Logger
}

func NewViewedHandler(repo domain.Repository, logger *zerolog.Logger) *ViewedHandler {
	return &ViewedHandler{repo: repo, log: componentLogger(logger, "viewed-handler")}
}

func (h *ViewedHandler) Apply(ctx context.Context, payload json.RawMessage) worker.Outcome {
	var p ViewedPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return worker.Validation("decode viewed payload: %v", err)
	}
	if p.UserID <= 0 {
		return worker.Validation("user_id must be positive, got %d", p.UserID)
	}
	if len(p.Entries) == 0 {
		return worker.Success("empty viewed history, nothing to merge")
	}

	existing, err := h.repo.GetViewedHistory(ctx, p.UserID)
	if err != nil {
		return worker.Retryable("viewed history lookup: %v", err)
	}

	merged := resolve.MergeTimestamped(existing, p.Entries, models.ViewedHistoryLimit)
	if err := h.repo.SaveViewedHistory(ctx, p.UserID, merged); err != nil {
		return worker.Retryable("save viewed history: %v", err)
	}

	return worker.Success("viewed history merged: %d entries kept", len(merged))
}
