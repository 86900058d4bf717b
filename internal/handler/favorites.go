package handler

import (
	"context"
	"encoding/json"

	"voyago/internal/domain"
	"voyago/internal/models"
	"voyago/internal/resolve"
	"voyago/internal/worker"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// FavoritesPayload reconciles a user's favorites set. In replace mode
// ProductIDs wins wholesale; in merge mode Ops are applied in order.
type FavoritesPayload struct {
	UserID     int64               `json:"user_id" validate:"required,gt=0"`
	Mode       string              `json:"mode" validate:"required,oneof=replace merge"`
	ProductIDs []int64             `json:"product_ids"`
	Ops        []models.FavoriteOp `json:"ops"`
}

type FavoritesHandler struct {
	repo     domain.Repository
	validate *validator.Validate
	log      zerolog.Logger
}

func NewFavoritesHandler(repo domain.Repository, validate *validator.Validate, logger *zerolog.Logger) *FavoritesHandler {
	return &FavoritesHandler{
		repo:     repo,
		validate: validate,
		log:      componentLogger(logger, "favorites-handler"),
	}
}

func (h *FavoritesHandler) Apply(ctx context.Context, payload json.RawMessage) worker.Outcome {
	var p FavoritesPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return worker.Validation("decode favorites payload: %v", err)
	}
	if err := h.validate.Struct(p); err != nil {
		return worker.Validation("invalid favorites payload: %v", err)
	}

	switch p.Mode {
	case "replace":
		return h.applyReplace(ctx, p)
	default:
		return h.applyMerge(ctx, p)
	}
}

// applyReplace swaps the whole set; every id must resolve first.
func (h *FavoritesHandler) applyReplace(ctx context.Context, p FavoritesPayload) worker.Outcome {
	for _, id := range p.ProductIDs {
		if _, ok := h.repo.GetProductByID(id); !ok {
			return worker.Validation("favorites replace references unknown product %d", id)
		}
	}

	if err := h.repo.ReplaceFavorites(ctx, p.UserID, p.ProductIDs); err != nil {
		return worker.Retryable("replace favorites: %v", err)
	}
	return worker.Success("favorites replaced with %d items", len(p.ProductIDs))
}

// applyMerge applies ordered add/remove ops; each op is validated on its
// own, so one bad id does not sink the rest.
func (h *FavoritesHandler) applyMerge(ctx context.Context, p FavoritesPayload) worker.Outcome {
	existing, err := h.repo.GetFavorites(ctx, p.UserID)
	if err != nil {
		return worker.Retryable("favorites lookup: %v", err)
	}

	valid := make([]models.FavoriteOp, 0, len(p.Ops))
	skipped := 0
	for _, op := range p.Ops {
		if op.Action == models.FavoriteAdd {
			if _, ok := h.repo.GetProductByID(op.ProductID); !ok {
				skipped++
				h.log.Warn().Int64("user_id", p.UserID).Int64("product_id", op.ProductID).
					Msg("favorites add references unknown product, skipped")
				continue
			}
		}
		valid = append(valid, op)
	}

	merged := resolve.MergeSet(existing, valid)
	if err := h.repo.ReplaceFavorites(ctx, p.UserID, merged); err != nil {
		return worker.Retryable("save merged favorites: %v", err)
	}

	return worker.Success("favorites merged: %d ops applied, %d skipped, %d total", len(valid), skipped, len(merged))
}
