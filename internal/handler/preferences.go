package handler

import (
	"context"
	"encoding/json"
	"errors"

	"voyago/internal/database"
	"voyago/internal/domain"
	"voyago/internal/worker"

	"github.com/rs/zerolog"
)

// Recognized preference keys by category. Unknown keys are dropped
// silently, never stored verbatim: the allow-list is a robustness
// invariant, not a convenience.
var (
	interfaceKeys = map[string]struct{}{
		"language":        {},
		"currency":        {},
		"theme":           {},
		"homepage_layout": {},
	}
	notificationKeys = map[string]struct{}{
		"notify_email": {},
		"notify_sms":   {},
		"notify_push":  {},
		"newsletter":   {},
	}
	displayKeys = map[string]struct{}{
		"display_density":      {},
		"show_prices_with_tax": {},
		"map_view":             {},
		"results_per_page":     {},
	}
)

// PreferencesPayload carries a per-user key/value bag.
type PreferencesPayload struct {
	UserID      int64             `json:"user_id"`
	Preferences map[string]string `json:"preferences"`
}

type PreferencesHandler struct {
	repo domain.Repository
	log  zerolog.Logger
}

func NewPreferencesHandler(repo domain.Repository, logger *zerolog.Logger) *PreferencesHandler {
	return &PreferencesHandler{repo: repo, log: componentLogger(logger, "preferences-handler")}
}

func (h *PreferencesHandler) Apply(ctx context.Context, payload json.RawMessage) worker.Outcome {
	var p PreferencesPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return worker.Validation("decode preferences payload: %v", err)
	}
	if p.UserID <= 0 {
		return worker.Validation("user_id must be positive, got %d", p.UserID)
	}

	if _, err := h.repo.GetUserByID(ctx, p.UserID); err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return worker.Fatal("user %d does not resolve", p.UserID)
		}
		return worker.Retryable("user lookup: %v", err)
	}

	filtered, dropped := FilterPreferences(p.Preferences)
	if len(filtered) == 0 {
		return worker.Success("no recognized preference keys (%d dropped)", dropped)
	}

	if err := h.repo.SetPreferences(ctx, p.UserID, filtered); err != nil {
		return worker.Retryable("save preferences: %v", err)
	}

	return worker.Success("%d preferences applied, %d dropped", len(filtered), dropped)
}

// FilterPreferences keeps only allow-listed keys and reports how many
// were dropped.
func FilterPreferences(prefs map[string]string) (map[string]string, int) {
	filtered := make(map[string]string, len(prefs))
	dropped := 0
	for key, value := range prefs {
		if allowedPreferenceKey(key) {
			filtered[key] = value
		} else {
			dropped++
		}
	}
	return filtered, dropped
}

func allowedPreferenceKey(key string) bool {
	if _, ok := interfaceKeys[key]; ok {
		return true
	}
	if _, ok := notificationKeys[key]; ok {
		return true
	}
	_, ok := displayKeys[key]
	return ok
}
