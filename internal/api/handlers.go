package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"voyago/internal/database"
	"voyago/internal/models"
)

// EnqueueRequest is an offline mutation submitted by the storefront.
type EnqueueRequest struct {
	Type    string          `json:"type" validate:"required"`
	Payload json.RawMessage `json:"payload" validate:"required"`
}

func (s *HTTPServer) handleEnqueue(w http.ResponseWriter, r *http.Request) {
	var req EnqueueRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}
	if !json.Valid(req.Payload) {
		writeError(w, http.StatusBadRequest, "payload must be valid JSON")
		return
	}

	id, err := s.store.Enqueue(r.Context(), strings.TrimSpace(req.Type), req.Payload)
	if err != nil {
		s.log.Error().Err(err).Str("type", req.Type).Msg("enqueue sync item")
		writeError(w, http.StatusInternalServerError, "failed to enqueue item")
		return
	}

	// Nudge the driver so a freshly queued item does not wait for the
	// next periodic tick.
	if s.driver != nil {
		s.driver.Wake()
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"success": true,
		"sync_id": id,
	})
}

func (s *HTTPServer) handleRun(w http.ResponseWriter, r *http.Request) {
	if s.driver == nil {
		writeError(w, http.StatusServiceUnavailable, "sync driver is not running")
		return
	}

	stats := s.driver.RunPass(r.Context())
	writeJSON(w, http.StatusOK, stats)
}

func (s *HTTPServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	pending, err := s.store.CountPending(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count pending items")
		return
	}

	resp := map[string]any{"pending": pending}
	if s.driver != nil {
		resp["last_pass"] = s.driver.LastPass()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *HTTPServer) handleDeadLetters(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	letters, err := s.store.ListDeadLetters(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list dead letters")
		return
	}
	if letters == nil {
		letters = []models.DeadLetter{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"dead_letters": letters})
}

// LoyaltySyncRequest applies a point batch directly, bypassing the queue.
type LoyaltySyncRequest struct {
	UserID       int64                       `json:"user_id" validate:"required,gt=0"`
	Transactions []models.LoyaltyTransaction `json:"transactions" validate:"required,min=1"`
}

func (s *HTTPServer) handleLoyaltySync(w http.ResponseWriter, r *http.Request) {
	var req LoyaltySyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	result, err := s.loyalty.SyncBatch(r.Context(), req.UserID, req.Transactions)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		s.log.Error().Err(err).Int64("user_id", req.UserID).Msg("loyalty sync")
		writeError(w, http.StatusInternalServerError, "failed to sync loyalty points")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *HTTPServer) handleExportReport(w http.ResponseWriter, r *http.Request) {
	if s.reporter == nil {
		writeError(w, http.StatusServiceUnavailable, "export is not configured")
		return
	}

	to := time.Now().AddDate(0, 0, 1)
	from := to.AddDate(0, 0, -31)
	var err error
	if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
		if from, err = time.Parse("2006-01-02", raw); err != nil {
			writeError(w, http.StatusBadRequest, "invalid from date; expected YYYY-MM-DD")
			return
		}
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("to")); raw != "" {
		if to, err = time.Parse("2006-01-02", raw); err != nil {
			writeError(w, http.StatusBadRequest, "invalid to date; expected YYYY-MM-DD")
			return
		}
	}
	if !to.After(from) {
		writeError(w, http.StatusBadRequest, "to must be after from")
		return
	}

	f, err := s.reporter.Build(r.Context(), from, to)
	if err != nil {
		s.log.Error().Err(err).Msg("build export report")
		writeError(w, http.StatusInternalServerError, "failed to build report")
		return
	}
	defer f.Close()

	fileName := fmt.Sprintf("sync_report_%s_to_%s.xlsx",
		from.Format("2006-01-02"), to.Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	if err := f.Write(w); err != nil {
		s.log.Error().Err(err).Msg("stream export report")
	}
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.CountPending(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "storage unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
