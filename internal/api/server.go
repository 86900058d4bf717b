// Package api exposes the storefront-facing HTTP surface: enqueueing
// offline mutations, triggering and inspecting sync passes, direct
// loyalty sync and the operator export report.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"voyago/internal/config"
	"voyago/internal/domain"
	"voyago/internal/export"
	"voyago/internal/handler"
	"voyago/internal/metrics"
	"voyago/internal/worker"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

type HTTPServer struct {
	cfg      config.APIConfig
	store    domain.QueueStore
	driver   *worker.Driver
	loyalty  *handler.LoyaltyHandler
	reporter *export.Reporter
	validate *validator.Validate
	server   *http.Server
	auth     *HTTPAuth
	log      zerolog.Logger
}

func NewHTTPServer(
	cfg config.APIConfig,
	store domain.QueueStore,
	driver *worker.Driver,
	loyalty *handler.LoyaltyHandler,
	reporter *export.Reporter,
	sessions domain.SessionStateRepository,
	logger *zerolog.Logger,
) *HTTPServer {
	base := zerolog.Nop()
	if logger != nil {
		base = logger.With().Str("component", "http-api").Logger()
	}

	srv := &HTTPServer{
		cfg:      cfg,
		store:    store,
		driver:   driver,
		loyalty:  loyalty,
		reporter: reporter,
		validate: validator.New(),
		log:      base,
	}
	srv.auth = NewHTTPAuth(cfg, sessions)

	r := mux.NewRouter()
	r.HandleFunc("/healthz", srv.handleHealth).Methods(http.MethodGet)

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/sync/enqueue", srv.handleEnqueue).Methods(http.MethodPost)
	v1.HandleFunc("/sync/run", srv.handleRun).Methods(http.MethodPost)
	v1.HandleFunc("/sync/status", srv.handleStatus).Methods(http.MethodGet)
	v1.HandleFunc("/sync/dead-letters", srv.handleDeadLetters).Methods(http.MethodGet)
	v1.HandleFunc("/loyalty/sync", srv.handleLoyaltySync).Methods(http.MethodPost)
	v1.HandleFunc("/export/report", srv.handleExportReport).Methods(http.MethodGet)

	chain := srv.loggingMiddleware(srv.auth.Wrap(r))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           chain,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the full middleware chain, used by tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		metrics.IncHTTP(r.URL.Path)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}
