package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"voyago/internal/api"
	"voyago/internal/config"
	"voyago/internal/database"
	"voyago/internal/domain"
	"voyago/internal/events"
	"voyago/internal/export"
	"voyago/internal/handler"
	"voyago/internal/logging"
	"voyago/internal/metrics"
	"voyago/internal/models"
	"voyago/internal/notify"
	"voyago/internal/probe"
	"voyago/internal/repository"
	"voyago/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, products, logger, closer, loadErr := loadConfigAndLogger()
	if loadErr != nil {
		return loadErr
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	if err := prepareDirectories(cfg, &logger); err != nil {
		return err
	}

	db, err := initDatabase(cfg, products, &logger)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, sessions, sink := initSessionState(ctx, cfg, &logger)
	if redisClient != nil {
		defer func() { _ = repository.Close(redisClient) }()
	}

	prober := probe.New(cfg.Sync.ProbeEndpoints, cfg.Sync.ProbeTimeout(), &logger)
	notifier := notify.NewNotifier(redisClient, &logger)
	eventBus := events.NewEventBus()
	subscribeSyncEvents(eventBus, &logger)

	handlers := handler.Registry(db, sessions, notifier, eventBus, &logger)
	dispatcher := worker.NewDispatcher(handlers, &logger)

	policy := worker.RetryPolicy{
		MaxAttempts: cfg.Sync.MaxAttempts,
		BaseDelay:   cfg.Sync.BackoffBase(),
		Factor:      models.BackoffFactor,
	}
	driver := worker.NewDriver(db, prober, dispatcher, policy, sink, eventBus, cfg.Sync.Interval(), &logger)
	go driver.Start(ctx)

	startMetrics(ctx, cfg, &logger)

	if cfg.API.Enabled && cfg.API.HTTP.Enabled {
		loyalty := handlers[models.TypeLoyaltyPoints].(*handler.LoyaltyHandler)
		reporter := export.NewReporter(db, cfg.Exports.Path, &logger)
		apiServer := api.NewHTTPServer(cfg.API, db, driver, loyalty, reporter, sessions, &logger)
		go func() {
			if err := apiServer.Start(); err != nil {
				logger.Error().Err(err).Msg("API server error")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = apiServer.Shutdown(shutdownCtx)
		}()
	}

	logger.Info().Msg("sync service started")
	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")
	return nil
}

func loadConfigAndLogger() (*config.Config, []models.Product, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, zerolog.Logger{}, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, zerolog.Logger{}, nil, err
	}
	logger := baseLogger.With().Str("component", "syncd-main").Logger()

	catalogPath := os.Getenv("CATALOG_PATH")
	if catalogPath == "" {
		catalogPath = cfg.Catalog.Path
	}
	products, err := config.LoadProducts(catalogPath)
	if err != nil {
		logger.Error().Err(err).Str("path", catalogPath).Msg("load product catalog")
		return nil, nil, zerolog.Logger{}, closer, err
	}

	return cfg, products, logger, closer, nil
}

func prepareDirectories(cfg *config.Config, logger *zerolog.Logger) error {
	if cfg == nil {
		return os.ErrInvalid
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		logger.Error().Err(err).Msg("create database directory")
		return err
	}
	if err := os.MkdirAll(cfg.Exports.Path, 0o755); err != nil {
		logger.Error().Err(err).Msg("create export directory")
		return err
	}
	return nil
}

func initDatabase(cfg *config.Config, products []models.Product, logger *zerolog.Logger) (*database.DB, error) {
	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		logger.Error().Err(err).Msg("initialize database")
		return nil, err
	}
	db.SetProducts(products)
	return db, nil
}

// initSessionState wires session bookkeeping with redis as primary and
// in-process memory as fallback. With no redis configured everything
// runs on the memory repository and dead letters stay sqlite-only.
func initSessionState(
	ctx context.Context,
	cfg *config.Config,
	logger *zerolog.Logger,
) (*goredis.Client, *repository.FailoverSessionRepository, domain.DeadLetterSink) {
	ttl := cfg.Sync.SessionTTL()
	fallback := repository.NewMemorySessionRepository(ttl)

	var redisClient *goredis.Client
	if cfg.Redis.Address != "" {
		redisClient = repository.NewRedisClient(cfg.Redis)
		if err := repository.Ping(ctx, redisClient); err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, starting on memory fallback")
		}
	}

	primary := repository.NewRedisSessionRepository(redisClient, ttl)
	sessions := repository.NewFailoverSessionRepository(primary, fallback, logger)

	var sink domain.DeadLetterSink
	if redisClient != nil {
		sink = repository.NewRedisDeadLetterSink(redisClient)
	}
	return redisClient, sessions, sink
}

func subscribeSyncEvents(bus *events.EventBus, logger *zerolog.Logger) {
	log := logger.With().Str("component", "event-log").Logger()

	itemHandler := func(ev *events.Event) error {
		var payload events.ItemEventPayload
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			log.Error().Err(err).Str("event", ev.Type).Msg("decode event payload")
			return nil
		}
		log.Info().Str("event", ev.Type).Str("item_id", payload.ItemID).
			Str("type", payload.Type).Str("summary", payload.Summary).Msg("sync event")
		return nil
	}

	bus.Subscribe(events.EventItemCompleted, itemHandler)
	bus.Subscribe(events.EventItemDeadLettered, itemHandler)
	bus.Subscribe(events.EventReservationCreated, func(ev *events.Event) error {
		var payload events.ReservationEventPayload
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			log.Error().Err(err).Str("event", ev.Type).Msg("decode event payload")
			return nil
		}
		log.Info().Int64("reservation_id", payload.ReservationID).
			Str("offline_id", payload.OfflineID).Msg("reservation created from offline draft")
		return nil
	})
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
