// Package handler implements the per-type apply logic for queued offline
// mutations. Every handler is idempotent with respect to re-application
// of an identical payload.
package handler

import (
	"voyago/internal/domain"
	"voyago/internal/models"
	"voyago/internal/worker"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Registry builds the full type -> handler mapping consumed by the
// dispatcher. The mapping is fixed here, at construction time.
func Registry(
	repo domain.Repository,
	sessions domain.SessionStateRepository,
	notifier domain.Notifier,
	bus domain.EventPublisher,
	logger *zerolog.Logger,
) map[string]worker.Handler {
	validate := validator.New()

	return map[string]worker.Handler{
		models.TypeReservation:      NewReservationHandler(repo, notifier, bus, validate, logger),
		models.TypeCart:             NewCartHandler(repo, sessions, validate, logger),
		models.TypeUserPreferences:  NewPreferencesHandler(repo, logger),
		models.TypeFavorites:        NewFavoritesHandler(repo, validate, logger),
		models.TypeViewedExcursions: NewViewedHandler(repo, logger),
		models.TypeLoyaltyPoints:    NewLoyaltyHandler(repo, validate, logger),
	}
}

func componentLogger(logger *zerolog.Logger, name string) zerolog.Logger {
	if logger == nil {
		return zerolog.Nop()
	}
	return logger.With().Str("component", name).Logger()
}
