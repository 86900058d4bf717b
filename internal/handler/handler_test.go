package handler

import (
	"context"
	"os"
	"testing"
	"time"

	"voyago/internal/database"
	"voyago/internal/models"
	"voyago/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type captureNotifier struct {
	notified []*models.Reservation
}

func (n *captureNotifier) NotifyReservation(ctx context.Context, res *models.Reservation) error {
	n.notified = append(n.notified, res)
	return nil
}

type testEnv struct {
	db       *database.DB
	sessions *repository.MemorySessionRepository
	notifier *captureNotifier
	validate *validator.Validate
	logger   zerolog.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	logger := zerolog.New(os.Stdout)
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	db.SetProducts([]models.Product{
		{ID: 42, Name: "Coastal Kayak Tour", Capacity: 10, Price: 59.90, SortOrder: 1, IsActive: true},
		{ID: 7, Name: "Old Town Walk", Capacity: 25, Price: 19, SortOrder: 2, IsActive: true},
		{ID: 1, Name: "Wine Tasting", Capacity: 12, Price: 35, SortOrder: 3, IsActive: true},
		{ID: 2, Name: "Boat Trip", Capacity: 30, Price: 45, SortOrder: 4, IsActive: true},
		{ID: 3, Name: "City Bikes", Capacity: 15, Price: 12, SortOrder: 5, IsActive: true},
		{ID: 4, Name: "Sunset Cruise", Capacity: 20, Price: 65, SortOrder: 6, IsActive: true},
	})

	return &testEnv{
		db:       db,
		sessions: repository.NewMemorySessionRepository(time.Hour),
		notifier: &captureNotifier{},
		validate: validator.New(),
		logger:   logger,
	}
}

func (e *testEnv) seedUser(t *testing.T, name string, points int64) *models.User {
	user := &models.User{Name: name, Points: points}
	require.NoError(t, e.db.CreateUser(context.Background(), user))
	return user
}
