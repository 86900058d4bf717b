package database

import (
	"context"
	"os"
	"testing"

	"voyago/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	logger := zerolog.New(os.Stdout)
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	db.SetProducts(testProducts())
	return db
}

func testProducts() []models.Product {
	return []models.Product{
		{ID: 42, Name: "Coastal Kayak Tour", Capacity: 10, Price: 59.90, SortOrder: 1, IsActive: true},
		{ID: 7, Name: "Old Town Walk", Capacity: 25, Price: 19, SortOrder: 2, IsActive: true},
		{ID: 99, Name: "Retired Tour", Capacity: 5, SortOrder: 3, IsActive: false},
	}
}

func TestProductCatalog(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	p, ok := db.GetProductByID(42)
	require.True(t, ok)
	assert.Equal(t, "Coastal Kayak Tour", p.Name)

	_, ok = db.GetProductByID(12345)
	assert.False(t, ok)

	active := db.GetActiveProducts()
	require.Len(t, active, 2)
	assert.Equal(t, int64(42), active[0].ID)
	assert.Equal(t, int64(7), active[1].ID)
}

func TestUserCRUD(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	user := &models.User{Name: "Anna", Email: "anna@example.com", Points: 100}
	require.NoError(t, db.CreateUser(ctx, user))
	require.NotZero(t, user.ID)

	got, err := db.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Anna", got.Name)
	assert.Equal(t, int64(100), got.Points)

	_, err = db.GetUserByID(ctx, 9999)
	assert.ErrorIs(t, err, ErrUserNotFound)

	require.NoError(t, db.UpdateUserActivity(ctx, user.ID))
}
