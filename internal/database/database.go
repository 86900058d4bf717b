package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"voyago/internal/models"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrProductNotFound = errors.New("product not found")
	ErrNotAvailable    = errors.New("product not available for the requested date")
)

// DB wraps the sqlite connection plus the in-memory product catalog.
// The catalog comes from configuration at startup, not from a table.
type DB struct {
	db *sql.DB

	mu             sync.RWMutex
	products       map[int64]models.Product
	sortedProducts []models.Product

	// queueMu serializes queue rewrites against concurrent enqueues on
	// top of the sqlite transaction.
	queueMu sync.Mutex

	log zerolog.Logger
}

func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("create tables: %w", err)
	}

	base := zerolog.Nop()
	if logger != nil {
		base = logger.With().Str("component", "database").Logger()
	}
	base.Info().Str("path", path).Msg("database initialized")

	return &DB{
		db:       db,
		products: make(map[int64]models.Product),
		log:      base,
	}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            email TEXT,
            phone TEXT,
            points INTEGER NOT NULL DEFAULT 0,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            last_activity DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS sync_queue (
            id TEXT PRIMARY KEY,
            item_type TEXT NOT NULL,
            payload TEXT NOT NULL,
            enqueued_at DATETIME NOT NULL,
            last_attempt_at DATETIME,
            attempts INTEGER NOT NULL DEFAULT 0
        )`,
		`CREATE TABLE IF NOT EXISTS dead_letters (
            id TEXT PRIMARY KEY,
            item_id TEXT NOT NULL,
            item_type TEXT NOT NULL,
            payload TEXT NOT NULL,
            reason TEXT NOT NULL,
            attempts INTEGER NOT NULL,
            failed_at DATETIME NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS reservations (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            offline_id TEXT UNIQUE NOT NULL,
            product_id INTEGER NOT NULL,
            product_name TEXT NOT NULL,
            start_date DATETIME NOT NULL,
            end_date DATETIME,
            participants INTEGER NOT NULL,
            extras TEXT,
            customer_name TEXT,
            customer_phone TEXT,
            customer_email TEXT,
            comment TEXT,
            origin TEXT NOT NULL DEFAULT 'offline',
            status TEXT NOT NULL DEFAULT 'pending',
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS carts (
            session_id TEXT PRIMARY KEY,
            total REAL NOT NULL DEFAULT 0,
            currency TEXT NOT NULL DEFAULT 'EUR',
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS cart_lines (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            session_id TEXT NOT NULL,
            product_id INTEGER NOT NULL,
            quantity INTEGER NOT NULL,
            variation TEXT,
            participants INTEGER,
            start_date DATETIME,
            end_date DATETIME,
            price REAL NOT NULL DEFAULT 0,
            UNIQUE(session_id, product_id)
        )`,
		`CREATE TABLE IF NOT EXISTS user_preferences (
            user_id INTEGER NOT NULL,
            key TEXT NOT NULL,
            value TEXT NOT NULL,
            UNIQUE(user_id, key)
        )`,
		`CREATE TABLE IF NOT EXISTS favorites (
            user_id INTEGER NOT NULL,
            product_id INTEGER NOT NULL,
            UNIQUE(user_id, product_id)
        )`,
		`CREATE TABLE IF NOT EXISTS viewed_excursions (
            user_id INTEGER NOT NULL,
            product_id INTEGER NOT NULL,
            viewed_at DATETIME NOT NULL,
            UNIQUE(user_id, product_id)
        )`,
		`CREATE TABLE IF NOT EXISTS loyalty_ledger (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            offline_id TEXT UNIQUE NOT NULL,
            user_id INTEGER NOT NULL,
            points INTEGER NOT NULL,
            action TEXT NOT NULL,
            source TEXT,
            status TEXT NOT NULL DEFAULT 'applied',
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,

		`CREATE INDEX IF NOT EXISTS idx_sync_queue_enqueued_at ON sync_queue(enqueued_at)`,
		`CREATE INDEX IF NOT EXISTS idx_dead_letters_failed_at ON dead_letters(failed_at)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_product ON reservations(product_id, start_date)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_status ON reservations(status)`,
		`CREATE INDEX IF NOT EXISTS idx_cart_lines_session ON cart_lines(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_favorites_user ON favorites(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_viewed_user ON viewed_excursions(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_user ON loyalty_ledger(user_id, status)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("exec %q: %w", query, err)
		}
	}
	return nil
}

// SetProducts loads the catalog used for availability and existence checks.
func (db *DB) SetProducts(products []models.Product) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.products = make(map[int64]models.Product, len(products))
	for _, p := range products {
		db.products[p.ID] = p
	}

	sorted := append([]models.Product(nil), products...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].SortOrder < sorted[j].SortOrder })
	db.sortedProducts = sorted
}

func (db *DB) GetProductByID(id int64) (*models.Product, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	p, ok := db.products[id]
	if !ok {
		return nil, false
	}
	return &p, true
}

func (db *DB) GetActiveProducts() []*models.Product {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var out []*models.Product
	for i := range db.sortedProducts {
		if db.sortedProducts[i].IsActive {
			p := db.sortedProducts[i]
			out = append(out, &p)
		}
	}
	return out
}

func (db *DB) Close() error {
	return db.db.Close()
}
