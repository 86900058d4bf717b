package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"voyago/internal/models"
)

// GetCart returns the live cart for a session, or nil when none exists.
func (db *DB) GetCart(ctx context.Context, sessionID string) (*models.Cart, error) {
	var cart models.Cart
	err := db.db.QueryRowContext(ctx,
		`SELECT session_id, total, currency, updated_at FROM carts WHERE session_id = ?`,
		sessionID,
	).Scan(&cart.SessionID, &cart.Total, &cart.Currency, &cart.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	rows, err := db.db.QueryContext(ctx,
		`SELECT product_id, quantity, variation, participants, start_date, end_date, price
         FROM cart_lines WHERE session_id = ? ORDER BY id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("get cart lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line models.CartLine
		var variation sql.NullString
		var participants sql.NullInt64
		var start, end sql.NullTime
		if err := rows.Scan(&line.ProductID, &line.Quantity, &variation, &participants, &start, &end, &line.Price); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		line.Variation = variation.String
		line.Participants = int(participants.Int64)
		if start.Valid {
			line.StartDate = start.Time
		}
		if end.Valid {
			line.EndDate = end.Time
		}
		cart.Lines = append(cart.Lines, line)
	}
	return &cart, rows.Err()
}

// SaveCart rewrites the cart and its lines in one transaction.
func (db *DB) SaveCart(ctx context.Context, cart *models.Cart) error {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cart save: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO carts (session_id, total, currency, updated_at) VALUES (?, ?, ?, ?)
         ON CONFLICT(session_id) DO UPDATE SET total = excluded.total, currency = excluded.currency, updated_at = excluded.updated_at`,
		cart.SessionID, cart.Total, cart.Currency, now,
	)
	if err != nil {
		return fmt.Errorf("upsert cart: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_lines WHERE session_id = ?`, cart.SessionID); err != nil {
		return fmt.Errorf("clear cart lines: %w", err)
	}

	insert := `INSERT INTO cart_lines (session_id, product_id, quantity, variation, participants, start_date, end_date, price)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	for _, line := range cart.Lines {
		if _, err := tx.ExecContext(ctx, insert,
			cart.SessionID, line.ProductID, line.Quantity, line.Variation, line.Participants,
			nullTime(line.StartDate), nullTime(line.EndDate), line.Price,
		); err != nil {
			return fmt.Errorf("insert cart line: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit cart save: %w", err)
	}
	cart.UpdatedAt = now
	return nil
}

func (db *DB) ClearCart(ctx context.Context, sessionID string) error {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cart clear: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_lines WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("clear cart lines: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM carts WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return tx.Commit()
}
