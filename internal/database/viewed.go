package database

import (
	"context"
	"fmt"

	"voyago/internal/models"
)

func (db *DB) GetViewedHistory(ctx context.Context, userID int64) ([]models.ViewedExcursion, error) {
	rows, err := db.db.QueryContext(ctx,
		`SELECT product_id, viewed_at FROM viewed_excursions WHERE user_id = ? ORDER BY viewed_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("get viewed history: %w", err)
	}
	defer rows.Close()

	var entries []models.ViewedExcursion
	for rows.Next() {
		var e models.ViewedExcursion
		if err := rows.Scan(&e.ProductID, &e.ViewedAt); err != nil {
			return nil, fmt.Errorf("scan viewed entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SaveViewedHistory rewrites the user's history wholesale: the handler
// already merged, sorted, and truncated it.
func (db *DB) SaveViewedHistory(ctx context.Context, userID int64, entries []models.ViewedExcursion) error {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin viewed save: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM viewed_excursions WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear viewed history: %w", err)
	}

	insert := `INSERT INTO viewed_excursions (user_id, product_id, viewed_at) VALUES (?, ?, ?)`
	for _, e := range entries {
		if _, err := tx.ExecContext(ctx, insert, userID, e.ProductID, e.ViewedAt); err != nil {
			return fmt.Errorf("insert viewed entry %d: %w", e.ProductID, err)
		}
	}

	return tx.Commit()
}
