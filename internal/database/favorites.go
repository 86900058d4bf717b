package database

import (
	"context"
	"fmt"
)

func (db *DB) GetFavorites(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := db.db.QueryContext(ctx,
		`SELECT product_id FROM favorites WHERE user_id = ? ORDER BY product_id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("get favorites: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ReplaceFavorites swaps the user's whole favorites set in one transaction.
func (db *DB) ReplaceFavorites(ctx context.Context, userID int64, productIDs []int64) error {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin favorites replace: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM favorites WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear favorites: %w", err)
	}

	insert := `INSERT OR IGNORE INTO favorites (user_id, product_id) VALUES (?, ?)`
	for _, id := range productIDs {
		if _, err := tx.ExecContext(ctx, insert, userID, id); err != nil {
			return fmt.Errorf("insert favorite %d: %w", id, err)
		}
	}

	return tx.Commit()
}
