package database

import (
	"context"
	"fmt"
)

// SetPreferences upserts the given keys for a user. Callers are expected
// to have filtered keys through the allow-list already.
func (db *DB) SetPreferences(ctx context.Context, userID int64, prefs map[string]string) error {
	if len(prefs) == 0 {
		return nil
	}

	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin preferences save: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `INSERT INTO user_preferences (user_id, key, value) VALUES (?, ?, ?)
              ON CONFLICT(user_id, key) DO UPDATE SET value = excluded.value`
	for key, value := range prefs {
		if _, err := tx.ExecContext(ctx, query, userID, key, value); err != nil {
			return fmt.Errorf("upsert preference %s: %w", key, err)
		}
	}

	return tx.Commit()
}

func (db *DB) GetPreferences(ctx context.Context, userID int64) (map[string]string, error) {
	rows, err := db.db.QueryContext(ctx,
		`SELECT key, value FROM user_preferences WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	defer rows.Close()

	prefs := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan preference: %w", err)
		}
		prefs[key] = value
	}
	return prefs, rows.Err()
}
