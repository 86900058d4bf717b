package database

import (
	"context"
	"fmt"
	"time"

	"voyago/internal/models"
)

// AppendLedgerEntry inserts a loyalty transaction and credits the user's
// balance in one transaction. The UNIQUE constraint on offline_id makes
// replay a no-op: a duplicate reports applied=false and credits nothing.
func (db *DB) AppendLedgerEntry(ctx context.Context, ltx *models.LoyaltyTransaction) (bool, error) {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin ledger append: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	createdAt := ltx.Timestamp
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	result, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO loyalty_ledger (offline_id, user_id, points, action, source, status, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ltx.OfflineID, ltx.UserID, ltx.Points, ltx.Action, ltx.Source, models.LedgerApplied, createdAt,
	)
	if err != nil {
		return false, fmt.Errorf("append ledger entry: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("ledger rows affected: %w", err)
	}
	if inserted == 0 {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET points = points + ? WHERE id = ?`, ltx.Points, ltx.UserID,
	); err != nil {
		return false, fmt.Errorf("credit points: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit ledger append: %w", err)
	}
	return true, nil
}

// FlushPendingLedger applies any ledger rows still marked pending (left
// over from interrupted flows) to the user's balance.
func (db *DB) FlushPendingLedger(ctx context.Context, userID int64) (int, error) {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin ledger flush: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	rows, err := tx.QueryContext(ctx,
		`SELECT id, points FROM loyalty_ledger WHERE user_id = ? AND status = ?`,
		userID, models.LedgerPending,
	)
	if err != nil {
		return 0, fmt.Errorf("select pending ledger: %w", err)
	}

	type pending struct {
		id     int64
		points int64
	}
	var entries []pending
	for rows.Next() {
		var p pending
		if err := rows.Scan(&p.id, &p.points); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan pending ledger: %w", err)
		}
		entries = append(entries, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, p := range entries {
		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET points = points + ? WHERE id = ?`, p.points, userID,
		); err != nil {
			return 0, fmt.Errorf("credit pending points: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE loyalty_ledger SET status = ? WHERE id = ?`, models.LedgerApplied, p.id,
		); err != nil {
			return 0, fmt.Errorf("mark ledger applied: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit ledger flush: %w", err)
	}
	return len(entries), nil
}

func (db *DB) GetPointBalance(ctx context.Context, userID int64) (int64, error) {
	var points int64
	err := db.db.QueryRowContext(ctx, `SELECT points FROM users WHERE id = ?`, userID).Scan(&points)
	if err != nil {
		return 0, fmt.Errorf("get point balance: %w", err)
	}
	return points, nil
}
