package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"voyago/internal/models"

	"github.com/google/uuid"
)

// Enqueue appends a new sync item and returns its id. A persistence
// failure propagates so the caller can tell the client to resubmit.
func (db *DB) Enqueue(ctx context.Context, itemType string, payload json.RawMessage) (string, error) {
	db.queueMu.Lock()
	defer db.queueMu.Unlock()

	id := uuid.NewString()
	query := `INSERT INTO sync_queue (id, item_type, payload, enqueued_at, last_attempt_at, attempts)
              VALUES (?, ?, ?, ?, NULL, 0)`
	_, err := db.db.ExecContext(ctx, query, id, itemType, string(payload), time.Now())
	if err != nil {
		return "", fmt.Errorf("enqueue sync item: %w", err)
	}
	return id, nil
}

// ListAll returns the whole queue ordered by enqueue time.
func (db *DB) ListAll(ctx context.Context) ([]models.SyncItem, error) {
	query := `SELECT id, item_type, payload, enqueued_at, last_attempt_at, attempts
              FROM sync_queue ORDER BY enqueued_at ASC`
	rows, err := db.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list sync items: %w", err)
	}
	defer rows.Close()

	var items []models.SyncItem
	for rows.Next() {
		item, err := scanSyncItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sync item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ReplaceAll removes the processed snapshot and re-inserts survivors in a
// single transaction. Items enqueued after the snapshot are untouched,
// so a concurrent Enqueue is never lost to a pass rewrite.
func (db *DB) ReplaceAll(ctx context.Context, snapshotIDs []string, survivors []models.SyncItem) error {
	db.queueMu.Lock()
	defer db.queueMu.Unlock()

	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin queue rewrite: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if len(snapshotIDs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(snapshotIDs)), ",")
		args := make([]interface{}, len(snapshotIDs))
		for i, id := range snapshotIDs {
			args[i] = id
		}
		query := fmt.Sprintf(`DELETE FROM sync_queue WHERE id IN (%s)`, placeholders)
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("delete snapshot: %w", err)
		}
	}

	insert := `INSERT INTO sync_queue (id, item_type, payload, enqueued_at, last_attempt_at, attempts)
               VALUES (?, ?, ?, ?, ?, ?)`
	for _, item := range survivors {
		var lastAttempt interface{}
		if !item.LastAttemptAt.IsZero() {
			lastAttempt = item.LastAttemptAt
		}
		if _, err := tx.ExecContext(ctx, insert,
			item.ID, item.Type, string(item.Payload), item.EnqueuedAt, lastAttempt, item.Attempts,
		); err != nil {
			return fmt.Errorf("reinsert item %s: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit queue rewrite: %w", err)
	}
	return nil
}

func (db *DB) RemoveByID(ctx context.Context, id string) error {
	db.queueMu.Lock()
	defer db.queueMu.Unlock()

	if _, err := db.db.ExecContext(ctx, `DELETE FROM sync_queue WHERE id = ?`, id); err != nil {
		return fmt.Errorf("remove sync item %s: %w", id, err)
	}
	return nil
}

func (db *DB) CountPending(ctx context.Context) (int, error) {
	var count int
	err := db.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sync_queue`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count pending: %w", err)
	}
	return count, nil
}

// AddDeadLetter records an item that left the queue without being applied.
func (db *DB) AddDeadLetter(ctx context.Context, item models.SyncItem, reason string) error {
	query := `INSERT INTO dead_letters (id, item_id, item_type, payload, reason, attempts, failed_at)
              VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := db.db.ExecContext(ctx, query,
		uuid.NewString(), item.ID, item.Type, string(item.Payload), reason, item.Attempts, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("add dead letter: %w", err)
	}
	return nil
}

func (db *DB) ListDeadLetters(ctx context.Context, limit int) ([]models.DeadLetter, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT id, item_id, item_type, payload, reason, attempts, failed_at
              FROM dead_letters ORDER BY failed_at DESC LIMIT ?`
	rows, err := db.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list dead letters: %w", err)
	}
	defer rows.Close()

	var letters []models.DeadLetter
	for rows.Next() {
		var dl models.DeadLetter
		var payload string
		if err := rows.Scan(&dl.ID, &dl.ItemID, &dl.Type, &payload, &dl.Reason, &dl.Attempts, &dl.FailedAt); err != nil {
			return nil, fmt.Errorf("scan dead letter: %w", err)
		}
		dl.Payload = json.RawMessage(payload)
		letters = append(letters, dl)
	}
	return letters, rows.Err()
}

// RemoveDeadLetter deletes a dead letter after an operator requeued or
// discarded it.
func (db *DB) RemoveDeadLetter(ctx context.Context, id string) error {
	if _, err := db.db.ExecContext(ctx, `DELETE FROM dead_letters WHERE id = ?`, id); err != nil {
		return fmt.Errorf("remove dead letter %s: %w", id, err)
	}
	return nil
}

func scanSyncItem(rows *sql.Rows) (models.SyncItem, error) {
	var item models.SyncItem
	var payload string
	var lastAttempt sql.NullTime
	if err := rows.Scan(&item.ID, &item.Type, &payload, &item.EnqueuedAt, &lastAttempt, &item.Attempts); err != nil {
		return item, err
	}
	item.Payload = json.RawMessage(payload)
	if lastAttempt.Valid {
		item.LastAttemptAt = lastAttempt.Time
	}
	return item, nil
}
