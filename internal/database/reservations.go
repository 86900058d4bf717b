package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"voyago/internal/models"
)

func (db *DB) GetReservationByOfflineID(ctx context.Context, offlineID string) (*models.Reservation, error) {
	query := `SELECT id, offline_id, product_id, product_name, start_date, end_date, participants,
                     extras, customer_name, customer_phone, customer_email, comment, origin, status,
                     created_at, updated_at
              FROM reservations WHERE offline_id = ?`

	var res models.Reservation
	var endDate sql.NullTime
	var extras sql.NullString
	err := db.db.QueryRowContext(ctx, query, offlineID).Scan(
		&res.ID, &res.OfflineID, &res.ProductID, &res.ProductName, &res.StartDate, &endDate,
		&res.Participants, &extras, &res.CustomerName, &res.CustomerPhone, &res.CustomerEmail,
		&res.Comment, &res.Origin, &res.Status, &res.CreatedAt, &res.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reservation by offline id: %w", err)
	}

	if endDate.Valid {
		res.EndDate = endDate.Time
	}
	if extras.Valid && extras.String != "" {
		if err := json.Unmarshal([]byte(extras.String), &res.Extras); err != nil {
			return nil, fmt.Errorf("decode reservation extras: %w", err)
		}
	}
	return &res, nil
}

func (db *DB) CreateReservation(ctx context.Context, res *models.Reservation) error {
	extras, err := encodeExtras(res.Extras)
	if err != nil {
		return err
	}

	query := `INSERT INTO reservations (
                offline_id, product_id, product_name, start_date, end_date, participants, extras,
                customer_name, customer_phone, customer_email, comment, origin, status, created_at, updated_at
              ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.db.ExecContext(ctx, query,
		res.OfflineID, res.ProductID, res.ProductName, res.StartDate, nullTime(res.EndDate),
		res.Participants, extras, res.CustomerName, res.CustomerPhone, res.CustomerEmail,
		res.Comment, res.Origin, res.Status, now, now,
	)
	if err != nil {
		return fmt.Errorf("create reservation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	res.ID = id
	res.CreatedAt = now
	res.UpdatedAt = now
	return nil
}

func (db *DB) UpdateReservation(ctx context.Context, res *models.Reservation) error {
	extras, err := encodeExtras(res.Extras)
	if err != nil {
		return err
	}

	query := `UPDATE reservations SET
                product_id = ?, product_name = ?, start_date = ?, end_date = ?, participants = ?,
                extras = ?, customer_name = ?, customer_phone = ?, customer_email = ?, comment = ?,
                status = ?, updated_at = ?
              WHERE offline_id = ?`
	now := time.Now()
	_, err = db.db.ExecContext(ctx, query,
		res.ProductID, res.ProductName, res.StartDate, nullTime(res.EndDate), res.Participants,
		extras, res.CustomerName, res.CustomerPhone, res.CustomerEmail, res.Comment,
		res.Status, now, res.OfflineID,
	)
	if err != nil {
		return fmt.Errorf("update reservation: %w", err)
	}
	res.UpdatedAt = now
	return nil
}

// ListReservations returns reservations whose start date falls inside
// the half-open range [from, to), newest first.
func (db *DB) ListReservations(ctx context.Context, from, to time.Time) ([]models.Reservation, error) {
	query := `SELECT id, offline_id, product_id, product_name, start_date, end_date, participants,
                     extras, customer_name, customer_phone, customer_email, comment, origin, status,
                     created_at, updated_at
              FROM reservations
              WHERE date(start_date) >= date(?) AND date(start_date) < date(?)
              ORDER BY start_date DESC, id DESC`

	rows, err := db.db.QueryContext(ctx, query, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	var out []models.Reservation
	for rows.Next() {
		var res models.Reservation
		var endDate sql.NullTime
		var extras sql.NullString
		if err := rows.Scan(
			&res.ID, &res.OfflineID, &res.ProductID, &res.ProductName, &res.StartDate, &endDate,
			&res.Participants, &extras, &res.CustomerName, &res.CustomerPhone, &res.CustomerEmail,
			&res.Comment, &res.Origin, &res.Status, &res.CreatedAt, &res.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		if endDate.Valid {
			res.EndDate = endDate.Time
		}
		if extras.Valid && extras.String != "" {
			if err := json.Unmarshal([]byte(extras.String), &res.Extras); err != nil {
				return nil, fmt.Errorf("decode reservation extras: %w", err)
			}
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// CheckAvailability compares booked participants against the product
// capacity on a given date. Cancelled reservations do not count.
func (db *DB) CheckAvailability(ctx context.Context, productID int64, date time.Time, participants int) (bool, error) {
	db.mu.RLock()
	product, ok := db.products[productID]
	db.mu.RUnlock()
	if !ok {
		return false, ErrProductNotFound
	}
	if !product.IsActive {
		return false, nil
	}

	query := `SELECT COALESCE(SUM(participants), 0) FROM reservations
              WHERE product_id = ? AND date(start_date) = date(?) AND status != ?`
	var booked int64
	err := db.db.QueryRowContext(ctx, query, productID, date.Format("2006-01-02"), models.StatusCancelled).Scan(&booked)
	if err != nil {
		return false, fmt.Errorf("count booked participants: %w", err)
	}

	return booked+int64(participants) <= product.Capacity, nil
}

func encodeExtras(extras []string) (interface{}, error) {
	if len(extras) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(extras)
	if err != nil {
		return nil, fmt.Errorf("encode reservation extras: %w", err)
	}
	return string(raw), nil
}

func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}
