package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"voyago/internal/models"
)

func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT id, name, email, phone, points, created_at, last_activity FROM users WHERE id = ?`

	var user models.User
	err := db.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Name, &user.Email, &user.Phone, &user.Points, &user.CreatedAt, &user.LastActivity,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (name, email, phone, points, created_at, last_activity)
              VALUES (?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.db.ExecContext(ctx, query,
		user.Name, user.Email, user.Phone, user.Points, now, now,
	)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	user.ID = id
	user.CreatedAt = now
	user.LastActivity = now
	return nil
}

func (db *DB) UpdateUserActivity(ctx context.Context, id int64) error {
	_, err := db.db.ExecContext(ctx, `UPDATE users SET last_activity = ? WHERE id = ?`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("update user activity: %w", err)
	}
	return nil
}
