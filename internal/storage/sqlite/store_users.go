package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/taskhub/internal/storage"
	"github.com/louisbranch/taskhub/internal/user"
)

// CreateUser inserts one user record and returns it with its assigned id.
func (s *Store) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	if err := ctx.Err(); err != nil {
		return user.User{}, err
	}
	if s == nil || s.sqlDB == nil {
		return user.User{}, fmt.Errorf("storage is not configured")
	}
	username := strings.TrimSpace(u.Username)
	if username == "" {
		return user.User{}, fmt.Errorf("username is required")
	}
	if u.PasswordHash == "" {
		return user.User{}, fmt.Errorf("password hash is required")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO users (username, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?)`,
		username,
		u.PasswordHash,
		toMillis(u.CreatedAt),
		toMillis(u.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err, "users.username") {
			return user.User{}, storage.ErrAlreadyExists
		}
		return user.User{}, fmt.Errorf("create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return user.User{}, fmt.Errorf("create user id: %w", err)
	}
	u.ID = id
	u.Username = username
	return u, nil
}

// GetUserByUsername fetches one user record by its unique username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	if err := ctx.Err(); err != nil {
		return user.User{}, err
	}
	if s == nil || s.sqlDB == nil {
		return user.User{}, fmt.Errorf("storage is not configured")
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return user.User{}, fmt.Errorf("username is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, username, password_hash, created_at, updated_at
		   FROM users
		  WHERE username = ?`,
		username,
	)

	var u user.User
	var createdAt int64
	var updatedAt int64
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, storage.ErrNotFound
		}
		return user.User{}, fmt.Errorf("get user by username: %w", err)
	}
	u.CreatedAt = fromMillis(createdAt)
	u.UpdatedAt = fromMillis(updatedAt)
	return u, nil
}

// ListUsers returns all user records in insertion order.
func (s *Store) ListUsers(ctx context.Context) ([]user.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, username, password_hash, created_at, updated_at
		   FROM users
		  ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]user.User, 0)
	for rows.Next() {
		var u user.User
		var createdAt int64
		var updatedAt int64
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		u.CreatedAt = fromMillis(createdAt)
		u.UpdatedAt = fromMillis(updatedAt)
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
