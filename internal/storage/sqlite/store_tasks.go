package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/taskhub/internal/storage"
	"github.com/louisbranch/taskhub/internal/task"
)

func descriptionToNull(description *string) sql.NullString {
	if description == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *description, Valid: true}
}

func descriptionFromNull(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	description := value.String
	return &description
}

// CreateTask inserts one task record and returns it with its assigned id.
func (s *Store) CreateTask(ctx context.Context, t task.Task) (task.Task, error) {
	if err := ctx.Err(); err != nil {
		return task.Task{}, err
	}
	if s == nil || s.sqlDB == nil {
		return task.Task{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(t.Title) == "" {
		return task.Task{}, fmt.Errorf("title is required")
	}
	if t.UserID <= 0 {
		return task.Task{}, fmt.Errorf("user id is required")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO tasks (title, description, done, user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.Title,
		descriptionToNull(t.Description),
		t.Done,
		t.UserID,
		toMillis(t.CreatedAt),
		toMillis(t.UpdatedAt),
	)
	if err != nil {
		return task.Task{}, fmt.Errorf("create task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return task.Task{}, fmt.Errorf("create task id: %w", err)
	}
	t.ID = id
	return t, nil
}

// GetTask fetches one task owned by userID. A task owned by another user is
// reported as missing.
func (s *Store) GetTask(ctx context.Context, id, userID int64) (task.Task, error) {
	if err := ctx.Err(); err != nil {
		return task.Task{}, err
	}
	if s == nil || s.sqlDB == nil {
		return task.Task{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, title, description, done, user_id, created_at, updated_at
		   FROM tasks
		  WHERE id = ? AND user_id = ?`,
		id,
		userID,
	)
	return scanTask(row.Scan)
}

// ListTasks returns the user's tasks in insertion order.
func (s *Store) ListTasks(ctx context.Context, userID int64) ([]task.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, title, description, done, user_id, created_at, updated_at
		   FROM tasks
		  WHERE user_id = ?
		  ORDER BY id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]task.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("list tasks: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// UpdateTask persists the mutable fields of a task the user owns.
func (s *Store) UpdateTask(ctx context.Context, t task.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("title is required")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE tasks
		    SET title = ?, description = ?, done = ?, updated_at = ?
		  WHERE id = ? AND user_id = ?`,
		t.Title,
		descriptionToNull(t.Description),
		t.Done,
		toMillis(t.UpdatedAt),
		t.ID,
		t.UserID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteTask removes one task the user owns.
func (s *Store) DeleteTask(ctx context.Context, id, userID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`DELETE FROM tasks WHERE id = ? AND user_id = ?`,
		id,
		userID,
	)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanTask(scan func(dest ...any) error) (task.Task, error) {
	var t task.Task
	var description sql.NullString
	var createdAt int64
	var updatedAt int64
	if err := scan(
		&t.ID,
		&t.Title,
		&description,
		&t.Done,
		&t.UserID,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return task.Task{}, storage.ErrNotFound
		}
		return task.Task{}, err
	}
	t.Description = descriptionFromNull(description)
	t.CreatedAt = fromMillis(createdAt)
	t.UpdatedAt = fromMillis(updatedAt)
	return t, nil
}
