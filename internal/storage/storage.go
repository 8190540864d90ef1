// Package storage defines persistence contracts for taskhub state.
package storage

import (
	"context"
	"errors"

	"github.com/louisbranch/taskhub/internal/task"
	"github.com/louisbranch/taskhub/internal/user"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a uniqueness-constrained record already exists.
	ErrAlreadyExists = errors.New("record already exists")
)

// UserStore persists user records.
type UserStore interface {
	// CreateUser inserts u and returns it with its assigned identifier.
	// Returns ErrAlreadyExists when the username is taken.
	CreateUser(ctx context.Context, u user.User) (user.User, error)
	// GetUserByUsername returns the user with the given username or ErrNotFound.
	GetUserByUsername(ctx context.Context, username string) (user.User, error)
	// ListUsers returns all users in insertion order.
	ListUsers(ctx context.Context) ([]user.User, error)
}

// TaskStore persists task records scoped to their owning user.
type TaskStore interface {
	// CreateTask inserts t and returns it with its assigned identifier.
	CreateTask(ctx context.Context, t task.Task) (task.Task, error)
	// GetTask returns the task only when it exists and belongs to userID;
	// absence and ownership mismatch both yield ErrNotFound.
	GetTask(ctx context.Context, id, userID int64) (task.Task, error)
	// ListTasks returns the caller's tasks in insertion order.
	ListTasks(ctx context.Context, userID int64) ([]task.Task, error)
	// UpdateTask persists title, description, done and updated_at for the
	// task matching t.ID and t.UserID, or returns ErrNotFound.
	UpdateTask(ctx context.Context, t task.Task) error
	// DeleteTask removes the task matching id and userID, or returns
	// ErrNotFound.
	DeleteTask(ctx context.Context, id, userID int64) error
}
