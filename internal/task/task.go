// Package task defines the task model and its create/update rules.
package task

import (
	"strings"
	"time"

	apperrors "github.com/louisbranch/taskhub/internal/platform/errors"
)

var (
	// ErrEmptyTitle indicates a missing or blank task title.
	ErrEmptyTitle = apperrors.New(apperrors.CodeTaskTitleRequired, "task title is required")
	// ErrNotFound indicates a task that is absent or owned by another user.
	// The two cases are deliberately indistinguishable to callers.
	ErrNotFound = apperrors.New(apperrors.CodeTaskNotFound, "task not found")
)

// Task represents a to-do item owned by exactly one user.
type Task struct {
	ID          int64
	Title       string
	Description *string
	Done        bool
	UserID      int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateInput describes the fields accepted when creating a task.
type CreateInput struct {
	Title       string
	Description *string
	Done        bool
}

// New validates input and builds a task owned by userID.
func New(input CreateInput, userID int64, now func() time.Time) (Task, error) {
	if now == nil {
		now = time.Now
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return Task{}, ErrEmptyTitle
	}

	createdAt := now().UTC()
	return Task{
		Title:       title,
		Description: input.Description,
		Done:        input.Done,
		UserID:      userID,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}, nil
}

// Patch describes a partial update. Nil fields retain their stored value.
type Patch struct {
	Title       *string
	Description *string
	Done        *bool
}

// Apply overlays the supplied patch fields onto t and bumps UpdatedAt.
// A supplied title must still be non-empty.
func Apply(t Task, patch Patch, now func() time.Time) (Task, error) {
	if now == nil {
		now = time.Now
	}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return Task{}, ErrEmptyTitle
		}
		t.Title = title
	}
	if patch.Description != nil {
		t.Description = patch.Description
	}
	if patch.Done != nil {
		t.Done = *patch.Done
	}
	t.UpdatedAt = now().UTC()
	return t, nil
}
