// Package rest implements the taskhub HTTP/JSON API handlers.
package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/louisbranch/taskhub/internal/auth"
	apperrors "github.com/louisbranch/taskhub/internal/platform/errors"
	"github.com/louisbranch/taskhub/internal/storage"
	"github.com/louisbranch/taskhub/internal/task"
	"github.com/louisbranch/taskhub/internal/user"
)

// Handler serves the taskhub API over injected storage and token services.
type Handler struct {
	users  storage.UserStore
	tasks  storage.TaskStore
	tokens *auth.TokenService
	clock  func() time.Time
}

// NewHandler builds an API handler bound to its collaborators.
func NewHandler(users storage.UserStore, tasks storage.TaskStore, tokens *auth.TokenService) *Handler {
	return &Handler{
		users:  users,
		tasks:  tasks,
		tokens: tokens,
		clock:  time.Now,
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type createTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Done        *bool   `json:"done"`
}

type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Done        *bool   `json:"done"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

type taskResponse struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Done        bool    `json:"done"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

func taskToResponse(t task.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Done:        t.Done,
	}
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, apperrors.New(apperrors.CodeInvalidBody, "invalid json body"))
		return
	}

	credentials, err := user.NormalizeCredentials(user.Credentials{
		Username: body.Username,
		Password: body.Password,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	hash, err := auth.HashPassword(credentials.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	now := h.clock().UTC()
	if _, err := h.users.CreateUser(r.Context(), user.User{
		Username:     credentials.Username,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			writeError(w, apperrors.New(apperrors.CodeUsernameTaken, "username is already taken"))
			return
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, messageResponse{Message: "user registered"})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, apperrors.New(apperrors.CodeInvalidBody, "invalid json body"))
		return
	}

	credentials, err := user.NormalizeCredentials(user.Credentials{
		Username: body.Username,
		Password: body.Password,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	// Unknown usernames and wrong passwords share one error so responses
	// never reveal which usernames exist.
	account, err := h.users.GetUserByUsername(r.Context(), credentials.Username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, auth.ErrInvalidCredentials)
			return
		}
		writeError(w, err)
		return
	}
	if err := auth.VerifyPassword(account.PasswordHash, credentials.Password); err != nil {
		writeError(w, err)
		return
	}

	token, err := h.tokens.Issue(account.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token})
}

func (h *Handler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r.Context())
	if !ok {
		writeError(w, apperrors.New(apperrors.CodeTokenMissing, "bearer token is required"))
		return
	}

	tasks, err := h.tasks.ListTasks(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	responses := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		responses = append(responses, taskToResponse(t))
	}
	writeJSON(w, http.StatusOK, responses)
}

func (h *Handler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r.Context())
	if !ok {
		writeError(w, apperrors.New(apperrors.CodeTokenMissing, "bearer token is required"))
		return
	}

	var body createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, apperrors.New(apperrors.CodeInvalidBody, "invalid json body"))
		return
	}

	input := task.CreateInput{
		Title:       body.Title,
		Description: body.Description,
	}
	if body.Done != nil {
		input.Done = *body.Done
	}

	created, err := task.New(input, userID, h.clock)
	if err != nil {
		writeError(w, err)
		return
	}

	stored, err := h.tasks.CreateTask(r.Context(), created)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, taskToResponse(stored))
}

func (h *Handler) handleGetTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r.Context())
	if !ok {
		writeError(w, apperrors.New(apperrors.CodeTokenMissing, "bearer token is required"))
		return
	}
	taskID, err := parseTaskID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	found, err := h.tasks.GetTask(r.Context(), taskID, userID)
	if err != nil {
		writeError(w, mapTaskStorageError(err))
		return
	}
	writeJSON(w, http.StatusOK, taskToResponse(found))
}

func (h *Handler) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r.Context())
	if !ok {
		writeError(w, apperrors.New(apperrors.CodeTokenMissing, "bearer token is required"))
		return
	}
	taskID, err := parseTaskID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var body updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, apperrors.New(apperrors.CodeInvalidBody, "invalid json body"))
		return
	}

	existing, err := h.tasks.GetTask(r.Context(), taskID, userID)
	if err != nil {
		writeError(w, mapTaskStorageError(err))
		return
	}

	updated, err := task.Apply(existing, task.Patch{
		Title:       body.Title,
		Description: body.Description,
		Done:        body.Done,
	}, h.clock)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.tasks.UpdateTask(r.Context(), updated); err != nil {
		writeError(w, mapTaskStorageError(err))
		return
	}
	writeJSON(w, http.StatusOK, taskToResponse(updated))
}

func (h *Handler) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r.Context())
	if !ok {
		writeError(w, apperrors.New(apperrors.CodeTokenMissing, "bearer token is required"))
		return
	}
	taskID, err := parseTaskID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.tasks.DeleteTask(r.Context(), taskID, userID); err != nil {
		writeError(w, mapTaskStorageError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	if _, ok := callerID(r.Context()); !ok {
		writeError(w, apperrors.New(apperrors.CodeTokenMissing, "bearer token is required"))
		return
	}

	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	responses := make([]userResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, userResponse{ID: u.ID, Username: u.Username})
	}
	writeJSON(w, http.StatusOK, responses)
}

// parseTaskID reads the task identifier path segment. Malformed identifiers
// read as missing tasks, matching the not-found rule for unknown ids.
func parseTaskID(r *http.Request) (int64, error) {
	raw := r.PathValue("taskID")
	taskID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || taskID <= 0 {
		return 0, task.ErrNotFound
	}
	return taskID, nil
}

// mapTaskStorageError translates storage sentinels into API errors.
func mapTaskStorageError(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return task.ErrNotFound
	}
	return err
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, apperrors.HTTPStatus(err), messageResponse{Message: apperrors.ClientMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	_ = encoder.Encode(payload)
}
