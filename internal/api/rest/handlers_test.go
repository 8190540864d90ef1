package rest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/taskhub/internal/auth"
	"github.com/louisbranch/taskhub/internal/storage/sqlite"
)

func testHandler(t *testing.T) *http.ServeMux {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "tasks.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret: []byte("test-secret"),
		Issuer: "taskhub-test",
		TTL:    time.Hour,
	})
	if err != nil {
		t.Fatalf("new token service: %v", err)
	}

	mux := http.NewServeMux()
	NewHandler(store, store, tokens).RegisterRoutes(mux)
	return mux
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()
	var value T
	if err := json.Unmarshal(recorder.Body.Bytes(), &value); err != nil {
		t.Fatalf("decode response %q: %v", recorder.Body.String(), err)
	}
	return value
}

func registerAndLogin(t *testing.T, mux *http.ServeMux, username, password string) string {
	t.Helper()
	if rec := doJSON(t, mux, http.MethodPost, "/register", "", map[string]string{
		"username": username, "password": password,
	}); rec.Code != http.StatusCreated {
		t.Fatalf("register %q: status %d body %s", username, rec.Code, rec.Body.String())
	}
	rec := doJSON(t, mux, http.MethodPost, "/login", "", map[string]string{
		"username": username, "password": password,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %q: status %d body %s", username, rec.Code, rec.Body.String())
	}
	token := decodeBody[tokenResponse](t, rec).AccessToken
	if token == "" {
		t.Fatal("expected access token")
	}
	return token
}

func TestRegisterDuplicateUsernameConflicts(t *testing.T) {
	t.Parallel()

	mux := testHandler(t)
	first := doJSON(t, mux, http.MethodPost, "/register", "", map[string]string{
		"username": "alice", "password": "pw1",
	})
	if first.Code != http.StatusCreated {
		t.Fatalf("first register: status %d", first.Code)
	}

	second := doJSON(t, mux, http.MethodPost, "/register", "", map[string]string{
		"username": "alice", "password": "pw2",
	})
	if second.Code != http.StatusBadRequest {
		t.Fatalf("duplicate register: status %d, want 400", second.Code)
	}
}

func TestRegisterValidatesFields(t *testing.T) {
	t.Parallel()

	mux := testHandler(t)
	cases := []map[string]string{
		{"username": "", "password": "pw1"},
		{"username": "alice", "password": ""},
		{},
	}
	for _, body := range cases {
		if rec := doJSON(t, mux, http.MethodPost, "/register", "", body); rec.Code != http.StatusBadRequest {
			t.Fatalf("register %v: status %d, want 400", body, rec.Code)
		}
	}
}

func TestLoginWrongPasswordAndUnknownUserLookIdentical(t *testing.T) {
	t.Parallel()

	mux := testHandler(t)
	if rec := doJSON(t, mux, http.MethodPost, "/register", "", map[string]string{
		"username": "alice", "password": "pw1",
	}); rec.Code != http.StatusCreated {
		t.Fatalf("register: status %d", rec.Code)
	}

	wrongPassword := doJSON(t, mux, http.MethodPost, "/login", "", map[string]string{
		"username": "alice", "password": "wrong",
	})
	unknownUser := doJSON(t, mux, http.MethodPost, "/login", "", map[string]string{
		"username": "mallory", "password": "pw1",
	})
	if wrongPassword.Code != http.StatusUnauthorized || unknownUser.Code != http.StatusUnauthorized {
		t.Fatalf("statuses = %d, %d, want 401 for both", wrongPassword.Code, unknownUser.Code)
	}

	wrongMsg := decodeBody[messageResponse](t, wrongPassword)
	unknownMsg := decodeBody[messageResponse](t, unknownUser)
	if wrongMsg.Message != unknownMsg.Message {
		t.Fatalf("error messages differ: %q vs %q", wrongMsg.Message, unknownMsg.Message)
	}
}

func TestTaskRoutesRejectMissingOrInvalidToken(t *testing.T) {
	t.Parallel()

	mux := testHandler(t)
	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/tasks"},
		{http.MethodPost, "/tasks"},
		{http.MethodGet, "/tasks/1"},
		{http.MethodPut, "/tasks/1"},
		{http.MethodDelete, "/tasks/1"},
		{http.MethodGet, "/users"},
	}
	for _, route := range routes {
		if rec := doJSON(t, mux, route.method, route.path, "", nil); rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s without token: status %d, want 401", route.method, route.path, rec.Code)
		}
		if rec := doJSON(t, mux, route.method, route.path, "not-a-jwt", nil); rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s with garbage token: status %d, want 401", route.method, route.path, rec.Code)
		}
	}
}

func TestCreateTaskRequiresTitle(t *testing.T) {
	t.Parallel()

	mux := testHandler(t)
	token := registerAndLogin(t, mux, "alice", "pw1")

	rec := doJSON(t, mux, http.MethodPost, "/tasks", token, map[string]any{
		"description": "no title here",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("create without title: status %d, want 400", rec.Code)
	}
}

func TestTaskLifecycleScenario(t *testing.T) {
	t.Parallel()

	mux := testHandler(t)

	// register alice twice: second attempt conflicts
	if rec := doJSON(t, mux, http.MethodPost, "/register", "", map[string]string{
		"username": "alice", "password": "pw1",
	}); rec.Code != http.StatusCreated {
		t.Fatalf("register: status %d", rec.Code)
	}
	if rec := doJSON(t, mux, http.MethodPost, "/register", "", map[string]string{
		"username": "alice", "password": "pw2",
	}); rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate register: status %d", rec.Code)
	}

	rec := doJSON(t, mux, http.MethodPost, "/login", "", map[string]string{
		"username": "alice", "password": "pw1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status %d", rec.Code)
	}
	token := decodeBody[tokenResponse](t, rec).AccessToken

	// create {title:"Buy milk"} -> id 1, null description, done false
	rec = doJSON(t, mux, http.MethodPost, "/tasks", token, map[string]any{"title": "Buy milk"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create task: status %d body %s", rec.Code, rec.Body.String())
	}
	created := decodeBody[taskResponse](t, rec)
	if created.ID != 1 || created.Title != "Buy milk" || created.Description != nil || created.Done {
		t.Fatalf("created = %+v", created)
	}

	// get returns the same object
	rec = doJSON(t, mux, http.MethodGet, "/tasks/1", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get task: status %d", rec.Code)
	}
	if got := decodeBody[taskResponse](t, rec); got != created {
		t.Fatalf("get = %+v, want %+v", got, created)
	}

	// partial update {done:true} keeps title/description
	rec = doJSON(t, mux, http.MethodPut, "/tasks/1", token, map[string]any{"done": true})
	if rec.Code != http.StatusOK {
		t.Fatalf("update task: status %d body %s", rec.Code, rec.Body.String())
	}
	updated := decodeBody[taskResponse](t, rec)
	if !updated.Done || updated.Title != "Buy milk" || updated.Description != nil {
		t.Fatalf("updated = %+v", updated)
	}

	// delete then get -> 404
	rec = doJSON(t, mux, http.MethodDelete, "/tasks/1", token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete task: status %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("delete body = %q, want empty", rec.Body.String())
	}
	rec = doJSON(t, mux, http.MethodGet, "/tasks/1", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: status %d, want 404", rec.Code)
	}
}

func TestPartialUpdateFields(t *testing.T) {
	t.Parallel()

	mux := testHandler(t)
	token := registerAndLogin(t, mux, "alice", "pw1")

	rec := doJSON(t, mux, http.MethodPost, "/tasks", token, map[string]any{
		"title": "Buy milk", "description": "two liters",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create task: status %d", rec.Code)
	}
	created := decodeBody[taskResponse](t, rec)

	// only the title changes
	rec = doJSON(t, mux, http.MethodPut, "/tasks/1", token, map[string]any{"title": "Buy bread"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update task: status %d", rec.Code)
	}
	updated := decodeBody[taskResponse](t, rec)
	if updated.Title != "Buy bread" {
		t.Fatalf("title = %q", updated.Title)
	}
	if updated.Description == nil || *updated.Description != "two liters" {
		t.Fatal("description was dropped")
	}
	if updated.Done != created.Done {
		t.Fatal("done changed")
	}

	// blank supplied title is rejected
	rec = doJSON(t, mux, http.MethodPut, "/tasks/1", token, map[string]any{"title": "  "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("blank title update: status %d, want 400", rec.Code)
	}
}

func TestTasksAreIsolatedBetweenUsers(t *testing.T) {
	t.Parallel()

	mux := testHandler(t)
	aliceToken := registerAndLogin(t, mux, "alice", "pw1")
	bobToken := registerAndLogin(t, mux, "bob", "pw2")

	rec := doJSON(t, mux, http.MethodPost, "/tasks", aliceToken, map[string]any{"title": "Buy milk"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create task: status %d", rec.Code)
	}
	created := decodeBody[taskResponse](t, rec)

	// bob's list never includes alice's task
	rec = doJSON(t, mux, http.MethodGet, "/tasks", bobToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list tasks: status %d", rec.Code)
	}
	if tasks := decodeBody[[]taskResponse](t, rec); len(tasks) != 0 {
		t.Fatalf("bob's list leaked tasks: %+v", tasks)
	}

	// bob's get/update/delete on alice's task id all read as missing
	path := "/tasks/1"
	if rec := doJSON(t, mux, http.MethodGet, path, bobToken, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("cross-user get: status %d, want 404", rec.Code)
	}
	if rec := doJSON(t, mux, http.MethodPut, path, bobToken, map[string]any{"done": true}); rec.Code != http.StatusNotFound {
		t.Fatalf("cross-user update: status %d, want 404", rec.Code)
	}
	if rec := doJSON(t, mux, http.MethodDelete, path, bobToken, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("cross-user delete: status %d, want 404", rec.Code)
	}

	// alice still owns the unchanged task
	rec = doJSON(t, mux, http.MethodGet, path, aliceToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("owner get after cross-user attempts: status %d", rec.Code)
	}
	if got := decodeBody[taskResponse](t, rec); got != created {
		t.Fatalf("task changed: %+v", got)
	}
}

func TestCreateTaskAcceptsDoneAndDescription(t *testing.T) {
	t.Parallel()

	mux := testHandler(t)
	token := registerAndLogin(t, mux, "alice", "pw1")

	rec := doJSON(t, mux, http.MethodPost, "/tasks", token, map[string]any{
		"title": "Walk dog", "description": "around the block", "done": true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create task: status %d", rec.Code)
	}
	created := decodeBody[taskResponse](t, rec)
	if !created.Done || created.Description == nil || *created.Description != "around the block" {
		t.Fatalf("created = %+v", created)
	}
}

func TestListUsersExcludesPasswordHashes(t *testing.T) {
	t.Parallel()

	mux := testHandler(t)
	aliceToken := registerAndLogin(t, mux, "alice", "pw1")
	registerAndLogin(t, mux, "bob", "pw2")

	rec := doJSON(t, mux, http.MethodGet, "/users", aliceToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list users: status %d", rec.Code)
	}

	users := decodeBody[[]map[string]any](t, rec)
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	for _, u := range users {
		if _, ok := u["username"]; !ok {
			t.Fatalf("user entry missing username: %v", u)
		}
		for key := range u {
			if key != "id" && key != "username" {
				t.Fatalf("unexpected field %q in user listing", key)
			}
		}
	}
}

func TestGetTaskMalformedIDIsNotFound(t *testing.T) {
	t.Parallel()

	mux := testHandler(t)
	token := registerAndLogin(t, mux, "alice", "pw1")

	if rec := doJSON(t, mux, http.MethodGet, "/tasks/not-a-number", token, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("malformed id: status %d, want 404", rec.Code)
	}
}

func TestExpiredTokenIsRejected(t *testing.T) {
	t.Parallel()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "tasks.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	past := time.Now().Add(-2 * time.Hour)
	staleIssuer, err := auth.NewTokenService(auth.TokenConfig{
		Secret: []byte("test-secret"),
		Issuer: "taskhub-test",
		TTL:    time.Hour,
		Now:    func() time.Time { return past },
	})
	if err != nil {
		t.Fatalf("new token service: %v", err)
	}
	current, err := auth.NewTokenService(auth.TokenConfig{
		Secret: []byte("test-secret"),
		Issuer: "taskhub-test",
		TTL:    time.Hour,
	})
	if err != nil {
		t.Fatalf("new token service: %v", err)
	}

	mux := http.NewServeMux()
	NewHandler(store, store, current).RegisterRoutes(mux)

	expired, err := staleIssuer.Issue(1)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if rec := doJSON(t, mux, http.MethodGet, "/tasks", expired, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expired token: status %d, want 401", rec.Code)
	}
}
