package rest

import (
	"net/http"

	"github.com/louisbranch/taskhub/internal/api/rest/routepath"
)

// RegisterRoutes wires the API endpoints onto the provided mux. Task and
// user listing routes run behind the bearer-token middleware.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	if mux == nil {
		return
	}
	mux.HandleFunc(http.MethodPost+" "+routepath.Register, h.handleRegister)
	mux.HandleFunc(http.MethodPost+" "+routepath.Login, h.handleLogin)
	mux.HandleFunc(http.MethodGet+" "+routepath.Tasks, h.requireAuth(h.handleListTasks))
	mux.HandleFunc(http.MethodPost+" "+routepath.Tasks, h.requireAuth(h.handleCreateTask))
	mux.HandleFunc(http.MethodGet+" "+routepath.Task, h.requireAuth(h.handleGetTask))
	mux.HandleFunc(http.MethodPut+" "+routepath.Task, h.requireAuth(h.handleUpdateTask))
	mux.HandleFunc(http.MethodDelete+" "+routepath.Task, h.requireAuth(h.handleDeleteTask))
	mux.HandleFunc(http.MethodGet+" "+routepath.Users, h.requireAuth(h.handleListUsers))
}
