package rest

import (
	"context"
	"net/http"
	"strings"

	apperrors "github.com/louisbranch/taskhub/internal/platform/errors"
)

type contextKey struct{ name string }

var userIDKey = contextKey{"user-id"}

// withUserID returns a context carrying the authenticated caller identifier.
func withUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// callerID extracts the authenticated caller identifier from the context.
func callerID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey).(int64)
	return userID, ok
}

// requireAuth verifies the bearer token and binds the caller identity to the
// request context before the handler runs. Token verification failures stop
// the request with 401.
func (h *Handler) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			writeError(w, apperrors.New(apperrors.CodeTokenMissing, "bearer token is required"))
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

		userID, err := h.tokens.Verify(token)
		if err != nil {
			writeError(w, err)
			return
		}
		next(w, r.WithContext(withUserID(r.Context(), userID)))
	}
}
