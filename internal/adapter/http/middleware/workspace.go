package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/iho/budgetplanner/internal/infrastructure/logger"
)

// UserIDHeader carries the id of the user acting on the workspace.
const UserIDHeader = "X-User-ID"

// Workspace stores the {workspaceID} route parameter and the acting user in
// the request context and tags the request logger with both.
func Workspace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		workspaceID := chi.URLParam(r, "workspaceID")
		if workspaceID == "" {
			http.Error(w, "workspace id is required", http.StatusBadRequest)
			return
		}

		ctx := logger.WithWorkspaceID(r.Context(), workspaceID)
		if userID := r.Header.Get(UserIDHeader); userID != "" {
			ctx = context.WithValue(ctx, logger.UserIDKey, userID)
		}

		l := logger.WithContext(ctx, *zerolog.Ctx(ctx))
		next.ServeHTTP(w, r.WithContext(l.WithContext(ctx)))
	})
}
