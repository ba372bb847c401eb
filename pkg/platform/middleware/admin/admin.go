// Package admin restricts registry management endpoints to portal
// administrators. It runs after the auth middleware has resolved the caller.
package admin

import (
	"log/slog"
	"net/http"

	"sftgate/pkg/requestcontext"
)

// RequireAdmin returns middleware that rejects non-admin callers with 403.
func RequireAdmin(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			caller, ok := requestcontext.CallerFrom(ctx)
			if !ok || !caller.Admin {
				logger.WarnContext(ctx, "admin endpoint denied",
					"caller_id", caller.ID,
					"path", r.URL.Path,
					"request_id", requestcontext.RequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"forbidden","error_description":"administrator role required"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
