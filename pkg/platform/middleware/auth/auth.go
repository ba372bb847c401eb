// Package auth authenticates bearer tokens and places the resulting caller
// identity into the request context. It never authorizes container access;
// that decision belongs to the access guard downstream.
package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"sftgate/pkg/requestcontext"
)

// Claims is the identity the token validator hands back: the stable subject
// plus the portal role flags.
type Claims struct {
	Subject string
	Admin   bool
	OrgUser bool
}

// Validator validates a bearer token string.
type Validator interface {
	Validate(token string) (Claims, error)
}

// writeJSONError writes a JSON error response with the given status code and error details.
func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// RequireAuth returns middleware that validates bearer tokens and populates
// the context caller. Requests without a valid token never reach the handler.
func RequireAuth(validator Validator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")

			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.Validate(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			ctx = requestcontext.WithCaller(ctx, requestcontext.Caller{
				ID:      claims.Subject,
				Admin:   claims.Admin,
				OrgUser: claims.OrgUser,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
