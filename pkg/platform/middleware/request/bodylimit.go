package request

import (
	"net/http"
)

// BodyLimit returns middleware that limits the size of request bodies.
// Uses http.MaxBytesReader, which returns 413 on overflow and closes the
// connection. Apply early in the chain, before any body parsing.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
