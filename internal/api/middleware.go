// Package api implements the Cookiejar REST API using chi.
package api

import (
	"net/http"

	"github.com/crumblab/cookiejar/internal/secrets"
)

// AuthMiddleware returns middleware enforcing the shared-secret check.
// Every request must carry the current secret verbatim in the Authorization
// header; absence or mismatch is rejected with 403 before any handler runs.
// If enabled is false, all requests pass through (disabled mode).
func AuthMiddleware(enabled bool, src *secrets.Source) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				next.ServeHTTP(w, r)
				return
			}
			if r.Header.Get("Authorization") != src.Secret() {
				writeJSON(w, http.StatusForbidden, errorBody("authorization denied"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
