package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/crumblab/cookiejar/internal/secrets"
	"github.com/crumblab/cookiejar/internal/userservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether the shared-secret check is enforced; src
// supplies the current secret. sseHandler, if non-nil, is mounted at
// GET /events inside the auth group.
func NewRouter(svc *userservice.Service, authEnabled bool, src *secrets.Source, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, src))

	// Users.
	r.Post("/users", h.CreateUser)
	r.Get("/users/{userID}", h.GetUser)
	r.Get("/users/name/{name}", h.GetUserByName)

	// Cookies.
	r.Get("/users/{userID}/cookies", h.GetCookies)
	r.Put("/users/{userID}/cookies", h.SetCookies)
	r.Post("/users/{userID}/cookies", h.AddCookies)

	// Leaderboard.
	r.Get("/leaderboard", h.Leaderboard)

	// SSE endpoint (protected by the same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
