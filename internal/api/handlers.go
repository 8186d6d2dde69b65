package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/crumblab/cookiejar/internal/apperr"
	"github.com/crumblab/cookiejar/internal/userservice"
)

// topLimit is the fixed leaderboard size; there is no pagination beyond it.
const topLimit = 10

// Handler holds API route handlers.
type Handler struct {
	svc *userservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *userservice.Service) *Handler {
	return &Handler{svc: svc}
}

// userID extracts and parses the {userID} route parameter.
func userID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
}

// CreateUser handles POST /users.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.UserID == nil {
		writeJSON(w, http.StatusBadRequest, errorBody("userId is required"))
		return
	}
	user, err := h.svc.CreateUser(r.Context(), userservice.CreateUserInput{
		UserID:           *req.UserID,
		Name:             req.Name,
		DisplayName:      req.DisplayName,
		Description:      req.Description,
		HasVerifiedBadge: req.HasVerifiedBadge,
	})
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrValidation):
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		case errors.Is(err, apperr.ErrDuplicate):
			writeJSON(w, http.StatusConflict, errorBody("user already exists"))
		default:
			slog.Error("create user failed", slog.Int64("user_id", *req.UserID), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// GetUser handles GET /users/{userID}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("userId must be an integer"))
		return
	}
	user, err := h.svc.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("user not found"))
		} else {
			slog.Error("get user failed", slog.Int64("user_id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// GetUserByName handles GET /users/name/{name}. The value matches either the
// name or the display name; among multiple matches the first in store order
// wins.
func (h *Handler) GetUserByName(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}
	if name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("name is required"))
		return
	}
	user, err := h.svc.FindUserByName(r.Context(), name)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("user not found"))
		} else {
			slog.Error("get user by name failed", slog.String("name", name), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// GetCookies handles GET /users/{userID}/cookies.
func (h *Handler) GetCookies(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("userId must be an integer"))
		return
	}
	state, err := h.svc.GetCookies(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("cookies not found"))
		} else {
			slog.Error("get cookies failed", slog.Int64("user_id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// SetCookies handles PUT /users/{userID}/cookies, overwriting the counter.
func (h *Handler) SetCookies(w http.ResponseWriter, r *http.Request) {
	h.mutateCookies(w, r, h.svc.SetCookies)
}

// AddCookies handles POST /users/{userID}/cookies, the atomic
// upsert-increment. The quantity may be negative.
func (h *Handler) AddCookies(w http.ResponseWriter, r *http.Request) {
	h.mutateCookies(w, r, h.svc.AddCookies)
}

func (h *Handler) mutateCookies(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, userID, quantity int64) (*userservice.CookieState, error)) {
	id, err := userID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("userId must be an integer"))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req CookieRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Quantity == nil {
		writeJSON(w, http.StatusBadRequest, errorBody("quantity is required"))
		return
	}
	state, err := op(r.Context(), id, *req.Quantity)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("user not found"))
		} else {
			slog.Error("update cookies failed", slog.Int64("user_id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// Leaderboard handles GET /leaderboard, the fixed top-10 ranking.
func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.Leaderboard(r.Context(), topLimit)
	if err != nil {
		slog.Error("leaderboard failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, LeaderboardResponse{Leaderboard: entries})
}
