package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/aussiebroadwan/meshauth/internal/user/service"
	"github.com/aussiebroadwan/meshauth/pkg/httpx"
	"github.com/aussiebroadwan/meshauth/pkg/slogx"
)

// MeHandler serves GET /v1/users/me. Identity comes from the headers the
// gateway injected after verifying the caller's token.
type MeHandler struct {
	AuthService *service.AuthService
}

type meResponse struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Roles      []string  `json:"roles"`
	IsActive   bool      `json:"is_active"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
}

func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID, err := httpx.UserIDFromHeaders(r.Header)
	if err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "Missing or malformed identity")
		return
	}

	user, err := h.AuthService.GetUserByID(ctx, userID.String())
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			// Valid token for a user that no longer exists.
			httpx.WriteError(w, http.StatusNotFound, "not_found", "User not found")
			return
		}
		log.Error("fetch current user failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to fetch user")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, meResponse{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		Roles:      user.Roles,
		IsActive:   user.IsActive,
		IsVerified: user.IsVerified,
		CreatedAt:  user.CreatedAt,
	})
}
