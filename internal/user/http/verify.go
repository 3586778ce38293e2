package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/meshauth/internal/user/service"
	"github.com/aussiebroadwan/meshauth/internal/user/verification"
	"github.com/aussiebroadwan/meshauth/pkg/httpx"
	"github.com/aussiebroadwan/meshauth/pkg/slogx"
)

// VerifyHandler serves GET /auth/verify?token=...
type VerifyHandler struct {
	AuthService *service.AuthService
}

type verifyResponse struct {
	Message string `json:"message"`
}

func (h *VerifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "token query parameter is required")
		return
	}

	if err := h.AuthService.Verify(ctx, token); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidOrExpiredToken):
			// Never reveal whether the token was unknown, used, or expired.
			httpx.WriteError(w, http.StatusBadRequest, "invalid_token", "Verification link is invalid or has expired")
		case errors.Is(err, verification.ErrTimeout):
			httpx.WriteError(w, http.StatusServiceUnavailable, "temporarily_unavailable", "Please try again shortly")
		default:
			log.Error("verification failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Verification failed")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, verifyResponse{
		Message: "Account verified successfully. You can now log in.",
	})
}
