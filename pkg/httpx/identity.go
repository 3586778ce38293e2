package httpx

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/meshauth/pkg/idx"
)

// Identity headers injected by the gateway after token verification.
// Downstream services trust these and ONLY these for caller identity; the
// gateway strips any client-supplied copies before forwarding.
const (
	HeaderUserID    = "X-User-Id"
	HeaderUsername  = "X-Username"
	HeaderUserRoles = "X-User-Roles" // comma-joined
)

var (
	// ErrMissingIdentity reports a request that never passed through the
	// gateway's authentication stage.
	ErrMissingIdentity = errors.New("httpx: missing identity header")

	// ErrMalformedIdentity reports an identity header that is present but
	// not a valid principal id.
	ErrMalformedIdentity = errors.New("httpx: malformed identity header")
)

// UserIDFromHeaders extracts the gateway-authenticated principal id from
// the request headers. Handlers call this explicitly instead of relying on
// ambient request state.
func UserIDFromHeaders(h http.Header) (idx.ID, error) {
	raw := strings.TrimSpace(h.Get(HeaderUserID))
	if raw == "" {
		return idx.Zero, ErrMissingIdentity
	}

	id, err := idx.Parse(raw)
	if err != nil {
		return idx.Zero, ErrMalformedIdentity
	}
	return id, nil
}

// RolesFromHeaders splits the comma-joined roles header. Returns nil when
// the header is absent or empty.
func RolesFromHeaders(h http.Header) []string {
	raw := strings.TrimSpace(h.Get(HeaderUserRoles))
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	roles := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			roles = append(roles, p)
		}
	}
	if len(roles) == 0 {
		return nil
	}
	return roles
}
