package proxy

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/meshauth/pkg/httpx"
	"github.com/aussiebroadwan/meshauth/pkg/jwtx"
	"github.com/aussiebroadwan/meshauth/pkg/slogx"
)

// AuthFilter verifies bearer tokens at the mesh boundary. Requests to
// excluded paths pass through untouched by verification; everything else
// must carry a valid token or gets a bare 401 with an empty body.
//
// On success the filter replaces any client-supplied identity headers with
// ones derived from the verified claims, so downstream services can trust
// them unconditionally.
type AuthFilter struct {
	Verifier jwtx.Verifier

	// ExcludedPaths are matched against the downstream path (after the API
	// prefix is stripped). Matching is prefix-based so /auth/verify?token=x
	// and /auth/verify/ both pass.
	ExcludedPaths []string
}

func (f *AuthFilter) excluded(path string) bool {
	for _, p := range f.ExcludedPaths {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// Middleware returns the filter as a chainable middleware.
func (f *AuthFilter) Middleware() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Never let a caller smuggle identity past the boundary,
			// excluded paths included.
			r.Header.Del(httpx.HeaderUserID)
			r.Header.Del(httpx.HeaderUsername)
			r.Header.Del(httpx.HeaderUserRoles)

			if f.excluded(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			claims, err := f.Verifier.Verify(token)
			if err != nil {
				// Signature, expiry and malformed failures all collapse to
				// the same response. The reason is logged, never returned.
				slogx.FromContext(r.Context()).Info("token rejected", "reason", err.Error())
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			r.Header.Set(httpx.HeaderUserID, claims.UserID)
			r.Header.Set(httpx.HeaderUsername, claims.Subject)
			if len(claims.Roles) > 0 {
				r.Header.Set(httpx.HeaderUserRoles, strings.Join(claims.Roles, ","))
			}

			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token from an "Authorization: Bearer x" header.
// The scheme comparison is case-insensitive per RFC 9110.
func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}

	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
