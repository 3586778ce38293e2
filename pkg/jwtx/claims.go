package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAccessTokenTTL is the default lifetime for access tokens.
// Short-lived for security - typical range is 15m to 1h.
const DefaultAccessTokenTTL = 15 * time.Minute

// RefreshTokenTTLMultiplier fixes refresh token lifetime at ten times the
// configured access token lifetime. Downstream services assume this ratio,
// so it is a contract rather than a tunable.
const RefreshTokenTTLMultiplier = 10

// Claims are the identity claims carried in every token issued by the mesh.
// The token is a read-only snapshot of the principal at issue time; role
// edits after issuance do not change tokens already in flight.
type Claims struct {
	jwt.RegisteredClaims

	/* Cross-service custom fields */

	// UserID is the principal's opaque identifier (ULID).
	UserID string `json:"userId,omitempty"`

	// Roles held by the principal at issue time, e.g. ["USER"].
	Roles []string `json:"roles,omitempty"`
}

// NewClaims builds minimally-correct identity claims. The subject is the
// principal's username; userId and roles ride alongside as custom claims.
func NewClaims(subject, userID string, roles []string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: userID,
		Roles:  roles,
	}
}

// ValidateExpiry ensures the token hasn't expired (exp).
func (c *Claims) ValidateExpiry(now time.Time) error {
	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}
	return nil
}

// ValidateExpiryWithLeeway adds a small grace period for clock skew.
func (c *Claims) ValidateExpiryWithLeeway(now time.Time, leeway time.Duration) error {
	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}
	return nil
}

// TTL reports the issued lifetime (exp - iat), or zero when either claim
// is missing.
func (c *Claims) TTL() time.Duration {
	if c.ExpiresAt == nil || c.IssuedAt == nil {
		return 0
	}
	return c.ExpiresAt.Sub(c.IssuedAt.Time)
}
