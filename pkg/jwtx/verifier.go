package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates a token and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrAlgMismatch = errors.New("jwtx: algorithm mismatch")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")
	ErrExpired     = errors.New("jwtx: token expired")
)

// HS256Verifier checks HMAC-SHA256 signatures and expiry. Verification is
// a pure read: it never refreshes or extends a token ("sliding expiration"
// is deliberately unsupported).
//
// Order matters and is fixed: signature first, expiry second. Both failure
// modes come back as sentinel errors so callers can collapse them into a
// single externally-visible outcome.
type HS256Verifier struct {
	secret []byte
	leeway time.Duration

	// now is injectable for expiry tests.
	now func() time.Time
}

// NewVerifierHS256 creates a verifier for tokens signed with the shared
// secret. Leeway allows small clock skew between the issuer and this node.
func NewVerifierHS256(secret []byte, leeway time.Duration) (*HS256Verifier, error) {
	if len(secret) < MinSecretBytes {
		return nil, ErrSecretTooShort
	}
	s := make([]byte, len(secret))
	copy(s, secret)
	return &HS256Verifier{secret: s, leeway: leeway, now: time.Now}, nil
}

// Verify parses the compact token, checks its signature, then its expiry.
// Any malformed or mis-signed input fails deterministically; nothing past
// this boundary ever panics on attacker-controlled bytes.
func (v *HS256Verifier) Verify(token string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		// Expiry is checked explicitly below so signature and expiry
		// failures stay distinguishable.
		jwt.WithoutClaimsValidation(),
	)

	var claims Claims
	parsed, err := parser.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
			return Claims{}, ErrInvalidSig
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Claims{}, ErrMalformed
		default:
			// golang-jwt reports an unexpected "alg" via the keyfunc path.
			return Claims{}, ErrAlgMismatch
		}
	}
	if !parsed.Valid {
		return Claims{}, ErrInvalidSig
	}

	if err := claims.ValidateExpiryWithLeeway(v.now().UTC(), v.leeway); err != nil {
		return Claims{}, err
	}

	return claims, nil
}
