package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretBytes is the smallest shared secret we accept for HS256. HMAC
// with a short key weakens the whole mesh, so refuse to construct one.
const MinSecretBytes = 32

// ErrSecretTooShort reports an HS256 secret below MinSecretBytes.
var ErrSecretTooShort = errors.New("jwtx: signing secret too short")

// Signer is our interface for anything that can sign identity tokens.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
}

// HS256Signer signs tokens with HMAC-SHA256 over a shared secret. Signing
// is a pure function of (claims, secret); the signer holds no other state
// and is safe for concurrent use.
type HS256Signer struct {
	secret []byte
}

// NewSignerHS256 creates an HS256 signer from a shared secret.
func NewSignerHS256(secret []byte) (*HS256Signer, error) {
	if len(secret) < MinSecretBytes {
		return nil, ErrSecretTooShort
	}
	// Copy so a caller mutating its buffer can't change signatures under us.
	s := make([]byte, len(secret))
	copy(s, secret)
	return &HS256Signer{secret: s}, nil
}

func (s *HS256Signer) Alg() string { return jwt.SigningMethodHS256.Alg() }

// Sign produces the compact JWS form of the claims.
func (s *HS256Signer) Sign(c Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return token.SignedString(s.secret)
}
