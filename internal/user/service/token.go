package service

import (
	"time"

	"github.com/aussiebroadwan/meshauth/internal/user/domain"
	"github.com/aussiebroadwan/meshauth/pkg/jwtx"
)

// TokenService issues signed token pairs for authenticated users. The
// refresh token carries the same claims as the access token with a lifetime
// of exactly jwtx.RefreshTokenTTLMultiplier times the access lifetime.
type TokenService struct {
	Signer    jwtx.Signer
	AccessTTL time.Duration
}

// IssueAccessToken signs a short-lived access token for the user.
func (s *TokenService) IssueAccessToken(user domain.User, now time.Time) (string, error) {
	return s.Signer.Sign(jwtx.NewClaims(user.Username, user.ID, user.Roles, s.AccessTTL, now))
}

// IssueRefreshToken signs a refresh token carrying the same claims with the
// fixed multiple of the access lifetime.
func (s *TokenService) IssueRefreshToken(user domain.User, now time.Time) (string, error) {
	ttl := s.AccessTTL * jwtx.RefreshTokenTTLMultiplier
	return s.Signer.Sign(jwtx.NewClaims(user.Username, user.ID, user.Roles, ttl, now))
}

// IssueTokenPair signs an access and refresh token for the user.
func (s *TokenService) IssueTokenPair(user domain.User) (domain.TokenPair, error) {
	now := time.Now()

	access, err := s.IssueAccessToken(user, now)
	if err != nil {
		return domain.TokenPair{}, err
	}

	refresh, err := s.IssueRefreshToken(user, now)
	if err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.AccessTTL.Seconds()),
	}, nil
}
