package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/meshauth/internal/user/domain"
	"github.com/aussiebroadwan/meshauth/internal/user/events"
	"github.com/aussiebroadwan/meshauth/internal/user/store"
	"github.com/aussiebroadwan/meshauth/internal/user/verification"
	"github.com/aussiebroadwan/meshauth/pkg/cryptox"
	"github.com/aussiebroadwan/meshauth/pkg/idx"
	"github.com/aussiebroadwan/meshauth/pkg/slogx"
)

var (
	ErrUserNotFound          = errors.New("user_not_found")
	ErrWrongPassword         = errors.New("wrong_password")
	ErrUserInactive          = errors.New("user_inactive")
	ErrUserNotVerified       = errors.New("user_not_verified")
	ErrUsernameTaken         = errors.New("username_taken")
	ErrEmailTaken            = errors.New("email_taken")
	ErrInvalidOrExpiredToken = errors.New("invalid_or_expired_token")
)

// AuthService implements registration, email verification, and login.
type AuthService struct {
	Store           store.Store
	Tokens          *TokenService
	Verification    verification.Store
	Publisher       events.Publisher
	VerificationTTL time.Duration
}

func (s *AuthService) verificationTTL() time.Duration {
	if s.VerificationTTL > 0 {
		return s.VerificationTTL
	}
	return verification.DefaultTTL
}

// Register creates an unverified user and issues a verification token. The
// registration event is published after the user row is committed; a
// publish failure does not undo the registration, it only delays the mail
// until the user requests a resend.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (domain.User, error) {
	l := slogx.FromContext(ctx)

	if _, err := s.Store.Users().GetUserByUsername(ctx, username); err == nil {
		return domain.User{}, ErrUsernameTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.User{}, err
	}

	if _, err := s.Store.Users().GetUserByEmail(ctx, email); err == nil {
		return domain.User{}, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.User{}, err
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Roles:        []string{domain.DefaultRole},
		IsActive:     true,
		IsVerified:   false,
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// Lost a race with a concurrent registration.
			return domain.User{}, ErrUsernameTaken
		}
		return domain.User{}, err
	}

	token, err := s.Verification.Put(ctx, user.ID, s.verificationTTL())
	if err != nil {
		return domain.User{}, err
	}

	event := domain.UserRegisteredEvent{
		UserID:            user.ID,
		UserName:          user.Username,
		Email:             user.Email,
		VerificationToken: token,
		Timestamp:         time.Now().UTC(),
	}
	if err := s.Publisher.PublishUserRegistered(ctx, event); err != nil {
		l.Warn("failed to publish registration event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()))
	}

	l.Info("user registered", slog.String("user_id", user.ID), slog.String("username", user.Username))
	return user, nil
}

// Verify redeems a verification token and marks the owning user verified.
// A token that was never issued, already redeemed, or expired all map to
// the same error.
func (s *AuthService) Verify(ctx context.Context, token string) error {
	userID, err := s.Verification.Redeem(ctx, token)
	if err != nil {
		if errors.Is(err, verification.ErrNotFound) {
			return ErrInvalidOrExpiredToken
		}
		return err
	}

	if err := s.Store.Users().MarkUserVerified(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// User deleted between registration and verification.
			return ErrInvalidOrExpiredToken
		}
		return err
	}

	slogx.FromContext(ctx).Info("user verified", slog.String("user_id", userID))
	return nil
}

// Login authenticates a username/password pair and issues tokens. The
// checks run in a fixed order: unknown user, wrong password, deactivated
// account, unverified account.
func (s *AuthService) Login(ctx context.Context, username, password string) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrUserNotFound
		}
		return domain.TokenPair{}, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		l.Info("login rejected, wrong password", slog.String("username", username))
		return domain.TokenPair{}, ErrWrongPassword
	}

	if !user.IsActive {
		return domain.TokenPair{}, ErrUserInactive
	}
	if !user.IsVerified {
		return domain.TokenPair{}, ErrUserNotVerified
	}

	pair, err := s.Tokens.IssueTokenPair(user)
	if err != nil {
		return domain.TokenPair{}, err
	}

	l.Info("user logged in", slog.String("user_id", user.ID))
	return pair, nil
}

// GetUserByID fetches a user by id.
func (s *AuthService) GetUserByID(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}
