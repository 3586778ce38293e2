package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/meshauth/internal/user/domain"
	"github.com/aussiebroadwan/meshauth/internal/user/store/drivers/sqlite"
	"github.com/aussiebroadwan/meshauth/internal/user/verification"
	"github.com/aussiebroadwan/meshauth/pkg/cryptox"
	"github.com/aussiebroadwan/meshauth/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "meshauth-pepper")
	if err == nil {
		cryptox.SetPepperPath(filepath.Join(dir, "pepper"))
		defer os.RemoveAll(dir)
	}
	m.Run()
}

// capturePublisher records published events for assertions.
type capturePublisher struct {
	events []domain.UserRegisteredEvent
	err    error
}

func (p *capturePublisher) PublishUserRegistered(_ context.Context, e domain.UserRegisteredEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func newTestAuthService(t *testing.T) (*AuthService, *capturePublisher) {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	signer, err := jwtx.NewSignerHS256([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	pub := &capturePublisher{}
	svc := &AuthService{
		Store:        s,
		Tokens:       &TokenService{Signer: signer, AccessTTL: 15 * time.Minute},
		Verification: verification.NewMemoryStore(),
		Publisher:    pub,
	}
	return svc, pub
}

func register(t *testing.T, svc *AuthService) domain.User {
	t.Helper()
	user, err := svc.Register(context.Background(), "alice", "alice@x.com", "Sup3rSecret!")
	require.NoError(t, err)
	return user
}

func TestRegister(t *testing.T) {
	svc, pub := newTestAuthService(t)
	ctx := context.Background()

	user := register(t, svc)
	require.False(t, user.IsVerified)
	require.True(t, user.IsActive)
	require.Equal(t, []string{domain.DefaultRole}, user.Roles)

	t.Run("password is hashed", func(t *testing.T) {
		require.NotEqual(t, "Sup3rSecret!", user.PasswordHash)
		require.NoError(t, cryptox.VerifyPassword("Sup3rSecret!", user.PasswordHash))
	})

	t.Run("event carries a redeemable token", func(t *testing.T) {
		require.Len(t, pub.events, 1)
		e := pub.events[0]
		require.Equal(t, user.ID, e.UserID)
		require.Equal(t, "alice", e.UserName)
		require.Equal(t, "alice@x.com", e.Email)
		require.NotEmpty(t, e.VerificationToken)
		require.False(t, e.Timestamp.IsZero())

		userID, err := svc.Verification.Redeem(ctx, e.VerificationToken)
		require.NoError(t, err)
		require.Equal(t, user.ID, userID)
	})
}

func TestRegisterDuplicates(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()
	register(t, svc)

	_, err := svc.Register(ctx, "alice", "other@x.com", "pw")
	require.ErrorIs(t, err, ErrUsernameTaken)

	_, err = svc.Register(ctx, "bob", "alice@x.com", "pw")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterSurvivesPublishFailure(t *testing.T) {
	svc, pub := newTestAuthService(t)
	pub.err = context.DeadlineExceeded

	user, err := svc.Register(context.Background(), "alice", "alice@x.com", "pw")
	require.NoError(t, err)

	got, err := svc.GetUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", got.Username)
}

func TestVerify(t *testing.T) {
	svc, pub := newTestAuthService(t)
	ctx := context.Background()

	user := register(t, svc)
	token := pub.events[0].VerificationToken

	require.NoError(t, svc.Verify(ctx, token))

	got, err := svc.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, got.IsVerified)

	t.Run("token is single use", func(t *testing.T) {
		require.ErrorIs(t, svc.Verify(ctx, token), ErrInvalidOrExpiredToken)
	})

	t.Run("unknown token", func(t *testing.T) {
		require.ErrorIs(t, svc.Verify(ctx, "bogus"), ErrInvalidOrExpiredToken)
	})
}

func TestLoginGates(t *testing.T) {
	svc, pub := newTestAuthService(t)
	ctx := context.Background()

	user := register(t, svc)

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Login(ctx, "nobody", "pw")
		require.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "alice", "wrong")
		require.ErrorIs(t, err, ErrWrongPassword)
	})

	t.Run("unverified", func(t *testing.T) {
		_, err := svc.Login(ctx, "alice", "Sup3rSecret!")
		require.ErrorIs(t, err, ErrUserNotVerified)
	})

	require.NoError(t, svc.Verify(ctx, pub.events[0].VerificationToken))

	t.Run("inactive outranks unverified", func(t *testing.T) {
		require.NoError(t, svc.Store.Users().SetUserActive(ctx, user.ID, false))
		_, err := svc.Login(ctx, "alice", "Sup3rSecret!")
		require.ErrorIs(t, err, ErrUserInactive)
		require.NoError(t, svc.Store.Users().SetUserActive(ctx, user.ID, true))
	})

	t.Run("success", func(t *testing.T) {
		pair, err := svc.Login(ctx, "alice", "Sup3rSecret!")
		require.NoError(t, err)
		require.NotEmpty(t, pair.AccessToken)
		require.NotEmpty(t, pair.RefreshToken)
		require.Equal(t, "Bearer", pair.TokenType)
		require.Equal(t, int64((15 * time.Minute).Seconds()), pair.ExpiresIn)
	})
}
