package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/meshauth/internal/user/domain"
	"github.com/aussiebroadwan/meshauth/internal/user/events"
	"github.com/aussiebroadwan/meshauth/internal/user/service"
	"github.com/aussiebroadwan/meshauth/internal/user/store/drivers/sqlite"
	"github.com/aussiebroadwan/meshauth/internal/user/verification"
	"github.com/aussiebroadwan/meshauth/pkg/cryptox"
	"github.com/aussiebroadwan/meshauth/pkg/httpx"
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

type testEnv struct {
	router *Router
	vstore *verification.MemoryStore
	svc    *service.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	signer, err := jwtx.NewSignerHS256([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	vstore := verification.NewMemoryStore()
	svc := &service.AuthService{
		Store:        s,
		Tokens:       &service.TokenService{Signer: signer, AccessTTL: 15 * time.Minute},
		Verification: vstore,
		Publisher:    events.NopPublisher{},
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	r := NewRouter("test", s, logger)
	r.AuthService = svc
	r.ApplyRoutes()

	return &testEnv{router: r, vstore: vstore, svc: svc}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = fmt.Sprintf("192.0.2.%d:1234", len(path)%250+1)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) register(t *testing.T) string {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/auth/register", map[string]string{
		"username": "alice",
		"email":    "alice@x.com",
		"password": "Sup3rSecret!",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		UserID string `json:"user_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.UserID)
	return resp.UserID
}

// verifyUser bypasses the email hop: mint a fresh token for the user and
// redeem it through the endpoint.
func (e *testEnv) verifyUser(t *testing.T, userID string) {
	t.Helper()

	token, err := e.vstore.Put(t.Context(), userID, verification.DefaultTTL)
	require.NoError(t, err)

	rec := e.do(t, http.MethodGet, "/auth/verify?token="+token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterEndpoint(t *testing.T) {
	env := newTestEnv(t)

	env.register(t)

	t.Run("duplicate username conflicts", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/auth/register", map[string]string{
			"username": "alice",
			"email":    "alice2@x.com",
			"password": "Sup3rSecret!",
		})
		require.Equal(t, http.StatusConflict, rec.Code)

		var resp httpx.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "username_taken", resp.Error)
	})

	t.Run("rejects bad email", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/auth/register", map[string]string{
			"username": "bob",
			"email":    "not-an-email",
			"password": "Sup3rSecret!",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects short password", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/auth/register", map[string]string{
			"username": "bob",
			"email":    "bob@x.com",
			"password": "short",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestVerifyEndpoint(t *testing.T) {
	env := newTestEnv(t)
	userID := env.register(t)

	t.Run("bad token rejected", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/auth/verify?token=bogus", nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp httpx.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "invalid_token", resp.Error)
	})

	t.Run("missing token rejected", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/auth/verify", nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	env.verifyUser(t, userID)
}

func TestLoginEndpoint(t *testing.T) {
	env := newTestEnv(t)
	userID := env.register(t)

	login := func(username, password string) *httptest.ResponseRecorder {
		return env.do(t, http.MethodPost, "/auth/login", map[string]string{
			"username": username,
			"password": password,
		})
	}

	t.Run("unknown user and wrong password look identical", func(t *testing.T) {
		unknown := login("nobody", "whatever1")
		wrong := login("alice", "wrongpass")
		require.Equal(t, http.StatusUnauthorized, unknown.Code)
		require.Equal(t, http.StatusUnauthorized, wrong.Code)
		require.JSONEq(t, unknown.Body.String(), wrong.Body.String())
	})

	t.Run("unverified account", func(t *testing.T) {
		rec := login("alice", "Sup3rSecret!")
		require.Equal(t, http.StatusForbidden, rec.Code)

		var resp httpx.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "account_not_verified", resp.Error)
	})

	env.verifyUser(t, userID)

	t.Run("success returns token pair", func(t *testing.T) {
		rec := login("alice", "Sup3rSecret!")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

		var pair domain.TokenPair
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
		require.NotEmpty(t, pair.AccessToken)
		require.NotEmpty(t, pair.RefreshToken)
		require.Equal(t, "Bearer", pair.TokenType)
		require.Equal(t, int64(900), pair.ExpiresIn)
	})
}

func TestMeEndpoint(t *testing.T) {
	env := newTestEnv(t)
	userID := env.register(t)

	t.Run("no identity header", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/users/me", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("with identity header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
		req.Header.Set(httpx.HeaderUserID, userID)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp meResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, userID, resp.ID)
		require.Equal(t, "alice", resp.Username)
		require.False(t, resp.IsVerified)
	})
}

func TestHealthzEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "ok", resp.Status)
	require.Equal(t, "test", resp.Version)
}
