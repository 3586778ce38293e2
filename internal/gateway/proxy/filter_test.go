package proxy

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/meshauth/pkg/httpx"
	"github.com/aussiebroadwan/meshauth/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

// countingVerifier wraps a real verifier and counts invocations.
type countingVerifier struct {
	inner jwtx.Verifier
	calls int
}

func (v *countingVerifier) Verify(token string) (jwtx.Claims, error) {
	v.calls++
	return v.inner.Verify(token)
}

type capturedRequest struct {
	hits   int
	header http.Header
}

func newFilterEnv(t *testing.T) (*countingVerifier, *capturedRequest, http.Handler) {
	t.Helper()

	inner, err := jwtx.NewVerifierHS256(testSecret, 0)
	require.NoError(t, err)
	verifier := &countingVerifier{inner: inner}

	filter := &AuthFilter{
		Verifier:      verifier,
		ExcludedPaths: []string{"/auth/login", "/auth/register", "/auth/verify"},
	}

	captured := &capturedRequest{}
	downstream := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.hits++
		captured.header = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	})

	return verifier, captured, httpx.Chain(downstream, filter.Middleware())
}

func signToken(t *testing.T, ttl time.Duration) string {
	t.Helper()

	signer, err := jwtx.NewSignerHS256(testSecret)
	require.NoError(t, err)

	token, err := signer.Sign(jwtx.NewClaims("alice", "01JXAMPLE0000000000000000A", []string{"USER", "ADMIN"}, ttl, time.Now()))
	require.NoError(t, err)
	return token
}

func TestFilterExcludedPathSkipsVerification(t *testing.T) {
	verifier, captured, handler := newFilterEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, captured.hits)
	require.Zero(t, verifier.calls)
}

func TestFilterExcludedPathStillStripsIdentityHeaders(t *testing.T) {
	_, captured, handler := newFilterEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/register", nil)
	req.Header.Set(httpx.HeaderUserID, "01JFORGED0000000000000000A")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, captured.header.Get(httpx.HeaderUserID))
}

func TestFilterMissingToken(t *testing.T) {
	_, captured, handler := newFilterEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Empty(t, rec.Body.String())
	require.Zero(t, captured.hits)
}

func TestFilterRejectsBadTokens(t *testing.T) {
	_, captured, handler := newFilterEnv(t)

	valid := signToken(t, 15*time.Minute)

	cases := []struct {
		name  string
		value string
	}{
		{"garbage", "Bearer not-a-jwt"},
		{"tampered", "Bearer " + valid[:len(valid)-2] + "xx"},
		{"wrong scheme", "Basic " + valid},
		{"empty bearer", "Bearer "},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
			req.Header.Set("Authorization", tc.value)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			require.Equal(t, http.StatusUnauthorized, rec.Code)
			require.Empty(t, rec.Body.String())
		})
	}

	require.Zero(t, captured.hits)
}

func TestFilterRejectsExpiredToken(t *testing.T) {
	_, captured, handler := newFilterEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, -time.Minute))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Zero(t, captured.hits)
}

func TestFilterInjectsVerifiedIdentity(t *testing.T) {
	_, captured, handler := newFilterEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, 15*time.Minute))
	// Forged identity must be replaced, not merged.
	req.Header.Set(httpx.HeaderUserID, "01JFORGED0000000000000000A")
	req.Header.Set(httpx.HeaderUserRoles, "ADMIN,ROOT")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, captured.hits)
	require.Equal(t, "01JXAMPLE0000000000000000A", captured.header.Get(httpx.HeaderUserID))
	require.Equal(t, "alice", captured.header.Get(httpx.HeaderUsername))
	require.Equal(t, "USER,ADMIN", captured.header.Get(httpx.HeaderUserRoles))
	require.Equal(t, []string{"01JXAMPLE0000000000000000A"}, captured.header.Values(httpx.HeaderUserID))
}

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"BEARER abc", "abc", true},
		{"Bearer  abc ", "abc", true},
		{"Bearer ", "", false},
		{"Basic abc", "", false},
		{"", "", false},
		{"Bearerabc", "", false},
	}

	for _, tc := range cases {
		token, ok := bearerToken(tc.header)
		require.Equal(t, tc.ok, ok, "header %q", tc.header)
		require.Equal(t, tc.token, token, "header %q", tc.header)
	}
}
