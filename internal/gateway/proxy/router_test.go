package proxy

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/meshauth/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func TestParseRoutes(t *testing.T) {
	routes, err := ParseRoutes("/auth=http://user:8081, /v1/users=http://user:8081")
	require.NoError(t, err)
	require.Len(t, routes, 2)

	t.Run("longest prefix first", func(t *testing.T) {
		require.Equal(t, "/v1/users", routes[0].Prefix)
		require.Equal(t, "/auth", routes[1].Prefix)
	})

	t.Run("rejects malformed entries", func(t *testing.T) {
		_, err := ParseRoutes("/auth")
		require.Error(t, err)

		_, err = ParseRoutes("auth=http://user:8081")
		require.Error(t, err)

		_, err = ParseRoutes("/auth=not a url")
		require.Error(t, err)

		_, err = ParseRoutes("")
		require.Error(t, err)
	})
}

func TestRouterForwardsByPrefix(t *testing.T) {
	userSvc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "user:"+r.URL.Path)
	}))
	defer userSvc.Close()

	otherSvc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "other:"+r.URL.Path)
	}))
	defer otherSvc.Close()

	routes, err := ParseRoutes("/auth=" + userSvc.URL + ",/v1/users=" + userSvc.URL + ",/v1/orders=" + otherSvc.URL)
	require.NoError(t, err)

	router := NewRouter("/api", routes)
	handler := httpx.Chain(router, router.StripAPIPrefix())

	get := func(path string) (int, string) {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code, rec.Body.String()
	}

	t.Run("strips api prefix before forwarding", func(t *testing.T) {
		code, body := get("/api/auth/login")
		require.Equal(t, http.StatusOK, code)
		require.Equal(t, "user:/auth/login", body)
	})

	t.Run("routes by longest prefix", func(t *testing.T) {
		code, body := get("/api/v1/orders/123")
		require.Equal(t, http.StatusOK, code)
		require.Equal(t, "other:/v1/orders/123", body)
	})

	t.Run("outside the api prefix is not forwarded", func(t *testing.T) {
		code, _ := get("/auth/login")
		require.Equal(t, http.StatusNotFound, code)
	})

	t.Run("unrouted path is 404", func(t *testing.T) {
		code, _ := get("/api/v1/unknown")
		require.Equal(t, http.StatusNotFound, code)
	})
}
