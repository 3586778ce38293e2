package httpx

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/meshauth/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestUserIDFromHeaders(t *testing.T) {
	t.Parallel()

	t.Run("extracts a valid principal id", func(t *testing.T) {
		id := idx.New()
		h := http.Header{}
		h.Set(HeaderUserID, id.String())

		got, err := UserIDFromHeaders(h)
		require.NoError(t, err)
		require.Equal(t, id, got)
	})

	t.Run("missing header", func(t *testing.T) {
		_, err := UserIDFromHeaders(http.Header{})
		require.ErrorIs(t, err, ErrMissingIdentity)
	})

	t.Run("blank header", func(t *testing.T) {
		h := http.Header{}
		h.Set(HeaderUserID, "   ")
		_, err := UserIDFromHeaders(h)
		require.ErrorIs(t, err, ErrMissingIdentity)
	})

	t.Run("malformed id", func(t *testing.T) {
		h := http.Header{}
		h.Set(HeaderUserID, "not-a-ulid")
		_, err := UserIDFromHeaders(h)
		require.ErrorIs(t, err, ErrMalformedIdentity)
	})
}

func TestRolesFromHeaders(t *testing.T) {
	t.Parallel()

	h := http.Header{}
	require.Nil(t, RolesFromHeaders(h))

	h.Set(HeaderUserRoles, "USER, MOD,,ADMIN ")
	require.Equal(t, []string{"USER", "MOD", "ADMIN"}, RolesFromHeaders(h))

	h.Set(HeaderUserRoles, " , ")
	require.Nil(t, RolesFromHeaders(h))
}
