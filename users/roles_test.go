package users_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-portfolio/internal/errors"
	"github.com/jrsteele09/go-portfolio/users"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for in, want := range map[string]users.Role{"admin": users.RoleAdmin, " Teacher ": users.RoleTeacher, "VIEWER": users.RoleViewer} {
		got, err := users.ParseRole(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := users.ParseRole("root")
	require.ErrorIs(t, err, errors.ErrUnknownRole)
}

func TestRoles_Permits(t *testing.T) {
	rs := users.Roles{users.RoleAdmin, users.RoleTeacher}
	require.True(t, rs.Permits(users.RoleAdmin))
	require.True(t, rs.Permits(users.RoleTeacher))
	require.False(t, rs.Permits(users.RoleViewer))
	require.False(t, rs.Permits(users.RoleUnknown))
	require.False(t, users.Roles{users.RoleUnknown}.Permits(users.RoleUnknown))
}

func TestJWTRoleResolver(t *testing.T) {
	const secret = "s3cret"
	resolver := users.NewJWTRoleResolver(secret)

	t.Run("valid role claim", func(t *testing.T) {
		cred, err := users.SignCredential(secret, users.RoleTeacher, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))})
		require.NoError(t, err)
		role, err := resolver.Resolve(cred)
		require.NoError(t, err)
		require.Equal(t, users.RoleTeacher, role)
	})

	t.Run("wrong secret", func(t *testing.T) {
		cred, err := users.SignCredential("other", users.RoleAdmin, jwt.RegisteredClaims{})
		require.NoError(t, err)
		role, err := resolver.Resolve(cred)
		require.Error(t, err)
		require.Equal(t, users.RoleUnknown, role)
	})

	t.Run("opaque credential", func(t *testing.T) {
		role, err := resolver.Resolve("abc123")
		require.Error(t, err)
		require.Equal(t, users.RoleUnknown, role)
	})

	t.Run("no secret configured", func(t *testing.T) {
		role, err := users.NewJWTRoleResolver("").Resolve("abc123")
		require.ErrorIs(t, err, errors.ErrMissingConfig)
		require.Equal(t, users.RoleUnknown, role)
	})
}
