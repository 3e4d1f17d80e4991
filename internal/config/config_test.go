package config_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-portfolio/internal/config"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	c, err := config.New()
	require.NoError(t, err)

	require.Equal(t, ":8080", c.GetPort())
	require.Equal(t, config.EnvDev, c.GetEnv())
	require.Equal(t, 2*time.Minute, c.GetLoginTimeout())
	require.Equal(t, 5*time.Second, c.GetSettingsPollInterval())
	require.Equal(t, "./data/local.db", c.GetLocalStorePath())
	require.Empty(t, c.GetAuthBaseURL())
	require.Empty(t, c.GetAllowedOrigins())
	require.False(t, c.GetDevAdmin())
	require.Equal(t, "http://localhost:8080"+config.CallbackPath, c.GetAuthRedirectURI())
}

func TestNew_RedirectURIFollowsBaseURL(t *testing.T) {
	t.Setenv("BASE_URL", "https://me.dev/")
	c, err := config.New()
	require.NoError(t, err)
	require.Equal(t, "https://me.dev/admin/callback", c.GetAuthRedirectURI())

	t.Setenv("AUTH_REDIRECT_URI", "https://login.me.dev/cb")
	c, err = config.New()
	require.NoError(t, err)
	require.Equal(t, "https://login.me.dev/cb", c.GetAuthRedirectURI())
}

func TestNew_DevAdminOptIn(t *testing.T) {
	t.Setenv("AUTH_DEV_ADMIN", "true")
	c, err := config.New()
	require.NoError(t, err)
	require.True(t, c.GetDevAdmin())
}

func TestNew_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ENV", "prod")
	t.Setenv("BASE_URL", "https://me.dev/")
	t.Setenv("AUTH_BASE_URL", "https://hub.example.com")
	t.Setenv("AUTH_CLIENT_ID", "portfolio")
	t.Setenv("AUTH_REDIRECT_URI", "https://me.dev/admin/callback")
	t.Setenv("AUTH_LOGIN_TIMEOUT", "45s")
	t.Setenv("SETTINGS_POLL_INTERVAL", "1s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.dev, https://b.dev")

	c, err := config.New()
	require.NoError(t, err)

	require.Equal(t, ":9000", c.GetPort())
	require.Equal(t, config.EnvProd, c.GetEnv())
	require.Equal(t, "https://me.dev", c.GetBaseURL())
	require.Equal(t, "https://hub.example.com", c.GetAuthBaseURL())
	require.Equal(t, "portfolio", c.GetAuthClientID())
	require.Equal(t, "https://me.dev/admin/callback", c.GetAuthRedirectURI())
	require.Equal(t, 45*time.Second, c.GetLoginTimeout())
	require.Equal(t, time.Second, c.GetSettingsPollInterval())
	require.True(t, c.GetAllowedOrigins().IsAllowedOrigin("https://a.dev"))
	require.True(t, c.GetAllowedOrigins().IsAllowedOrigin("https://b.dev"))
	require.False(t, c.GetAllowedOrigins().IsAllowedOrigin("https://c.dev"))
}

func TestNew_InvalidDuration(t *testing.T) {
	t.Setenv("AUTH_LOGIN_TIMEOUT", "soon")
	_, err := config.New()
	require.Error(t, err)
}
