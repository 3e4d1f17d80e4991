package config

import "time"

type AuthConfig interface {
	GetAuthBaseURL() string
	GetAuthClientID() string
	GetAuthClientSecret() string
	GetAuthRedirectURI() string
	GetOIDCIssuer() string
	GetJWTSecret() string
	GetDevAdmin() bool
	GetLoginTimeout() time.Duration
}

// Auth holds the external login hub settings. The three login values are
// deliberately left without defaults so a missing one is reported at login time.
type Auth struct {
	AuthBaseURL      string        `env:"AUTH_BASE_URL"`
	AuthClientID     string        `env:"AUTH_CLIENT_ID"`
	AuthClientSecret string        `env:"AUTH_CLIENT_SECRET"`
	AuthRedirectURI  string        `env:"AUTH_REDIRECT_URI"`
	OIDCIssuer       string        `env:"AUTH_OIDC_ISSUER"`
	JWTSecret        string        `env:"AUTH_JWT_SECRET"`
	DevAdmin         bool          `env:"AUTH_DEV_ADMIN" env-default:"false"`
	LoginTimeout     time.Duration `env:"AUTH_LOGIN_TIMEOUT" env-default:"2m"`
}

var _ AuthConfig = Auth{}

func (a Auth) GetAuthBaseURL() string {
	return a.AuthBaseURL
}

func (a Auth) GetAuthClientID() string {
	return a.AuthClientID
}

func (a Auth) GetAuthClientSecret() string {
	return a.AuthClientSecret
}

func (a Auth) GetAuthRedirectURI() string {
	return a.AuthRedirectURI
}

// GetOIDCIssuer returns the issuer used to verify id_tokens. Empty disables verification.
func (a Auth) GetOIDCIssuer() string {
	return a.OIDCIssuer
}

// GetJWTSecret returns the HS256 secret used to read role claims from credentials.
func (a Auth) GetJWTSecret() string {
	return a.JWTSecret
}

// GetDevAdmin reports whether every credential may be treated as an admin when no
// JWT secret is configured. Only honoured in DEV.
func (a Auth) GetDevAdmin() bool {
	return a.DevAdmin
}

func (a Auth) GetLoginTimeout() time.Duration {
	if a.LoginTimeout <= 0 {
		return 2 * time.Minute
	}
	return a.LoginTimeout
}
