package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config interface {
	EnvConfig
	AuthConfig
	RealtimeConfig
	CorsConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetBaseURL() string
	GetSmtpHost() string
	GetSmtpPort() string
	GetSmtpPassword() string
	GetSmtpAccount() string
	GetSmtpRecipient() string
	GetEnv() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

// CallbackPath is where the login hub returns the user.
const CallbackPath = "/admin/callback"

type mainConfig struct {
	EnvVars
	Auth
	Realtime
	Cors
	Security
}

// GetAuthRedirectURI falls back to the callback route under BASE_URL.
func (c mainConfig) GetAuthRedirectURI() string {
	if uri := c.Auth.GetAuthRedirectURI(); uri != "" {
		return uri
	}
	if base := c.GetBaseURL(); base != "" {
		return base + CallbackPath
	}
	return ""
}

// New reads the configuration from the process environment.
func New() (Config, error) {
	var c mainConfig
	if err := cleanenv.ReadEnv(&c); err != nil {
		return nil, fmt.Errorf("[config New] read env: %w", err)
	}
	return c, nil
}
