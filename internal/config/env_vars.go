package config

import (
	"strings"
)

const (
	EnvDev  = "DEV"
	EnvProd = "PROD"
)

type EnvVars struct {
	Port           string `env:"PORT" env-default:"8080"`
	AppName        string `env:"APP_NAME" env-default:"Portfolio"`
	Env            string `env:"ENV" env-default:"DEV"`
	BaseURL        string `env:"BASE_URL" env-default:"http://localhost:8080"`
	SmtpHost       string `env:"SMTP_HOST" env-default:"smtp.gmail.com"`
	SmtpPort       string `env:"SMTP_PORT" env-default:"587"`
	SmtpAccount    string `env:"SMTP_ACCOUNT"`
	SmtpPassword   string `env:"SMTP_PASSWORD"`
	EmailRecipient string `env:"EMAIL_RECIPIENT"`
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := e.Port
	if port == "" {
		port = "8080"
	}
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

// GetBaseURL returns the public URL of the site (e.g., "https://example.dev")
func (e EnvVars) GetBaseURL() string {
	return strings.TrimRight(e.BaseURL, "/")
}

func (e EnvVars) GetSmtpPassword() string {
	return e.SmtpPassword
}

func (e EnvVars) GetSmtpAccount() string {
	return e.SmtpAccount
}

func (e EnvVars) GetSmtpHost() string {
	return e.SmtpHost
}

func (e EnvVars) GetSmtpPort() string {
	return e.SmtpPort
}

func (e EnvVars) GetSmtpRecipient() string {
	return e.EmailRecipient
}

func (e EnvVars) GetEnv() string {
	if e.Env == "" {
		return EnvDev
	}
	return strings.ToUpper(e.Env)
}
