package config

import "time"

type RealtimeConfig interface {
	GetDatabaseURL() string
	GetLocalStorePath() string
	GetSettingsPollInterval() time.Duration
}

type Realtime struct {
	DatabaseURL          string        `env:"DATABASE_URL"`
	LocalStorePath       string        `env:"LOCAL_STORE_PATH" env-default:"./data/local.db"`
	SettingsPollInterval time.Duration `env:"SETTINGS_POLL_INTERVAL" env-default:"5s"`
}

var _ RealtimeConfig = Realtime{}

// GetDatabaseURL returns the hosted Postgres connection string. Empty selects the in-memory backend.
func (r Realtime) GetDatabaseURL() string {
	return r.DatabaseURL
}

func (r Realtime) GetLocalStorePath() string {
	return r.LocalStorePath
}

func (r Realtime) GetSettingsPollInterval() time.Duration {
	if r.SettingsPollInterval <= 0 {
		return 5 * time.Second
	}
	return r.SettingsPollInterval
}
