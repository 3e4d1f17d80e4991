package config

type SecurityConfig interface {
	GetFingerprintKey() string
}

type Security struct {
	FingerprintKey string `env:"FINGERPRINT_KEY"`
}

var _ SecurityConfig = Security{}

// GetFingerprintKey returns the key used to hash client addresses in logs. Empty means a
// random per-process key.
func (s Security) GetFingerprintKey() string {
	return s.FingerprintKey
}
