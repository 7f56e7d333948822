package e2e

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_SERVER_URL points at a running server, the suites are skipped without it
	ServerURL string `envconfig:"E2E_SERVER_URL"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
	// E2E_INACTIVITY_THRESHOLD must match the server one for the expiry scenario
	InactivityThreshold time.Duration `envconfig:"E2E_INACTIVITY_THRESHOLD" default:"10s"`
	// E2E_SWEEP_INTERVAL must match the server one for the expiry scenario
	SweepInterval time.Duration `envconfig:"E2E_SWEEP_INTERVAL" default:"15s"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
