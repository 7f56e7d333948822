package internal

import (
	"fmt"
	"time"
)

type Config struct {
	BadgerFilepath      string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel            string        `env:"LOG_LEVEL,default=INFO"`
	Host                string        `env:"HOST,default=0.0.0.0"`
	Port                int           `env:"PORT,default=5000"`
	InactivityThreshold time.Duration `env:"INACTIVITY_THRESHOLD,default=10s"`
	SweepInterval       time.Duration `env:"SWEEP_INTERVAL,default=15s"`
	RestartInterval     time.Duration `env:"RESTART_INTERVAL,default=1s"`
	ShutdownTimeout     time.Duration `env:"SHUTDOWN_TIMEOUT,default=5s"`
}

// Address is the host:port the REST server listens on.
func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate rejects durations that would stop the sweep from working.
func (c Config) Validate() error {
	if c.InactivityThreshold <= 0 {
		return fmt.Errorf("INACTIVITY_THRESHOLD must be positive, got %s", c.InactivityThreshold)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be positive, got %s", c.SweepInterval)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be a valid TCP port, got %d", c.Port)
	}
	return nil
}
