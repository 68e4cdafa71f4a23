package identity

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config locates the identity service.
type Config struct {
	// Domain is the host[:port] of the identity service; requests go to
	// http://<Domain>/user.
	Domain  string        `env:"IDENTITY_SERVICE_DOMAIN,notEmpty"`
	Timeout time.Duration `env:"IDENTITY_SERVICE_TIMEOUT" envDefault:"5s"`
}

// ConfigFromEnv reads Config from the environment.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse identity config: %w", err)
	}
	return cfg, nil
}
