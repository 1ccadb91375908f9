package main

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/garrettladley/folio/internal/telemetry"
)

var errNoSecret = errors.New("no webhook secret: pass --secret or set STRIPE_WEBHOOK_SECRET")

type config struct {
	Secret       string `env:"STRIPE_WEBHOOK_SECRET"`
	URL          string `env:"WEBHOOKCTL_URL" envDefault:"http://localhost:8080/webhooks/stripe"`
	RedisURL     string `env:"TELEMETRY_REDIS_URL"`
	RedisChannel string `env:"TELEMETRY_REDIS_CHANNEL" envDefault:"billing:webhooks"`
}

func readConfig() (config, error) {
	cfg, err := env.ParseAs[config]()
	if err != nil {
		return config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.RedisChannel == "" {
		cfg.RedisChannel = telemetry.DefaultRedisChannel
	}
	return cfg, nil
}

// secret prefers the flag value over the environment.
func (c config) secret(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if c.Secret != "" {
		return c.Secret, nil
	}
	return "", errNoSecret
}
