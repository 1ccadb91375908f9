package server

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	appenv "github.com/garrettladley/folio/internal/env"
	"github.com/garrettladley/folio/internal/service/billing"
	"github.com/garrettladley/folio/internal/xhttp"
)

type Config struct {
	Port           string             `env:"PORT" envDefault:"8080"`
	Env            appenv.Environment `env:"ENV" envDefault:"development"`
	TrustedProxies []string           `env:"TRUSTED_PROXIES" envSeparator:","`
	Stripe    Stripe             `envPrefix:"STRIPE_"`
	Webhook   Webhook            `envPrefix:"WEBHOOK_"`
	RateLimit RateLimit          `envPrefix:"RATE_"`
	Telemetry Telemetry          `envPrefix:"TELEMETRY_"`
}

type Stripe struct {
	WebhookSecret string        `env:"WEBHOOK_SECRET,required,notEmpty"`
	Tolerance     time.Duration `env:"TOLERANCE" envDefault:"5m"`
}

type Webhook struct {
	MaxBodyBytes int64 `env:"MAX_BODY_BYTES" envDefault:"65536"`
}

type RateLimit struct {
	Limit float64 `env:"LIMIT" envDefault:"10"`
	Burst int     `env:"BURST" envDefault:"20"`
}

type Telemetry struct {
	RedisURL     string        `env:"REDIS_URL"`
	RedisChannel string        `env:"REDIS_CHANNEL" envDefault:"billing:webhooks"`
	DatabaseURL  string        `env:"DATABASE_URL"`
	SQLitePath   string        `env:"SQLITE_PATH"`
	Concurrency  int           `env:"CONCURRENCY" envDefault:"8"`
	Timeout      time.Duration `env:"TIMEOUT" envDefault:"5s"`
}

func ReadConfig() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Env != appenv.Development && c.Env != appenv.Production {
		return fmt.Errorf("invalid environment %q (valid: development, production)", c.Env)
	}
	if c.Stripe.Tolerance <= 0 {
		return fmt.Errorf("STRIPE_TOLERANCE must be positive, got %s", c.Stripe.Tolerance)
	}
	if c.Webhook.MaxBodyBytes <= 0 {
		return fmt.Errorf("WEBHOOK_MAX_BODY_BYTES must be positive, got %d", c.Webhook.MaxBodyBytes)
	}
	if _, err := xhttp.ParseTrustedProxies(c.TrustedProxies); err != nil {
		return fmt.Errorf("TRUSTED_PROXIES: %w", err)
	}
	if c.Env.IsProduction() && c.Telemetry.SQLitePath != "" {
		return fmt.Errorf("TELEMETRY_SQLITE_PATH is for development only")
	}
	return nil
}

// SecretProvider returns the webhook secret source for the billing processor.
func (c Config) SecretProvider() billing.SecretProvider {
	return billing.StaticSecret(c.Stripe.WebhookSecret)
}

// ClientIPResolver builds the resolver for the configured proxy ranges.
// Validate has already rejected malformed entries.
func (c Config) ClientIPResolver() *xhttp.ClientIPResolver {
	trusted, _ := xhttp.ParseTrustedProxies(c.TrustedProxies)
	return xhttp.NewClientIPResolver(trusted)
}
