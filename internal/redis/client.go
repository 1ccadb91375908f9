package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultClientName  = "folio"
	DefaultPingTimeout = 5 * time.Second
)

type Config struct {
	URL         string
	ClientName  string
	PingTimeout time.Duration
}

// New parses cfg.URL, tags the connection with a client name so it can be
// spotted in CLIENT LIST, and fails fast when the server is unreachable.
func New(ctx context.Context, cfg Config) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	opt.ClientName = cfg.ClientName
	if opt.ClientName == "" {
		opt.ClientName = DefaultClientName
	}

	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = DefaultPingTimeout
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", opt.Addr, err)
	}
	return client, nil
}
