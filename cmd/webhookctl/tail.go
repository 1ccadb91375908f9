package main

import (
	"errors"
	"fmt"

	go_json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	xredis "github.com/garrettladley/folio/internal/redis"
	"github.com/garrettladley/folio/internal/telemetry"
)

func tailCmd() *cobra.Command {
	var (
		channel string
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Stream webhook telemetry published to Redis",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := readConfig()
			if err != nil {
				return err
			}
			if cfg.RedisURL == "" {
				return errors.New("TELEMETRY_REDIS_URL is not set")
			}
			if channel == "" {
				channel = cfg.RedisChannel
			}

			ctx := cmd.Context()
			client, err := xredis.New(ctx, xredis.Config{URL: cfg.RedisURL})
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			events, stop, err := telemetry.NewRedis(client, channel).Subscribe(ctx)
			if err != nil {
				return err
			}
			defer stop()

			out := cmd.OutOrStdout()
			enc := go_json.NewEncoder(out)
			for event := range events {
				if jsonOut {
					if err := enc.Encode(event); err != nil {
						return fmt.Errorf("failed to encode event: %w", err)
					}
					continue
				}
				_, _ = fmt.Fprintln(out, formatEvent(event))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&channel, "channel", "", "pub/sub channel (default $TELEMETRY_REDIS_CHANNEL)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print raw JSON events")
	return cmd
}

func formatEvent(event telemetry.WebhookEvent) string {
	status := "handled"
	if !event.Handled {
		status = "unhandled"
	}
	line := fmt.Sprintf("%s  %-40s %-9s %s", event.ReceivedAt.Format("15:04:05"), event.EventType, status, event.ObjectID)
	if event.CustomerID != "" {
		line += "  customer=" + event.CustomerID
	}
	return line
}
