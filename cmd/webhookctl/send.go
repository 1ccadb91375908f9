package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/garrettladley/folio/internal/server/handler"
	"github.com/garrettladley/folio/internal/service/billing"
	"github.com/garrettladley/folio/internal/xhttp"
)

const maxResponseBytes = 64 * 1024

func sendCmd() *cobra.Command {
	var (
		payload payloadFlags
		secret  string
		url     string
		skew    time.Duration
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Sign a payload and POST it to a webhook endpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := readConfig()
			if err != nil {
				return err
			}
			key, err := cfg.secret(secret)
			if err != nil {
				return err
			}
			if url == "" {
				url = cfg.URL
			}

			body, err := payload.load(cmd.InOrStdin())
			if err != nil {
				return err
			}

			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost, url, bytes.NewReader(body))
			if err != nil {
				return fmt.Errorf("failed to build request: %w", err)
			}
			req.Header.Set(xhttp.ContentType, "application/json")
			req.Header.Set(handler.HeaderStripeSignature, billing.Sign(key, body, time.Now().Add(-skew)))

			resp, err := xhttp.NewHTTPClient(xhttp.WithTimeout(timeout)).Do(req)
			if err != nil {
				return fmt.Errorf("failed to send webhook: %w", err)
			}
			defer func() { _ = resp.Body.Close() }()

			respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			if err != nil {
				return fmt.Errorf("failed to read response: %w", err)
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, resp.Status)
			_, _ = fmt.Fprintln(out, string(bytes.TrimSpace(respBody)))

			if resp.StatusCode >= http.StatusBadRequest {
				return fmt.Errorf("endpoint rejected webhook: %s", resp.Status)
			}
			return nil
		},
	}

	payload.register(cmd)
	cmd.Flags().StringVar(&secret, "secret", "", "webhook signing secret (default $STRIPE_WEBHOOK_SECRET)")
	cmd.Flags().StringVar(&url, "url", "", "endpoint URL (default $WEBHOOKCTL_URL)")
	cmd.Flags().DurationVar(&skew, "skew", 0, "sign as if this long ago, to exercise the tolerance window")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "request timeout")
	return cmd
}
