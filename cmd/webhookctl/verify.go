package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/garrettladley/folio/internal/service/billing"
)

func verifyCmd() *cobra.Command {
	var (
		payload   payloadFlags
		secret    string
		header    string
		tolerance time.Duration
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check a payload against a Stripe-Signature header",
		Long: "Check a payload against a Stripe-Signature header and explain the failure.\n" +
			"Unlike the server, the exact failure reason is printed.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := readConfig()
			if err != nil {
				return err
			}
			key, err := cfg.secret(secret)
			if err != nil {
				return err
			}
			if payload.file == "" {
				return errors.New("verify needs --file")
			}

			body, err := payload.load(cmd.InOrStdin())
			if err != nil {
				return err
			}

			signedAt, err := billing.Verify(key, body, header, time.Now(), tolerance)
			if err != nil {
				return fmt.Errorf("verification failed: %w", err)
			}

			event, err := billing.ParseEnvelope(body)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "valid signature, signed %s ago\n", time.Since(signedAt).Round(time.Second))
			_, _ = fmt.Fprintln(out, billing.RouteEvent(event.Type, event.ObjectID).Message)
			if customerID := billing.ExtractCustomerID(event.Object); customerID != "" {
				_, _ = fmt.Fprintf(out, "customer %s\n", customerID)
			}
			return nil
		},
	}

	payload.register(cmd)
	cmd.Flags().StringVar(&secret, "secret", "", "webhook signing secret (default $STRIPE_WEBHOOK_SECRET)")
	cmd.Flags().StringVar(&header, "header", "", "Stripe-Signature header value")
	cmd.Flags().DurationVar(&tolerance, "tolerance", billing.DefaultTolerance, "allowed clock skew")
	_ = cmd.MarkFlagRequired("header")
	return cmd
}
