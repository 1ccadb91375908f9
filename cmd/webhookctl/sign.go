package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/garrettladley/folio/internal/service/billing"
)

func signCmd() *cobra.Command {
	var (
		payload   payloadFlags
		secret    string
		timestamp int64
		printBody bool
	)

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Print a Stripe-Signature header for a payload",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := readConfig()
			if err != nil {
				return err
			}
			key, err := cfg.secret(secret)
			if err != nil {
				return err
			}

			body, err := payload.load(cmd.InOrStdin())
			if err != nil {
				return err
			}

			signedAt := time.Now()
			if timestamp != 0 {
				signedAt = time.Unix(timestamp, 0)
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, billing.Sign(key, body, signedAt))
			if printBody {
				_, _ = fmt.Fprintln(out, string(body))
			}
			return nil
		},
	}

	payload.register(cmd)
	cmd.Flags().StringVar(&secret, "secret", "", "webhook signing secret (default $STRIPE_WEBHOOK_SECRET)")
	cmd.Flags().Int64Var(&timestamp, "timestamp", 0, "unix timestamp to sign with (default now)")
	cmd.Flags().BoolVar(&printBody, "print-body", false, "print the signed payload after the header")
	return cmd
}
