package main

import (
	"context"
	"os"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/garrettladley/folio/internal/version"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:          "webhookctl",
		Short:        "Sign, verify, send and watch billing webhook deliveries",
		Version:      version.Get(),
		SilenceUsage: true,
	}

	rootCmd.AddCommand(signCmd())
	rootCmd.AddCommand(verifyCmd())
	rootCmd.AddCommand(sendCmd())
	rootCmd.AddCommand(tailCmd())

	if err := fang.Execute(context.Background(), rootCmd, fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM)); err != nil {
		os.Exit(1)
	}
}
