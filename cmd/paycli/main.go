package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/diewo77/invoice-pay/internal/config"
	"github.com/diewo77/invoice-pay/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string
	rootCmd := &cobra.Command{
		Use:           "paycli",
		Short:         "Pay invoices by card from the terminal",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			_, err := logging.New(logLevel, true)
			return err
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(invoicesCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(payCmd())
	return rootCmd
}

// loadConfig reads the environment after .env has been applied.
func loadConfig() (*config.Config, error) {
	return config.Load()
}
