// Package cli is the payctl operator command line.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/baharkarakas/sagepaypi/internal/app"
	"github.com/baharkarakas/sagepaypi/internal/config"
	"github.com/baharkarakas/sagepaypi/internal/logger"
)

var (
	verbose bool
	rootCmd *cobra.Command
)

func init() {
	rootCmd = &cobra.Command{
		Use:   "payctl",
		Short: "Operate card payment transactions",
		Long: `payctl runs lifecycle operations against stored transactions: outcome refresh,
release, abort, void, repeat and refund, plus database migrations and callback tokens.

Configuration is read from the environment (and an optional .env file).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(outcomeCmd)
	rootCmd.AddCommand(releaseCmd)
	rootCmd.AddCommand(abortCmd)
	rootCmd.AddCommand(voidCmd)
	rootCmd.AddCommand(repeatCmd)
	rootCmd.AddCommand(refundCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(hashPasswordCmd)
}

// Execute runs the root command
func Execute(version string) error {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// loadApp reads the configuration and builds the services. Logs go to stderr
// so stdout stays machine readable.
func loadApp(ctx context.Context, adjust func(*config.Config)) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if adjust != nil {
		adjust(&cfg)
	}
	env := cfg.Env
	if verbose {
		env = "dev"
	}
	slog.SetDefault(logger.NewWithWriter(env, os.Stderr))
	return app.Build(ctx, cfg)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
