package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/stockbook/internal/app"
	"github.com/JonMunkholm/stockbook/internal/config"
	"github.com/JonMunkholm/stockbook/internal/core"
	"github.com/JonMunkholm/stockbook/internal/logging"
)

type rootOptions struct {
	envFile string
	backend string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "stockctl",
		Short:         "Manage the stock sheet",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file to load if present")
	cmd.PersistentFlags().StringVar(&opts.backend, "backend", "", "override STORE_BACKEND")

	cmd.AddCommand(
		newShowCmd(opts),
		newImportCmd(opts),
		newExportCmd(opts),
	)
	return cmd
}

// open loads configuration and the stock snapshot. Logs go to stderr so
// command output can be piped.
func (o *rootOptions) open(ctx context.Context) (*app.App, core.Snapshot, error) {
	if o.envFile != "" {
		if _, err := os.Stat(o.envFile); err == nil {
			if err := godotenv.Overload(o.envFile); err != nil {
				return nil, core.Snapshot{}, err
			}
		}
	}

	if o.backend != "" {
		os.Setenv("STORE_BACKEND", o.backend)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, core.Snapshot{}, err
	}
	slog.SetDefault(logging.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format))

	a, err := app.New(ctx, cfg)
	if err != nil {
		return nil, core.Snapshot{}, err
	}
	snap, err := a.Service.Load(ctx)
	if err != nil {
		a.Close()
		return nil, core.Snapshot{}, err
	}
	return a, snap, nil
}
