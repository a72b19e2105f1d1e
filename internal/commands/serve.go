package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/carson-networks/bank-server/internal/config"
	"github.com/carson-networks/bank-server/internal/logging"
)

func newServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, *configPath)
		},
	}
}

func runServe(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := logging.SetupLogging(cfg.Log.Level)
	logger.WithField("store", cfg.Store).Info("bank-server starting")

	a, err := newApp(cfg, logger)
	if err != nil {
		logger.WithError(err).Error("bank-server.setup")
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.WithError(err).Error("bank-server.close")
		}
	}()

	return a.rest.Serve(ctx)
}
