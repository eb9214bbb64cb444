package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vzahanych/weather-history-app/internal/config"
	"github.com/vzahanych/weather-history-app/internal/server"
)

func serverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Start the weather history HTTP server",
		Long:  `Start the HTTP server that answers /history lookups against weatherapi.com, with health, metrics and tracing.`,
		Args:  cobra.NoArgs,
		RunE:  runServer,
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg := config.GetConfig()

	log.Info("Starting weather history server",
		zap.String("config_path", configPath),
		zap.Bool("telemetry_enabled", cfg.Telemetry.Enabled),
		zap.Int("server_port", cfg.Server.Port),
		zap.Int("workers", cfg.Weather.Workers))

	svc, d, err := startLookup(cmd.Context(), cfg)
	if err != nil {
		log.Error("Failed to start lookup pipeline", zap.Error(err))
		return err
	}
	defer stopLookup(d)

	srv := server.NewServer(cfg.Server, d, svc, log, tele)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		log.Error("Server error", zap.Error(err))
		return err
	case <-cmd.Context().Done():
		log.Info("Shutting down server", zap.NamedError("cause", context.Cause(cmd.Context())))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Error during server shutdown", zap.Error(err))
			return err
		}

		log.Info("Server shutdown complete")
		return nil
	}
}
