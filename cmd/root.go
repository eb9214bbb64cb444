package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vzahanych/weather-history-app/internal/config"
	"github.com/vzahanych/weather-history-app/pkg/logger"
	"github.com/vzahanych/weather-history-app/pkg/telemetry"
)

var (
	configPath string
	log        *zap.Logger
	tele       *telemetry.Telemetry
)

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weather",
		Short: "Historical weather lookup",
		Long: `Looks up the recorded maximum and minimum temperature for a city on a
past calendar date, from the command line or over HTTP.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeServices(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return shutdownServices()
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to configuration file (default: ./config.yaml)")

	cmd.AddCommand(serverCmd())
	cmd.AddCommand(historyCmd())
	cmd.AddCommand(promptCmd())
	cmd.AddCommand(validateCmd())

	return cmd
}

func Execute() error {
	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go watchSignals(ctx, cancel, sigChan)

	return rootCmd().ExecuteContext(ctx)
}

// watchSignals cancels ctx with the received signal as its cause. It does not
// log, since the logger may still be under construction.
func watchSignals(ctx context.Context, cancel context.CancelCauseFunc, sigChan <-chan os.Signal) {
	select {
	case sig := <-sigChan:
		cancel(fmt.Errorf("received signal %s", sig))
	case <-ctx.Done():
	}
}

func initializeServices(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// 1. Load config
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Set config
	// Having config in atomic allows changing it during runtime
	config.SetConfig(cfg)

	// 3. Initialize logger
	log, err = logger.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// 4. Initialize telemetry
	tele, err = telemetry.New(ctx, cfg.Telemetry)
	if err != nil {
		log.Warn("Failed to initialize telemetry", zap.Error(err))
		tele = nil
	}

	return nil
}

func shutdownServices() error {
	if err := tele.Shutdown(context.Background()); err != nil {
		log.Warn("Failed to shut down telemetry", zap.Error(err))
	}
	if log != nil {
		_ = log.Sync()
	}
	return nil
}
