package cmd

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vzahanych/weather-history-app/internal/config"
	"github.com/vzahanych/weather-history-app/internal/dispatcher"
	"github.com/vzahanych/weather-history-app/internal/service"
)

const dispatcherStopTimeout = 10 * time.Second

// startLookup builds the weatherapi.com client and a running dispatcher
// around it.
func startLookup(ctx context.Context, cfg *config.Config) (*service.WeatherAPIService, *dispatcher.Dispatcher, error) {
	if err := cfg.Weather.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid weather config: %w", err)
	}

	svc := service.NewWeatherAPIServiceWithConfig(cfg.Weather, nil, log, tele)

	d := dispatcher.New(svc, dispatcher.Options{
		Workers:   cfg.Weather.Workers,
		QueueSize: cfg.Weather.QueueSize,
	}, log, tele)

	if err := d.Start(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to start dispatcher: %w", err)
	}

	return svc, d, nil
}

func stopLookup(d *dispatcher.Dispatcher) {
	ctx, cancel := context.WithTimeout(context.Background(), dispatcherStopTimeout)
	defer cancel()

	if err := d.Stop(ctx); err != nil {
		log.Warn("Dispatcher did not stop cleanly", zap.Error(err))
	}
}
