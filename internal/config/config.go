package config

import (
	"errors"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"
)

var configValue atomic.Value

func GetConfig() *Config {
	cfg, _ := configValue.Load().(*Config)
	return cfg
}

func SetConfig(cfg *Config) {
	configValue.Store(cfg)
}

type Config struct {
	Version     string          `mapstructure:"version"`
	Environment string          `mapstructure:"environment"`
	Server      ServerConfig    `mapstructure:"server"`
	Weather     WeatherConfig   `mapstructure:"weather"`
	Logging     LoggingConfig   `mapstructure:"logging"`
	Telemetry   TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	Host         string `mapstructure:"host"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	IdleTimeout  int    `mapstructure:"idle_timeout"`
}

// WeatherConfig configures the weatherapi.com history client and the
// background dispatcher that runs it.
type WeatherConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	// Timeout in seconds; 0 keeps the transport default.
	Timeout           int             `mapstructure:"timeout"`
	Workers           int             `mapstructure:"workers"`
	QueueSize         int             `mapstructure:"queue_size"`
	SupersedeInFlight bool            `mapstructure:"supersede_in_flight"`
	RateLimit         RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig paces outbound requests. RPS <= 0 disables the limiter.
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Exporter    string `mapstructure:"exporter"`
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
}

func (c WeatherConfig) RequestTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// Validate checks the settings a fetch cannot run without.
func (c WeatherConfig) Validate() error {
	if c.APIKey == "" {
		return errors.New("weather.api_key is not set (env WH_WEATHER_API_KEY)")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("weather.base_url %q is not an absolute URL", c.BaseURL)
	}
	if c.Workers < 1 {
		return fmt.Errorf("weather.workers must be at least 1, got %d", c.Workers)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("weather.timeout must not be negative, got %d", c.Timeout)
	}
	return nil
}

func NewDefaultConfig() *Config {
	return &Config{
		Version:     "1.0.0",
		Environment: "development",
		Server: ServerConfig{
			Port:         8080,
			Host:         "0.0.0.0",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  60,
		},
		Weather: WeatherConfig{
			BaseURL:   "https://api.weatherapi.com/v1",
			APIKey:    "",
			Timeout:   0,
			Workers:   2,
			QueueSize: 16,
			RateLimit: RateLimitConfig{
				RPS:   0,
				Burst: 1,
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "",
		},
		Telemetry: TelemetryConfig{
			Enabled:     false,
			Exporter:    "otlp",
			Endpoint:    "tempo:4317",
			ServiceName: "weather-history",
		},
	}
}
