package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/vzahanych/weather-history-app/internal/config"
	"github.com/vzahanych/weather-history-app/pkg/logger"
	"github.com/vzahanych/weather-history-app/pkg/telemetry"
)

const historyPath = "/history.json"

// WeatherAPIService looks up historical day summaries on weatherapi.com.
// It holds no per-call state; every Fetch issues a fresh request.
type WeatherAPIService struct {
	baseURL string
	apiKey  string
	client  HTTPDoer
	logger  *zap.Logger
	tele    *telemetry.Telemetry
	metrics MetricsRecorder
}

// NewWeatherAPIServiceWithConfig builds the service. A nil client means an
// *http.Client with cfg's timeout (0 keeps the transport default).
func NewWeatherAPIServiceWithConfig(cfg config.WeatherConfig, client HTTPDoer, logger *zap.Logger, tele *telemetry.Telemetry) *WeatherAPIService {
	if client == nil {
		client = &http.Client{Timeout: cfg.RequestTimeout()}
	}
	if cfg.RateLimit.RPS > 0 {
		client = NewRateLimitedDoer(client, cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &WeatherAPIService{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  client,
		logger:  logger.With(zap.String("service", "weather-api")),
		tele:    tele,
	}
}

func (s *WeatherAPIService) Name() string {
	return "weather-api"
}

// SetMetricsRecorder sets the recorder notified after every fetch.
func (s *WeatherAPIService) SetMetricsRecorder(metrics MetricsRecorder) {
	s.metrics = metrics
}

// Fetch performs one history request and classifies the result. Failures are
// returned inside the Outcome; Fetch never panics on transport or payload
// errors.
func (s *WeatherAPIService) Fetch(ctx context.Context, q Query) Outcome {
	tracer := s.tele.GetTracer()
	ctx, span := tracer.Start(ctx, "weather-api.Fetch")
	defer span.End()

	span.SetAttributes(
		attribute.String("city", q.City),
		attribute.String("date", q.Date),
		attribute.String("service", s.Name()),
	)

	reqLogger := logger.FromContext(ctx, s.logger).With(
		zap.String("city", q.City),
		zap.String("date", q.Date))

	reqLogger.Debug("Fetching history from WeatherAPI")

	outcome := s.fetch(ctx, q)

	outcome.Match(func(f Forecast) {
		span.SetAttributes(attribute.Bool("success", true))
		reqLogger.Info("WeatherAPI history fetched",
			zap.Float64("max_temp_c", f.MaxTempC),
			zap.Float64("min_temp_c", f.MinTempC))
	}, func(err *FetchError) {
		span.SetAttributes(
			attribute.Bool("success", false),
			attribute.String("error.kind", err.Kind.String()),
		)
		span.RecordError(err)
		reqLogger.Warn("WeatherAPI history fetch failed",
			zap.Stringer("kind", err.Kind),
			zap.String("message", err.Message))
	})

	if s.metrics != nil {
		s.metrics.RecordWeatherServiceCall(ctx, s.Name(), outcomeLabel(outcome))
	}

	return outcome
}

// FetchAsync runs Fetch on its own goroutine. The returned channel yields
// exactly one Outcome and is then closed.
func (s *WeatherAPIService) FetchAsync(ctx context.Context, q Query) <-chan Outcome {
	ch := make(chan Outcome, 1)
	go func() {
		defer close(ch)
		ch <- s.Fetch(ctx, q)
	}()
	return ch
}

func (s *WeatherAPIService) fetch(ctx context.Context, q Query) Outcome {
	endpoint, err := s.historyURL(q)
	if err != nil {
		return Failed(networkError("failed to build request URL: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Failed(networkError("failed to create request: %v", s.redact(err)))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return Failed(networkError("failed to execute request: %v", s.redact(err)))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Failed(networkError("failed to read response body: %v", s.redact(err)))
	}

	return ParseHistoryResponse(resp.StatusCode, body)
}

func (s *WeatherAPIService) historyURL(q Query) (string, error) {
	u, err := url.Parse(s.baseURL + historyPath)
	if err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("key", s.apiKey)
	params.Set("q", q.City)
	params.Set("dt", q.Date)
	u.RawQuery = params.Encode()

	return u.String(), nil
}

// redact strips the API key from URLs embedded in transport errors so it
// never reaches logs or callers.
func (s *WeatherAPIService) redact(err error) error {
	if s.apiKey == "" {
		return err
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		return &url.Error{
			Op:  ue.Op,
			URL: strings.ReplaceAll(ue.URL, url.QueryEscape(s.apiKey), "REDACTED"),
			Err: ue.Err,
		}
	}
	if msg := err.Error(); strings.Contains(msg, s.apiKey) {
		return errors.New(strings.ReplaceAll(msg, s.apiKey, "REDACTED"))
	}
	return err
}

func outcomeLabel(o Outcome) string {
	if err := o.Err(); err != nil {
		return err.Kind.String()
	}
	return "success"
}

var _ HistoryService = (*WeatherAPIService)(nil)
