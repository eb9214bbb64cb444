package handlers

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vzahanych/weather-history-app/internal/server/middlewares"
)

// HTTPMetricsSource exposes the request counters kept by the metrics
// middleware.
type HTTPMetricsSource interface {
	Snapshot() middlewares.HTTPSnapshot
}

// AppMetrics counts weather service calls by outcome.
type AppMetrics struct {
	mutex sync.RWMutex
	// service -> outcome -> count
	weatherServiceCalls map[string]map[string]int64
}

type MetricsHandler struct {
	logger     *zap.Logger
	httpStats  HTTPMetricsSource
	appMetrics *AppMetrics
}

func NewMetricsHandler(logger *zap.Logger, httpStats HTTPMetricsSource) *MetricsHandler {
	return &MetricsHandler{
		logger:    logger,
		httpStats: httpStats,
		appMetrics: &AppMetrics{
			weatherServiceCalls: make(map[string]map[string]int64),
		},
	}
}

// RecordWeatherServiceCall records one finished fetch and its outcome kind.
func (h *MetricsHandler) RecordWeatherServiceCall(ctx context.Context, service string, outcome string) {
	h.appMetrics.mutex.Lock()
	defer h.appMetrics.mutex.Unlock()

	byOutcome, ok := h.appMetrics.weatherServiceCalls[service]
	if !ok {
		byOutcome = make(map[string]int64)
		h.appMetrics.weatherServiceCalls[service] = byOutcome
	}
	byOutcome[outcome]++
}

// ServeMetrics writes metrics in the Prometheus text format.
func (h *MetricsHandler) ServeMetrics(c *gin.Context) {
	var b strings.Builder

	if h.httpStats != nil {
		snap := h.httpStats.Snapshot()

		b.WriteString("# HELP http_requests_total Total number of HTTP requests\n")
		b.WriteString("# TYPE http_requests_total counter\n")
		for _, key := range sortedKeys(snap.RequestsTotal) {
			fmt.Fprintf(&b, "http_requests_total{route_status=%q} %d\n", key, snap.RequestsTotal[key])
		}

		b.WriteString("\n# HELP http_request_duration_seconds_avg Average duration of HTTP requests\n")
		b.WriteString("# TYPE http_request_duration_seconds_avg gauge\n")
		fmt.Fprintf(&b, "http_request_duration_seconds_avg %.6f\n", snap.AvgDurationSeconds)

		b.WriteString("\n# HELP http_active_requests Number of active HTTP requests\n")
		b.WriteString("# TYPE http_active_requests gauge\n")
		fmt.Fprintf(&b, "http_active_requests %d\n", snap.ActiveRequests)
		b.WriteString("\n")
	}

	h.appMetrics.mutex.RLock()
	b.WriteString("# HELP weather_service_calls_total Weather service calls by outcome\n")
	b.WriteString("# TYPE weather_service_calls_total counter\n")
	for _, service := range sortedKeys(h.appMetrics.weatherServiceCalls) {
		byOutcome := h.appMetrics.weatherServiceCalls[service]
		for _, outcome := range sortedKeys(byOutcome) {
			fmt.Fprintf(&b, "weather_service_calls_total{service=%q,outcome=%q} %d\n", service, outcome, byOutcome[outcome])
		}
	}
	h.appMetrics.mutex.RUnlock()

	c.Data(http.StatusOK, "text/plain; version=0.0.4; charset=utf-8", []byte(b.String()))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
