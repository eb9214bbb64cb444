package server_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/vzahanych/weather-history-app/internal/config"
	"github.com/vzahanych/weather-history-app/internal/dispatcher"
	"github.com/vzahanych/weather-history-app/internal/server"
	"github.com/vzahanych/weather-history-app/internal/server/handlers"
	"github.com/vzahanych/weather-history-app/internal/service"
)

// upstream fakes weatherapi.com, answering by city.
func upstream(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Query().Get("q") {
		case "London":
			_, _ = io.WriteString(w, `{"forecast":{"forecastday":[{"day":{"maxtemp_c":25.0,"mintemp_c":14.2}}]}}`)
		case "Broken":
			_, _ = io.WriteString(w, `{"forecast":{}}`)
		default:
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":{"code":1006,"message":"No matching location found."}}`)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestServer(t *testing.T) (http.Handler, *atomic.Int32) {
	t.Helper()
	log := zaptest.NewLogger(t)

	hits := &atomic.Int32{}
	up := upstream(t, hits)

	cfg := config.NewDefaultConfig()
	cfg.Weather.BaseURL = up.URL
	cfg.Weather.APIKey = "test-key"

	svc := service.NewWeatherAPIServiceWithConfig(cfg.Weather, nil, log, nil)
	d := dispatcher.New(svc, dispatcher.Options{Workers: 2, QueueSize: 4}, log, nil)
	require.NoError(t, d.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = d.Stop(ctx)
	})

	srv := server.NewServer(cfg.Server, d, svc, log, nil)
	return srv.Handler(), hits
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func historyURL(city, date string) string {
	v := url.Values{}
	v.Set("city", city)
	v.Set("date", date)
	return "/history?" + v.Encode()
}

func TestHistory_Success(t *testing.T) {
	h, hits := newTestServer(t)

	rec := get(t, h, historyURL("London", "2023-06-01"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp handlers.HistoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, handlers.HistoryResponse{
		City:     "London",
		Date:     "2023-06-01",
		MaxTempC: "25.0",
		MinTempC: "14.2",
	}, resp)
	assert.Equal(t, int32(1), hits.Load())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestHistory_NoCaching(t *testing.T) {
	h, hits := newTestServer(t)

	get(t, h, historyURL("London", "2023-06-01"))
	get(t, h, historyURL("London", "2023-06-01"))

	assert.Equal(t, int32(2), hits.Load())
}

func TestHistory_Failures(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantCode   string
		wantHits   int32
	}{
		{"invalid date", historyURL("London", "2023-02-29"), http.StatusBadRequest, "INVALID_DATE", 0},
		{"missing date", "/history?city=London", http.StatusBadRequest, "INVALID_DATE", 0},
		{"missing city", "/history?date=2023-06-01", http.StatusBadRequest, "INVALID_CITY", 0},
		{"blank city", historyURL("   ", "2023-06-01"), http.StatusBadRequest, "INVALID_CITY", 0},
		{"unknown city", historyURL("Atlantis", "2023-06-01"), http.StatusUnprocessableEntity, "API_ERROR", 1},
		{"malformed upstream", historyURL("Broken", "2023-06-01"), http.StatusBadGateway, "MALFORMED_RESPONSE", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, hits := newTestServer(t)

			rec := get(t, h, tt.target)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			var resp handlers.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.Equal(t, tt.wantHits, hits.Load())
		})
	}
}

func TestHistory_APIErrorCarriesProviderMessage(t *testing.T) {
	h, _ := newTestServer(t)

	rec := get(t, h, historyURL("Atlantis", "2023-06-01"))

	var resp handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "No matching location found.", resp.Details)
}

func TestValidate(t *testing.T) {
	h, _ := newTestServer(t)

	rec := get(t, h, "/validate?date=2024-02-29")
	require.Equal(t, http.StatusOK, rec.Code)
	var ok handlers.ValidateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ok))
	assert.True(t, ok.Valid)

	rec = get(t, h, "/validate?date=2023-02-29")
	var bad handlers.ValidateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bad))
	assert.False(t, bad.Valid)
	assert.NotEmpty(t, bad.Reason)
}

func TestHealthEndpoints(t *testing.T) {
	h, _ := newTestServer(t)

	for _, path := range []string{"/health", "/health/live", "/health/ready"} {
		rec := get(t, h, path)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestMetrics_CountsOutcomes(t *testing.T) {
	h, _ := newTestServer(t)

	get(t, h, historyURL("London", "2023-06-01"))
	get(t, h, historyURL("Atlantis", "2023-06-01"))

	rec := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, `weather_service_calls_total{service="weather-api",outcome="success"} 1`)
	assert.Contains(t, body, `weather_service_calls_total{service="weather-api",outcome="api_error"} 1`)
	assert.Contains(t, body, `http_requests_total{route_status="GET /history_200"} 1`)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))
}

func TestRequestID_Propagated(t *testing.T) {
	h, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}
