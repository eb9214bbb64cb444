package service

import (
	"context"
	"net/http"
)

// HistoryService fetches the historical day summary for a query.
type HistoryService interface {
	Fetch(ctx context.Context, q Query) Outcome
	Name() string
}

// HTTPDoer is the transport used for outbound requests. *http.Client
// satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// MetricsRecorder receives one call per finished fetch.
type MetricsRecorder interface {
	RecordWeatherServiceCall(ctx context.Context, service string, outcome string)
}
