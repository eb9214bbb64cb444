package service

import (
	"fmt"
	"net/http"

	"golang.org/x/time/rate"
)

// RateLimitedDoer paces requests through an underlying HTTPDoer.
type RateLimitedDoer struct {
	doer    HTTPDoer
	limiter *rate.Limiter
}

// NewRateLimitedDoer allows rps requests per second with the given burst.
// rps can be fractional for less than one request per second.
func NewRateLimitedDoer(doer HTTPDoer, rps float64, burst int) *RateLimitedDoer {
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedDoer{
		doer:    doer,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Do waits for limiter permission or request context cancellation, then
// forwards the request.
func (r *RateLimitedDoer) Do(req *http.Request) (*http.Response, error) {
	if err := r.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return r.doer.Do(req)
}

var _ HTTPDoer = (*RateLimitedDoer)(nil)
