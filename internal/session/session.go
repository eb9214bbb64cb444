// Package session keeps the observable state of the lookup screen: the
// entered city and date, whether the date is valid, the displayed
// temperatures and the phase of the latest fetch.
package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/vzahanych/weather-history-app/internal/dates"
	"github.com/vzahanych/weather-history-app/internal/service"
)

type Phase int

const (
	Idle Phase = iota
	Requesting
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Requesting:
		return "requesting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Submitter runs a query in the background. *dispatcher.Dispatcher
// satisfies it.
type Submitter interface {
	Submit(ctx context.Context, q service.Query) (<-chan service.Outcome, error)
}

// State is a snapshot of what the screen shows.
type State struct {
	City      string
	Date      string
	DateValid bool
	MaxTemp   string
	MinTemp   string
	Phase     Phase
	LastError *service.FetchError
}

type Options struct {
	// SupersedeInFlight cancels the previous fetch when a new one starts and
	// drops outcomes of superseded fetches.
	SupersedeInFlight bool
}

type Session struct {
	mu        sync.Mutex
	state     State
	submitter Submitter
	opts      Options
	logger    *zap.Logger
	seq       uint64
	cancel    context.CancelFunc
}

func New(submitter Submitter, opts Options, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		submitter: submitter,
		opts:      opts,
		logger:    logger,
		// An empty field is not flagged until the user types into it.
		state: State{DateValid: true},
	}
}

func (s *Session) SetCity(city string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.City = city
}

// SetDate stores the date and re-evaluates its validity.
func (s *Session) SetDate(date string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Date = date
	s.state.DateValid = dates.IsValid(date)
	return s.state.DateValid
}

func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Submit starts a fetch for the current city and date. The returned channel
// yields the outcome once it has been applied to the state. An invalid date
// or city resolves immediately without touching the displayed values.
func (s *Session) Submit(ctx context.Context) <-chan service.Outcome {
	out := make(chan service.Outcome, 1)

	s.mu.Lock()
	city, date, dateValid := s.state.City, s.state.Date, s.state.DateValid
	s.mu.Unlock()

	if !dateValid {
		s.resolveNow(out, &service.FetchError{
			Kind:    service.KindInvalidDate,
			Message: "date must be a valid YYYY-MM-DD calendar date",
		})
		return out
	}

	q, ferr := service.NewQuery(city, date)
	if ferr != nil {
		s.resolveNow(out, ferr)
		return out
	}

	s.mu.Lock()
	s.seq++
	seq := s.seq
	if s.opts.SupersedeInFlight {
		if s.cancel != nil {
			s.cancel()
		}
		ctx, s.cancel = context.WithCancel(ctx)
	}
	s.state.Phase = Requesting
	s.mu.Unlock()

	ch, err := s.submitter.Submit(ctx, q)
	if err != nil {
		outcome := service.Failed(&service.FetchError{Kind: service.KindNetwork, Message: err.Error(), Err: err})
		s.apply(seq, outcome)
		out <- outcome
		close(out)
		return out
	}

	go func() {
		defer close(out)
		outcome, ok := <-ch
		if !ok {
			outcome = service.Failed(&service.FetchError{Kind: service.KindNetwork, Message: "result channel closed"})
		}
		s.apply(seq, outcome)
		out <- outcome
	}()

	return out
}

func (s *Session) resolveNow(out chan service.Outcome, err *service.FetchError) {
	s.mu.Lock()
	s.state.LastError = err
	s.mu.Unlock()

	out <- service.Failed(err)
	close(out)
}

// apply updates the state with an outcome. On failure the displayed
// temperatures keep their previous values.
func (s *Session) apply(seq uint64, outcome service.Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.opts.SupersedeInFlight && seq != s.seq {
		s.logger.Debug("Dropping superseded outcome", zap.Uint64("seq", seq), zap.Uint64("current", s.seq))
		return
	}

	outcome.Match(func(f service.Forecast) {
		s.state.MaxTemp = f.MaxTemp()
		s.state.MinTemp = f.MinTemp()
		s.state.Phase = Succeeded
		s.state.LastError = nil
	}, func(err *service.FetchError) {
		s.state.Phase = Failed
		s.state.LastError = err
		s.logger.Error("Error fetching weather data", zap.Error(err))
	})

	if seq == s.seq && s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
