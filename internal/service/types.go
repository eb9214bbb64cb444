package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vzahanych/weather-history-app/internal/dates"
)

// Query is one historical lookup: a city and a YYYY-MM-DD date.
type Query struct {
	City string
	Date string
}

// NewQuery builds a Query, rejecting an empty city or an invalid date before
// any request is made.
func NewQuery(city, date string) (Query, *FetchError) {
	city = strings.TrimSpace(city)
	if city == "" {
		return Query{}, &FetchError{Kind: KindInvalidCity, Message: "city must not be empty"}
	}
	if err := dates.Validate(date); err != nil {
		return Query{}, &FetchError{Kind: KindInvalidDate, Message: err.Error(), Err: err}
	}
	return Query{City: city, Date: date}, nil
}

func (q Query) String() string {
	return fmt.Sprintf("%s@%s", q.City, q.Date)
}

// Forecast holds the day summary taken from the first forecast day.
type Forecast struct {
	MaxTempC float64
	MinTempC float64
}

// MaxTemp renders the maximum temperature the way it is displayed, e.g. "25.0".
func (f Forecast) MaxTemp() string { return FormatTemp(f.MaxTempC) }

// MinTemp renders the minimum temperature the way it is displayed, e.g. "14.2".
func (f Forecast) MinTemp() string { return FormatTemp(f.MinTempC) }

// FormatTemp prints v with the shortest representation that keeps a decimal
// point, so whole degrees read "25.0" rather than "25".
func FormatTemp(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}

// Outcome is the result of one fetch: either a Forecast or a FetchError,
// never both. The zero Outcome is not a valid result.
type Outcome struct {
	forecast *Forecast
	err      *FetchError
}

func Succeeded(f Forecast) Outcome {
	return Outcome{forecast: &f}
}

func Failed(err *FetchError) Outcome {
	if err == nil {
		panic("service: Failed called with nil error")
	}
	return Outcome{err: err}
}

func (o Outcome) IsSuccess() bool { return o.forecast != nil }

// Forecast returns the forecast and true for a successful outcome.
func (o Outcome) Forecast() (Forecast, bool) {
	if o.forecast == nil {
		return Forecast{}, false
	}
	return *o.forecast, true
}

// Err returns the failure, or nil for a successful outcome.
func (o Outcome) Err() *FetchError { return o.err }

// Result adapts the outcome to the usual (value, error) pair.
func (o Outcome) Result() (Forecast, error) {
	if o.err != nil {
		return Forecast{}, o.err
	}
	f, _ := o.Forecast()
	return f, nil
}

// Match calls exactly one of the handlers. It panics on the zero Outcome.
func (o Outcome) Match(onSuccess func(Forecast), onFailure func(*FetchError)) {
	switch {
	case o.forecast != nil:
		onSuccess(*o.forecast)
	case o.err != nil:
		onFailure(o.err)
	default:
		panic("service: Match on empty Outcome")
	}
}

func (o Outcome) String() string {
	switch {
	case o.forecast != nil:
		return fmt.Sprintf("Success(max=%s, min=%s)", o.forecast.MaxTemp(), o.forecast.MinTemp())
	case o.err != nil:
		return fmt.Sprintf("Failure(%s)", o.err.Error())
	default:
		return "Outcome(empty)"
	}
}
