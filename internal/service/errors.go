package service

import "fmt"

type ErrorKind int

const (
	KindInvalidDate ErrorKind = iota + 1
	KindInvalidCity
	KindNetwork
	KindMalformedResponse
	KindAPI
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidDate:
		return "invalid_date"
	case KindInvalidCity:
		return "invalid_city"
	case KindNetwork:
		return "network_error"
	case KindMalformedResponse:
		return "malformed_response"
	case KindAPI:
		return "api_error"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Kind sentinels for errors.Is.
var (
	ErrInvalidDate       = &FetchError{Kind: KindInvalidDate}
	ErrInvalidCity       = &FetchError{Kind: KindInvalidCity}
	ErrNetwork           = &FetchError{Kind: KindNetwork}
	ErrMalformedResponse = &FetchError{Kind: KindMalformedResponse}
	ErrAPI               = &FetchError{Kind: KindAPI}
)

// FetchError is a classified lookup failure. Code carries the provider's
// error code for KindAPI.
type FetchError struct {
	Kind    ErrorKind
	Message string
	Code    int
	Err     error
}

func (e *FetchError) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Message
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is matches any FetchError of the same kind as a bare sentinel.
func (e *FetchError) Is(target error) bool {
	t, ok := target.(*FetchError)
	if !ok {
		return false
	}
	if t.Message == "" && t.Err == nil && t.Code == 0 {
		return e.Kind == t.Kind
	}
	return e == t
}

func networkError(format string, err error) *FetchError {
	return &FetchError{Kind: KindNetwork, Message: fmt.Sprintf(format, err), Err: err}
}

func malformed(msg string, err error) *FetchError {
	if err != nil {
		msg = msg + ": " + err.Error()
	}
	return &FetchError{Kind: KindMalformedResponse, Message: msg, Err: err}
}
