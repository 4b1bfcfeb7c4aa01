package datasource

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a forecast fetch failed
type ErrorKind string

const (
	KindInvalidRequest ErrorKind = "invalid_request"
	KindNetwork        ErrorKind = "network"
	KindHTTPStatus     ErrorKind = "http_status"
	KindDecode         ErrorKind = "decode"
)

// Sentinels matched by FetchError through errors.Is
var (
	ErrInvalidRequest = errors.New("invalid forecast request")
	ErrNetwork        = errors.New("forecast transport failure")
	ErrHTTPStatus     = errors.New("forecast provider returned an error status")
	ErrDecode         = errors.New("forecast response could not be decoded")
)

// FetchError is returned by a ForecastSource when a fetch fails
type FetchError struct {
	Kind       ErrorKind
	Provider   string
	StatusCode int    // set for KindHTTPStatus
	Message    string // provider supplied message, if any
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.Kind == KindHTTPStatus && e.Message != "":
		return fmt.Sprintf("%s: API returned status %d: %s", e.Provider, e.StatusCode, e.Message)
	case e.Kind == KindHTTPStatus:
		return fmt.Sprintf("%s: API returned status %d", e.Provider, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Kind)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match a FetchError against the sentinel for its kind
func (e *FetchError) Is(target error) bool {
	switch e.Kind {
	case KindInvalidRequest:
		return target == ErrInvalidRequest
	case KindNetwork:
		return target == ErrNetwork
	case KindHTTPStatus:
		return target == ErrHTTPStatus
	case KindDecode:
		return target == ErrDecode
	}
	return false
}

// KindOf returns the kind of a FetchError anywhere in err's chain, or "" if there is none
func KindOf(err error) ErrorKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}
