package catalog

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrEmptyQuery is returned, without any network call, for a blank query.
var ErrEmptyQuery = errors.New("catalog: empty search query")

// HTTPError reports a non-2xx response from the search API.
type HTTPError struct {
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("catalog: server returned HTTP %d %s", e.Status, http.StatusText(e.Status))
}

// ParseError reports an unreadable body or a malformed response envelope.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("catalog: malformed response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// NetworkError reports a transport failure (DNS, timeout, offline, cancelled).
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("catalog: network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ErrorKind classifies search failures for logging and display.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindEmptyQuery
	KindNetwork
	KindHTTP
	KindParse
)

func (k ErrorKind) String() string {
	switch k {
	case KindEmptyQuery:
		return "empty_query"
	case KindNetwork:
		return "network"
	case KindHTTP:
		return "http"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// Kind reports which part of the taxonomy err belongs to.
func Kind(err error) ErrorKind {
	var (
		httpErr  *HTTPError
		parseErr *ParseError
		netErr   *NetworkError
	)
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrEmptyQuery):
		return KindEmptyQuery
	case errors.As(err, &httpErr):
		return KindHTTP
	case errors.As(err, &parseErr):
		return KindParse
	case errors.As(err, &netErr):
		return KindNetwork
	default:
		return KindUnknown
	}
}
