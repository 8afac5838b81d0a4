package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork marks a fetch that never got an HTTP response.
	ErrNetwork = errors.New("quote source: network failure")
	// ErrHTTPStatus marks a fetch rejected with a non-retryable status.
	ErrHTTPStatus = errors.New("quote source: http status")
	// ErrRateLimited marks a fetch that ended on HTTP 429.
	ErrRateLimited = errors.New("quote source: rate limited")

	// ErrMissingField is used while decoding a record; the field degrades to absent.
	ErrMissingField = errors.New("missing field")

	// ErrNotifyTransport marks a notification that could not be delivered.
	ErrNotifyTransport = errors.New("notify: transport failure")

	// ErrSinkUnavailable marks an execution sink that could not be reached.
	ErrSinkUnavailable = errors.New("execution: sink unavailable")
	// ErrSinkRejected marks an order refused by the execution sink.
	ErrSinkRejected = errors.New("execution: sink rejected order")
)

// FetchKind classifies a FetchError.
type FetchKind int

const (
	FetchNetwork FetchKind = iota
	FetchHTTP
	FetchRateLimited
)

func (k FetchKind) String() string {
	switch k {
	case FetchNetwork:
		return "network"
	case FetchHTTP:
		return "http"
	case FetchRateLimited:
		return "rate_limited"
	default:
		return "unknown"
	}
}

// FetchError is returned by a quote source when a tick's fetch fails.
type FetchError struct {
	Kind   FetchKind
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case FetchHTTP:
		return fmt.Sprintf("fetch quotes: http status %d", e.Status)
	case FetchRateLimited:
		return "fetch quotes: rate limited (429)"
	default:
		if e.Err != nil {
			return fmt.Sprintf("fetch quotes: network: %v", e.Err)
		}
		return "fetch quotes: network"
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is lets errors.Is match the FetchError against the kind sentinels.
func (e *FetchError) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Kind == FetchNetwork
	case ErrHTTPStatus:
		return e.Kind == FetchHTTP
	case ErrRateLimited:
		return e.Kind == FetchRateLimited
	}
	return false
}

// NewNetworkError wraps a transport failure.
func NewNetworkError(err error) *FetchError {
	return &FetchError{Kind: FetchNetwork, Err: err}
}

// NewHTTPError reports a non-retryable status.
func NewHTTPError(status int) *FetchError {
	return &FetchError{Kind: FetchHTTP, Status: status}
}

// NewRateLimitedError reports a fetch that ended on 429.
func NewRateLimitedError() *FetchError {
	return &FetchError{Kind: FetchRateLimited, Status: 429}
}

// NotifyError is returned by a notification sink when delivery fails.
type NotifyError struct {
	Err error
}

func (e *NotifyError) Error() string { return fmt.Sprintf("notify: %v", e.Err) }

func (e *NotifyError) Unwrap() error { return e.Err }

func (e *NotifyError) Is(target error) bool { return target == ErrNotifyTransport }

// ExecutionKind classifies an ExecutionError.
type ExecutionKind int

const (
	SinkUnavailable ExecutionKind = iota
	SinkRejected
)

// ExecutionError is returned by a trade-execution sink.
type ExecutionError struct {
	Kind   ExecutionKind
	Symbol string
	Err    error
}

func (e *ExecutionError) Error() string {
	kind := "sink unavailable"
	if e.Kind == SinkRejected {
		kind = "sink rejected"
	}
	if e.Err != nil {
		return fmt.Sprintf("execute %s: %s: %v", e.Symbol, kind, e.Err)
	}
	return fmt.Sprintf("execute %s: %s", e.Symbol, kind)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

func (e *ExecutionError) Is(target error) bool {
	switch target {
	case ErrSinkUnavailable:
		return e.Kind == SinkUnavailable
	case ErrSinkRejected:
		return e.Kind == SinkRejected
	}
	return false
}
