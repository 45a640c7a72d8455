package flickr

import (
	"errors"
	"fmt"
)

// ErrEmptyResponse is returned when the server answers 2xx with no body.
var ErrEmptyResponse = errors.New("flickr: empty response body")

// ErrTooLarge is returned when an image body exceeds the configured cap.
var ErrTooLarge = errors.New("flickr: response body too large")

// TransportError means no usable response arrived: DNS, connect, TLS,
// timeout, cancelled context, or a body that could not be read.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("flickr: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError is a non-2xx HTTP response.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("flickr: HTTP error: %d %s", e.Code, e.Status)
}

// DecodeError means the payload was not the JSON shape we expect.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("flickr: decode response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// APIError is a well-formed response whose stat is not "ok"
// (invalid key, unknown method, service unavailable).
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("flickr: API error %d: %s", e.Code, e.Message)
}
