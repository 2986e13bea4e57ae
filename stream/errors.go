// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNilBuffer is returned by the read calls when given a nil destination.
	ErrNilBuffer = errors.New("stream: nil read buffer")

	// ErrEmptyEndpoint is returned by Open when no endpoint is given.
	ErrEmptyEndpoint = errors.New("stream: empty endpoint")

	// ErrNegativeTimeout is returned by Open for a timeout below zero.
	ErrNegativeTimeout = errors.New("stream: negative timeout")

	// ErrRequestFailed is wrapped by every RequestError.
	ErrRequestFailed = errors.New("stream: http request failed")

	// ErrSeekUnsupported is always returned by Seek.
	ErrSeekUnsupported = errors.New("stream: seek not supported")

	// ErrReconnect reports a stalled stream that could not be resumed.
	ErrReconnect = errors.New("stream: reconnect failed")
)

// RequestError is returned by Open when the POST did not answer 200 OK.
type RequestError struct {
	Code int
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: %d %s", ErrRequestFailed, e.Code, http.StatusText(e.Code))
}

func (e *RequestError) Unwrap() error { return ErrRequestFailed }
