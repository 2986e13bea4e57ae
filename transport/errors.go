// SPDX-License-Identifier: EPL-2.0

package transport

import "errors"

var (
	// ErrNotBegun is returned by Post when Begin was not called first.
	ErrNotBegun = errors.New("transport: exchange not begun")

	// ErrInvalidEndpoint indicates an endpoint that is not an http(s) URL.
	ErrInvalidEndpoint = errors.New("transport: invalid endpoint")

	// ErrTooManyRedirects is returned when a forced redirect chain is too long.
	ErrTooManyRedirects = errors.New("transport: too many redirects")

	// ErrIdleTimeout marks a body that stalled for longer than the timeout.
	ErrIdleTimeout = errors.New("transport: idle timeout")
)
