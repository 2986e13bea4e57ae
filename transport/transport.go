// SPDX-License-Identifier: EPL-2.0

package transport

import (
	"context"
	"time"
)

// RedirectPolicy controls how a Transport reacts to 3xx responses.
type RedirectPolicy int

const (
	// RedirectNone returns redirect responses to the caller untouched.
	RedirectNone RedirectPolicy = iota
	// RedirectStrict follows redirects the way net/http does: 301, 302 and
	// 303 turn the POST into a GET, 307 and 308 keep the method and body.
	RedirectStrict
	// RedirectForce re-issues the POST, body included, for every redirect.
	RedirectForce
)

func (p RedirectPolicy) String() string {
	switch p {
	case RedirectNone:
		return "none"
	case RedirectStrict:
		return "strict"
	case RedirectForce:
		return "force"
	default:
		return "unknown"
	}
}

// ByteStream is the buffered side of a live response body.
type ByteStream interface {
	// Available reports how many bytes can be read without waiting.
	Available() int
	// Read copies up to len(p) already buffered bytes into p. It never waits
	// for the network.
	Read(p []byte) (int, error)
}

// Bounded is implemented by byte streams that buffer a limited number of
// bytes. Waiting for more than Capacity bytes, or for anything once Done
// reports true, can never succeed.
type Bounded interface {
	// Capacity is the most bytes Available can ever report.
	Capacity() int
	// Done is true once the body has been fully received or torn down.
	Done() bool
}

// Transport performs a single HTTP POST exchange at a time.
type Transport interface {
	// Begin prepares a new exchange against endpoint, ending any previous one
	// and dropping previously added headers.
	Begin(endpoint string) error
	// SetTimeout bounds how long the transport waits for the network, both
	// for the response headers and between body reads. Zero disables it.
	SetTimeout(d time.Duration)
	// SetReuse allows the underlying connection to be kept alive.
	SetReuse(reuse bool)
	SetFollowRedirects(p RedirectPolicy)
	AddHeader(key, value string)
	// Post sends body and returns the HTTP status code of the final response.
	Post(ctx context.Context, body []byte) (int, error)
	// Size is the advertised content length, or -1 when unknown.
	Size() int64
	ContentType() string
	// Stream never returns nil; before a successful Post it is empty.
	Stream() ByteStream
	// End tears the exchange down. It is safe to call repeatedly.
	End()
	// Connected is true while the response is still arriving or buffered
	// bytes remain to be read.
	Connected() bool
}

// Releaser is implemented by transports that hold resources beyond a single
// exchange, such as idle keep-alive connections.
type Releaser interface {
	Release()
}

type emptyStream struct{}

func (emptyStream) Available() int           { return 0 }
func (emptyStream) Read([]byte) (int, error) { return 0, nil }
