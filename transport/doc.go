// SPDX-License-Identifier: EPL-2.0

// Package transport defines the HTTP exchange a stream.Source drives and
// provides an implementation on top of net/http.
//
// A Transport handles one POST at a time:
//
//	t := transport.NewHTTP()
//	defer t.Release()
//
//	if err := t.Begin("https://example.com/audio"); err != nil {
//	    return err
//	}
//	t.SetTimeout(5 * time.Second)
//	t.AddHeader("Authorization", "Bearer token")
//	code, err := t.Post(ctx, payload)
//
// # Buffering
//
// HTTP reads the response body from a background goroutine into a bounded
// buffer (DefaultBufferSize unless WithBufferSize is given), so Stream can
// report how many bytes are ready without blocking. When the buffer is full
// the goroutine stops reading until the consumer catches up.
//
// # Timeouts
//
// The timeout covers waiting for the response headers and every body read
// from the network. Time spent waiting for room in a full buffer is not
// counted. When it fires the exchange is cancelled with ErrIdleTimeout.
//
// # Redirects
//
// net/http turns a POST into a GET on 301, 302 and 303. RedirectForce
// instead repeats the POST with its body on every redirect, up to ten hops.
//
// # Clients
//
// NewHTTP owns its *http.Client unless WithClient supplies one. Use
// WithTLSConfig to give the owned client custom certificates.
package transport
