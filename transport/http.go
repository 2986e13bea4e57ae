// SPDX-License-Identifier: EPL-2.0

package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultBufferSize bounds how much of the response body is read ahead.
	DefaultBufferSize = 64 << 10

	maxRedirects = 10
)

// HTTP is a Transport on top of net/http.
//
// The *http.Client is either owned (created by NewHTTP) or borrowed
// (supplied with WithClient). A borrowed client is never modified and its
// connections are never closed by HTTP.
type HTTP struct {
	client    *http.Client
	owned     bool
	tlsConfig *tls.Config
	bufSize   int
	logger    *slog.Logger

	mu       sync.Mutex
	endpoint *url.URL
	timeout  time.Duration
	reuse    bool
	redirect RedirectPolicy
	header   http.Header

	cancel context.CancelCauseFunc
	dog    *watchdog
	body   *pump
	size   int64
	ctype  string
}

// Option configures an HTTP transport.
type Option func(*HTTP)

// WithClient makes the transport borrow c instead of creating its own client.
func WithClient(c *http.Client) Option {
	return func(t *HTTP) {
		t.client = c
	}
}

// WithTLSConfig sets the TLS configuration of the owned client. It has no
// effect together with WithClient.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(t *HTTP) {
		t.tlsConfig = cfg
	}
}

// WithBufferSize sets how many body bytes may be buffered ahead of the reader.
func WithBufferSize(n int) Option {
	return func(t *HTTP) {
		if n > 0 {
			t.bufSize = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(t *HTTP) {
		if l != nil {
			t.logger = l
		}
	}
}

// NewHTTP creates a transport. Without WithClient it owns a client tuned
// for streaming: no response compression and keep-alive enabled.
func NewHTTP(opts ...Option) *HTTP {
	t := &HTTP{
		bufSize:  DefaultBufferSize,
		logger:   slog.Default(),
		reuse:    true,
		redirect: RedirectStrict,
		header:   make(http.Header),
		size:     -1,
	}

	for _, opt := range opts {
		opt(t)
	}

	if t.client == nil {
		t.client = &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				TLSClientConfig:       t.tlsConfig,
				DisableCompression:    true,
				MaxIdleConnsPerHost:   2,
				IdleConnTimeout:       90 * time.Second,
				ExpectContinueTimeout: time.Second,
			},
		}
		t.owned = true
	}

	return t
}

// Owned reports whether the transport created its own client.
func (t *HTTP) Owned() bool { return t.owned }

func (t *HTTP) Begin(endpoint string) error {
	t.End()

	t.mu.Lock()
	defer t.mu.Unlock()

	t.endpoint = nil
	t.header = make(http.Header)

	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEndpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidEndpoint, endpoint)
	}
	t.endpoint = u

	return nil
}

func (t *HTTP) SetTimeout(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.timeout = d
	if t.dog != nil {
		t.dog.set(d)
	}
}

func (t *HTTP) SetReuse(reuse bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.reuse = reuse
}

func (t *HTTP) SetFollowRedirects(p RedirectPolicy) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.redirect = p
}

func (t *HTTP) AddHeader(key, value string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.header.Add(key, value)
}

func (t *HTTP) Post(ctx context.Context, body []byte) (int, error) {
	t.mu.Lock()
	if t.endpoint == nil {
		t.mu.Unlock()
		return 0, ErrNotBegun
	}
	target := t.endpoint
	timeout := t.timeout
	t.mu.Unlock()

	ctx, cancel := context.WithCancelCause(ctx)
	dog := newWatchdog(timeout, func() { cancel(ErrIdleTimeout) })

	dog.arm()
	resp, err := t.do(ctx, target, body)
	dog.disarm()
	if err != nil {
		dog.stop()
		cancel(nil)
		if cause := context.Cause(ctx); errors.Is(cause, ErrIdleTimeout) {
			err = cause
		}
		return 0, err
	}

	t.mu.Lock()
	t.size = resp.ContentLength
	t.ctype = resp.Header.Get("Content-Type")
	t.mu.Unlock()

	if resp.StatusCode != http.StatusOK {
		dog.stop()
		resp.Body.Close()
		cancel(nil)
		return resp.StatusCode, nil
	}

	p := newPump(resp.Body, t.bufSize, dog, func() error { return context.Cause(ctx) })

	t.mu.Lock()
	t.cancel = cancel
	t.dog = dog
	t.body = p
	t.mu.Unlock()

	go p.run()

	return resp.StatusCode, nil
}

func (t *HTTP) do(ctx context.Context, target *url.URL, body []byte) (*http.Response, error) {
	t.mu.Lock()
	policy := t.redirect
	header := t.header.Clone()
	reuse := t.reuse
	t.mu.Unlock()

	// Shallow copy so a borrowed client keeps its own redirect settings.
	client := *t.client
	switch policy {
	case RedirectNone, RedirectForce:
		client.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	case RedirectStrict:
		client.CheckRedirect = nil
	}

	for hop := 0; ; hop++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header = header.Clone()
		if host := header.Get("Host"); host != "" {
			req.Host = host
		}
		req.Close = !reuse

		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("http request: %w", err)
		}

		if policy != RedirectForce || !isRedirect(resp.StatusCode) {
			return resp, nil
		}

		loc, err := resp.Location()
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("redirect %d: %w", resp.StatusCode, err)
		}
		if hop+1 >= maxRedirects {
			return nil, ErrTooManyRedirects
		}

		t.logger.Debug("following redirect", "status", resp.StatusCode, "location", loc.String())
		if !strings.EqualFold(loc.Host, target.Host) {
			header.Del("Authorization")
		}
		target = loc
	}
}

func isRedirect(code int) bool {
	switch code {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}

	return false
}

func (t *HTTP) Size() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.size
}

func (t *HTTP) ContentType() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.ctype
}

func (t *HTTP) Stream() ByteStream {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.body == nil {
		return emptyStream{}
	}

	return t.body
}

func (t *HTTP) End() {
	t.mu.Lock()
	p, cancel := t.body, t.cancel
	t.body, t.cancel, t.dog = nil, nil, nil
	t.size, t.ctype = -1, ""
	t.mu.Unlock()

	if p != nil {
		if err := p.failure(); err != nil {
			t.logger.Debug("response body ended early", "err", err)
		}
		p.close()
	}
	if cancel != nil {
		cancel(nil)
	}
}

func (t *HTTP) Connected() bool {
	t.mu.Lock()
	p := t.body
	t.mu.Unlock()

	return p != nil && p.connected()
}

// Release ends the exchange and, for an owned client, drops its idle
// connections.
func (t *HTTP) Release() {
	t.End()
	if t.owned {
		t.client.CloseIdleConnections()
	}
}

var (
	_ Transport  = (*HTTP)(nil)
	_ Releaser   = (*HTTP)(nil)
	_ ByteStream = (*pump)(nil)
	_ Bounded    = (*pump)(nil)
)
