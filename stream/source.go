// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ik5/audpost/transport"
)

const (
	// NoStatus is the HTTP code reported before any response was received.
	NoStatus = -1

	// MaxEndpointLen is the longest endpoint kept by a Source.
	MaxEndpointLen = 255

	// DefaultTimeout is the timeout of a Source that was never opened.
	DefaultTimeout = 5 * time.Second

	// MinAdjustedTimeout is the floor of the size based read timeout.
	MinAdjustedTimeout = time.Second

	// WaitWindow bounds how long a blocking read waits for data.
	WaitWindow = 500 * time.Millisecond

	// NonBlockAttempts is how many times a non-blocking read polls for data,
	// sleeping PollInterval between attempts.
	NonBlockAttempts = 500
	PollInterval     = time.Millisecond

	// MaxStallRetries is how many reconnects a single blocking read may do.
	MaxStallRetries = 1
)

// Source is a forward only byte source over the body of an HTTP POST
// response. It is meant to be polled by a single consumer, typically an
// audio decoder, and is not safe for concurrent use.
type Source struct {
	endpoint  string
	truncated bool
	body      []byte
	timeout   time.Duration
	headers   []string

	transport transport.Transport
	owned     bool

	size     int64
	pos      int64
	lastCode int

	// ctx is the context given to Open, reused for reconnects.
	ctx context.Context

	redirect  transport.RedirectPolicy
	reconnect bool
	sched     Scheduler
	logger    *slog.Logger
	notify    StatusFunc
}

// Option configures a Source.
type Option func(*Source)

// WithTransport makes the Source borrow t. The caller keeps ownership and
// must release t once the Source is no longer used.
func WithTransport(t transport.Transport) Option {
	return func(s *Source) {
		s.transport = t
		s.owned = false
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Source) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithScheduler replaces the clock and yield point of the read wait loops.
func WithScheduler(sched Scheduler) Option {
	return func(s *Source) {
		if sched != nil {
			s.sched = sched
		}
	}
}

func WithStatusFunc(fn StatusFunc) Option {
	return func(s *Source) {
		s.notify = fn
	}
}

// WithReconnect controls whether a stalled blocking read re-issues the
// request and resumes at the current position. It is enabled by default.
func WithReconnect(enabled bool) Option {
	return func(s *Source) {
		s.reconnect = enabled
	}
}

// WithRedirectPolicy overrides the redirect handling requested from the
// transport. The default, transport.RedirectForce, keeps the POST and its
// body across every redirect.
func WithRedirectPolicy(p transport.RedirectPolicy) Option {
	return func(s *Source) {
		s.redirect = p
	}
}

// New returns a closed Source. Without WithTransport it creates and owns a
// transport.HTTP sharing the Source logger.
func New(opts ...Option) *Source {
	s := &Source{
		timeout:   DefaultTimeout,
		lastCode:  NoStatus,
		redirect:  transport.RedirectForce,
		reconnect: true,
		sched:     systemScheduler{},
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.transport == nil {
		s.transport = transport.NewHTTP(transport.WithLogger(s.logger))
		s.owned = true
	}

	return s
}

// Dial creates a Source and opens it. The Source is returned even when
// Open fails so that LastHTTPCode can be inspected.
func Dial(ctx context.Context, endpoint string, body []byte, timeout time.Duration, headers []string, opts ...Option) (*Source, error) {
	s := New(opts...)

	return s, s.Open(ctx, endpoint, body, timeout, headers)
}

// Open POSTs body to endpoint and prepares the response for reading.
//
// body is not copied: it must stay unchanged while the Source is in use
// since a reconnect sends it again. ctx bounds the exchange and any
// reconnect done by later reads. Headers are "key: value" strings; entries
// without a colon are skipped. Any error leaves the Source closed.
func (s *Source) Open(ctx context.Context, endpoint string, body []byte, timeout time.Duration, headers []string) error {
	if endpoint == "" {
		return ErrEmptyEndpoint
	}
	if timeout < 0 {
		return ErrNegativeTimeout
	}

	s.pos = 0
	s.size = 0
	s.timeout = timeout
	s.headers = headers
	s.body = body
	s.ctx = ctx

	code, err := s.connect(ctx, endpoint)
	s.lastCode = code
	if err != nil {
		s.transport.End()
		s.logger.Error("can't open HTTP request", "endpoint", endpoint, "code", code, "err", err)
		s.emit(StatusHTTPFail, err.Error())

		return err
	}

	size := max(s.transport.Size(), 0)
	if size > 0 {
		s.timeout = AdjustTimeout(timeout, size)
		s.transport.SetTimeout(s.timeout)
		s.logger.Debug("adjusted timeout", "timeout", s.timeout, "size", size)
	}

	s.size = size
	s.endpoint, s.truncated = truncateEndpoint(endpoint)

	return nil
}

// connect runs one complete exchange setup and returns the status code.
func (s *Source) connect(ctx context.Context, endpoint string) (int, error) {
	if err := s.transport.Begin(endpoint); err != nil {
		return NoStatus, fmt.Errorf("begin %s: %w", endpoint, err)
	}

	s.transport.SetTimeout(s.timeout)
	s.transport.SetReuse(true)
	s.applyHeaders()
	s.transport.SetFollowRedirects(s.redirect)

	code, err := s.transport.Post(ctx, s.body)
	if err != nil {
		return NoStatus, fmt.Errorf("post %s: %w", endpoint, err)
	}
	if code != http.StatusOK {
		return code, &RequestError{Code: code}
	}

	return code, nil
}

func (s *Source) applyHeaders() {
	for _, h := range s.headers {
		key, value, ok := SplitHeader(h)
		if !ok {
			s.logger.Warn("skipping malformed header", "header", h)
			continue
		}
		s.transport.AddHeader(key, value)
	}
}

// SplitHeader splits a "key: value" entry at its first colon and trims
// both parts. ok is false when there is no colon or the key is empty.
func SplitHeader(h string) (key, value string, ok bool) {
	key, value, ok = strings.Cut(h, ":")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", false
	}

	return key, strings.TrimSpace(value), true
}

// AdjustTimeout derives the read timeout from the content length: one
// millisecond per thousand bytes, at least MinAdjustedTimeout and never more
// than a positive requested timeout.
func AdjustTimeout(timeout time.Duration, size int64) time.Duration {
	if size <= 0 {
		return timeout
	}

	adjusted := max(time.Duration(size/1000)*time.Millisecond, MinAdjustedTimeout)
	if timeout > 0 && adjusted > timeout {
		return timeout
	}

	return adjusted
}

func truncateEndpoint(endpoint string) (string, bool) {
	if len(endpoint) <= MaxEndpointLen {
		return endpoint, false
	}

	n := MaxEndpointLen
	for n > 0 && !utf8.RuneStart(endpoint[n]) {
		n--
	}

	return endpoint[:n], true
}

// Seek always fails: the response body can only be read forward.
func (s *Source) Seek(offset int64, whence int) (int64, error) {
	s.logger.Error("seek not implemented", "offset", offset, "whence", whence)

	return s.pos, ErrSeekUnsupported
}

// Close ends the exchange and resets position and size. It releases the
// transport when the Source owns it and always returns nil.
func (s *Source) Close() error {
	s.transport.End()
	if r, ok := s.transport.(transport.Releaser); ok && s.owned {
		r.Release()
	}

	s.pos = 0
	s.size = 0

	return nil
}

// IsOpen asks the transport whether the response is still readable.
func (s *Source) IsOpen() bool { return s.transport.Connected() }

// Size is the advertised content length, 0 when unknown.
func (s *Source) Size() int64 { return s.size }

// Pos is the number of bytes delivered so far.
func (s *Source) Pos() int64 { return s.pos }

func (s *Source) LastHTTPCode() int { return s.lastCode }

// Endpoint returns the endpoint of the last successful Open, cut to
// MaxEndpointLen bytes.
func (s *Source) Endpoint() string { return s.endpoint }

func (s *Source) Timeout() time.Duration { return s.timeout }

// ContentType is the media type announced by the current response.
func (s *Source) ContentType() string { return s.transport.ContentType() }
