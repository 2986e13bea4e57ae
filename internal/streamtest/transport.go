// SPDX-License-Identifier: EPL-2.0

// Package streamtest provides a scriptable transport and a fake clock for
// exercising stream.Source without a network.
package streamtest

import (
	"context"
	"io"
	"math"
	"sync"
	"time"

	"github.com/ik5/audpost/transport"
)

// Stream is a ByteStream over a fixed payload. Bytes become readable only
// once they are released with Feed.
type Stream struct {
	mu       sync.Mutex
	payload  []byte
	released int
	off      int
	reads    int
	limit    int
	finished bool
}

// NewStream returns a stream over payload with the first preload bytes
// already available.
func NewStream(payload []byte, preload int) *Stream {
	return &Stream{payload: payload, released: min(max(preload, 0), len(payload))}
}

// Feed makes the next n payload bytes available.
func (s *Stream) Feed(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.released = min(s.released+n, len(s.payload))
	if s.limit > 0 {
		s.released = min(s.released, s.off+s.limit)
	}
}

func (s *Stream) Available() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.released - s.off
}

func (s *Stream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reads++
	if s.off >= len(s.payload) {
		return 0, io.EOF
	}

	n := copy(p, s.payload[s.off:s.released])
	s.off += n

	return n, nil
}

// SetCapacity caps how many bytes Feed keeps buffered at once. Zero means
// no cap.
func (s *Stream) SetCapacity(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.limit = n
}

// Finish marks the payload as fully received once every byte is fed.
func (s *Stream) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.finished = true
}

func (s *Stream) Capacity() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.limit <= 0 {
		return math.MaxInt
	}

	return s.limit
}

func (s *Stream) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.finished && s.released == len(s.payload)
}

// Reads counts calls to Read.
func (s *Stream) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.reads
}

// Transport is a transport.Transport whose responses are scripted by its
// exported fields. Set the fields before handing it to a Source.
type Transport struct {
	// Status is returned by every Post unless PostErr is set.
	Status  int
	PostErr error
	// BeginErr is returned by Begin.
	BeginErr error
	// ContentLength is reported by Size after a Post; 0 reports -1.
	ContentLength int64
	Type          string
	// Payload is the response body served after every Post.
	Payload []byte
	// Preload lists how many payload bytes are available right after each
	// Post. The last entry repeats; no entries means none.
	Preload []int
	// Capacity caps the bytes each response stream buffers; zero means no
	// cap.
	Capacity int
	// Finished marks each response as complete once its payload is fed, so
	// a drained stream disconnects the way a real body does.
	Finished bool

	mu        sync.Mutex
	connected bool
	stream    *Stream
	size      int64

	Begins   []string
	Headers  [][2]string
	Timeouts []time.Duration
	Reuse    bool
	Redirect transport.RedirectPolicy
	Posts    [][]byte
	Ends     int
	Released int
}

func (t *Transport) Begin(endpoint string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.Begins = append(t.Begins, endpoint)
	t.Headers = nil

	return t.BeginErr
}

func (t *Transport) SetTimeout(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.Timeouts = append(t.Timeouts, d)
}

func (t *Transport) SetReuse(reuse bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.Reuse = reuse
}

func (t *Transport) SetFollowRedirects(p transport.RedirectPolicy) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.Redirect = p
}

func (t *Transport) AddHeader(key, value string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.Headers = append(t.Headers, [2]string{key, value})
}

func (t *Transport) Post(_ context.Context, body []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.Posts = append(t.Posts, body)
	if t.PostErr != nil {
		return 0, t.PostErr
	}

	t.size = t.ContentLength
	if t.size == 0 {
		t.size = -1
	}
	t.stream = NewStream(t.Payload, t.preload(len(t.Posts)-1))
	t.stream.SetCapacity(t.Capacity)
	if t.Finished {
		t.stream.Finish()
	}
	t.connected = true

	return t.Status, nil
}

func (t *Transport) preload(attempt int) int {
	if len(t.Preload) == 0 {
		return 0
	}

	return t.Preload[min(attempt, len(t.Preload)-1)]
}

func (t *Transport) Size() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.size
}

func (t *Transport) ContentType() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.Type
}

func (t *Transport) Stream() transport.ByteStream {
	return t.Current()
}

// Current returns the stream of the latest Post.
func (t *Transport) Current() *Stream {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stream == nil {
		t.stream = NewStream(nil, 0)
	}

	return t.stream
}

func (t *Transport) End() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.Ends++
	t.connected = false
	t.size = -1
}

func (t *Transport) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stream != nil && t.stream.Done() && t.stream.Available() == 0 {
		return false
	}

	return t.connected
}

// Drop simulates the server closing the connection.
func (t *Transport) Drop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.connected = false
}

func (t *Transport) Release() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.Released++
}

var (
	_ transport.Bounded   = (*Stream)(nil)
	_ transport.Transport = (*Transport)(nil)
	_ transport.Releaser  = (*Transport)(nil)
)
