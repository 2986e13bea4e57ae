// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audpost/transport"
)

// Read copies the next bytes of the response into p, waiting up to
// WaitWindow for len(p) bytes to arrive, or for as many as the transport can
// buffer. A stall is answered with one
// reconnect attempt. End of stream is reported as (0, io.EOF).
func (s *Source) Read(p []byte) (int, error) {
	if p == nil {
		s.logger.Error("read passed nil buffer")
		return 0, ErrNilBuffer
	}

	return s.readInternal(p, false)
}

// ReadNonBlock is like Read but returns as soon as any byte is available.
// It polls up to NonBlockAttempts times and then gives up on the stream.
func (s *Source) ReadNonBlock(p []byte) (int, error) {
	if p == nil {
		s.logger.Error("non-blocking read passed nil buffer")
		return 0, ErrNilBuffer
	}

	return s.readInternal(p, true)
}

func (s *Source) readInternal(p []byte, nonBlock bool) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	for stalls := 0; ; stalls++ {
		if !s.transport.Connected() {
			s.logger.Info("stream disconnected", "endpoint", s.endpoint, "pos", s.pos)
			s.transport.End()
			s.emit(StatusDisconnected, "stream disconnected")

			return 0, io.EOF
		}

		if s.size > 0 && s.pos >= s.size {
			return 0, io.EOF
		}

		n := s.clamp(len(p))
		bs := s.transport.Stream()

		if nonBlock {
			s.waitAny(bs)
		} else {
			s.waitFor(bs, n)
		}

		avail := bs.Available()
		if avail == 0 {
			if !nonBlock && stalls < MaxStallRetries {
				s.logger.Warn("no stream data available, retrying", "endpoint", s.endpoint, "pos", s.pos)
				s.emit(StatusReconnecting, "no stream data available")
				s.transport.End()
				s.resume()

				continue
			}

			s.logger.Info("stream not available, end of streaming", "endpoint", s.endpoint, "pos", s.pos)
			s.transport.End()
			s.emit(StatusNoData, "stream not available")

			return 0, io.EOF
		}

		n = min(n, avail)
		read, err := bs.Read(p[:n])
		s.pos += int64(read)

		if err != nil && !errors.Is(err, io.EOF) {
			s.transport.End()
			return read, fmt.Errorf("read stream: %w", err)
		}

		return read, nil
	}
}

// clamp limits n to what is left of a response of known size.
func (s *Source) clamp(n int) int {
	if s.size <= 0 {
		return n
	}

	remaining := max(s.size-s.pos, 0)
	if int64(n) > remaining {
		return int(remaining)
	}

	return n
}

// waitFor yields until n bytes are buffered or WaitWindow has passed. It
// stops early once the stream cannot grow any further: n is capped to what
// the stream can hold, and a finished or disconnected body ends the wait.
func (s *Source) waitFor(bs transport.ByteStream, n int) {
	bounded, ok := bs.(transport.Bounded)
	if ok {
		n = min(n, bounded.Capacity())
	}

	start := s.sched.Now()
	for bs.Available() < n && s.sched.Now().Sub(start) < WaitWindow {
		if (ok && bounded.Done()) || !s.transport.Connected() {
			return
		}
		s.sched.Yield()
	}
}

// waitAny polls until at least one byte is buffered.
func (s *Source) waitAny(bs transport.ByteStream) {
	for attempt := 0; attempt < NonBlockAttempts && bs.Available() == 0; attempt++ {
		s.sched.Sleep(PollInterval)
		s.sched.Yield()
	}
}

// resume re-issues the request after a stall and skips the bytes that were
// already delivered. On failure the transport is left ended.
func (s *Source) resume() {
	if !s.reconnect {
		return
	}
	if s.truncated {
		s.logger.Warn("endpoint too long to reconnect", "endpoint", s.endpoint)
		return
	}

	ctx := s.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	code, err := s.connect(ctx, s.endpoint)
	s.lastCode = code
	if err == nil {
		err = s.skip()
	}
	if err != nil {
		s.transport.End()
		s.logger.Warn("reconnect failed", "endpoint", s.endpoint, "code", code, "err", err)

		return
	}

	s.logger.Info("stream reconnected", "endpoint", s.endpoint, "pos", s.pos)
	s.emit(StatusReconnected, "stream reconnected")
}

// skip discards the first pos bytes of a fresh response.
func (s *Source) skip() error {
	if size := max(s.transport.Size(), 0); s.size > 0 && size != s.size {
		return fmt.Errorf("%w: content length changed from %d to %d", ErrReconnect, s.size, size)
	}

	var scratch [4096]byte
	left := s.pos

	for left > 0 {
		bs := s.transport.Stream()
		want := int(min(left, int64(len(scratch))))

		s.waitFor(bs, want)
		avail := bs.Available()
		if avail == 0 {
			return fmt.Errorf("%w: no data while skipping to %d", ErrReconnect, s.pos)
		}

		read, err := bs.Read(scratch[:min(want, avail)])
		left -= int64(read)
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: %w", ErrReconnect, err)
		}
		if read == 0 {
			return fmt.Errorf("%w: stream ended while skipping to %d", ErrReconnect, s.pos)
		}
	}

	return nil
}
