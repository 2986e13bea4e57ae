// SPDX-License-Identifier: EPL-2.0

package transport

import (
	"bytes"
	"io"
	"sync"
	"time"
)

// watchdog fires when the network has been silent for longer than the
// timeout. It only runs while armed, so time spent waiting for the reader to
// make room in the buffer does not count as a stall.
type watchdog struct {
	mu      sync.Mutex
	timeout time.Duration
	timer   *time.Timer
	fire    func()
	armed   bool
	stopped bool
}

func newWatchdog(timeout time.Duration, fire func()) *watchdog {
	return &watchdog{timeout: timeout, fire: fire}
}

func (w *watchdog) arm() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.armed = true
	w.reset()
}

func (w *watchdog) disarm() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.armed = false
	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *watchdog) set(timeout time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.timeout = timeout
	if w.armed {
		w.reset()
	}
}

func (w *watchdog) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.stopped = true
	w.armed = false
	if w.timer != nil {
		w.timer.Stop()
	}
}

// reset must be called with mu held.
func (w *watchdog) reset() {
	if w.stopped {
		return
	}
	if w.timeout <= 0 {
		if w.timer != nil {
			w.timer.Stop()
		}
		return
	}
	if w.timer == nil {
		w.timer = time.AfterFunc(w.timeout, w.fire)
		return
	}
	w.timer.Reset(w.timeout)
}

// pump copies a response body into a bounded buffer from its own goroutine
// so that readers can ask how many bytes are ready without blocking.
type pump struct {
	mu     sync.Mutex
	room   *sync.Cond
	data   bytes.Buffer
	limit  int
	done   bool
	closed bool
	err    error

	src   io.ReadCloser
	dog   *watchdog
	cause func() error
}

func newPump(src io.ReadCloser, limit int, dog *watchdog, cause func() error) *pump {
	p := &pump{
		src:   src,
		limit: limit,
		dog:   dog,
		cause: cause,
	}
	p.room = sync.NewCond(&p.mu)

	return p
}

func (p *pump) run() {
	chunk := make([]byte, min(p.limit, 16<<10))

	for {
		p.mu.Lock()
		for p.data.Len() >= p.limit && !p.closed {
			p.room.Wait()
		}
		if p.closed {
			p.mu.Unlock()
			return
		}
		free := p.limit - p.data.Len()
		p.mu.Unlock()

		p.dog.arm()
		n, err := p.src.Read(chunk[:min(free, len(chunk))])
		p.dog.disarm()

		p.mu.Lock()
		p.data.Write(chunk[:n])
		if err != nil {
			p.done = true
			if err != io.EOF {
				if cause := p.cause(); cause != nil {
					err = cause
				}
				p.err = err
			}
			p.mu.Unlock()
			return
		}
		p.mu.Unlock()
	}
}

func (p *pump) Available() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.data.Len()
}

func (p *pump) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.data.Len() == 0 {
		if p.done || p.closed {
			if p.err != nil {
				return 0, p.err
			}
			return 0, io.EOF
		}
		return 0, nil
	}

	n, _ := p.data.Read(b)
	p.room.Signal()

	return n, nil
}

func (p *pump) Capacity() int { return p.limit }

func (p *pump) Done() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.done || p.closed
}

func (p *pump) connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return false
	}

	return !p.done || p.data.Len() > 0
}

func (p *pump) failure() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.err
}

func (p *pump) close() {
	p.mu.Lock()
	p.closed = true
	p.data.Reset()
	p.room.Broadcast()
	p.mu.Unlock()

	p.dog.stop()
	p.src.Close()
}
