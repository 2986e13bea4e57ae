// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/ik5/audpost/audio"
)

// ErrWriterClosed is returned when writing to a closed Writer.
var ErrWriterClosed = errors.New("wav: writer closed")

// Writer streams 16-bit PCM into a WAV container. The RIFF and data sizes
// are patched on Close, which is why the destination must seek.
type Writer struct {
	enc     *gowav.Encoder
	buf     *goaudio.IntBuffer
	started bool
	closed  bool
}

// NewWriter prepares a 16-bit PCM writer. Nothing is written until the first
// call to WriteSamples, WritePCM16 or Close.
func NewWriter(w io.WriteSeeker, sampleRate, channels int) *Writer {
	return &Writer{
		enc: gowav.NewEncoder(w, sampleRate, 16, channels, formatPCM),
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: 16,
		},
	}
}

// WriteSamples converts float samples in [-1.0, 1.0] and appends them.
// Values outside the range are clamped.
func (w *Writer) WriteSamples(samples []float32) error {
	w.buf.Data = w.buf.Data[:0]
	for _, v := range samples {
		w.buf.Data = append(w.buf.Data, int(audio.Float32ToInt16(v)))
	}

	return w.flush()
}

// WritePCM16 appends interleaved 16-bit samples.
func (w *Writer) WritePCM16(samples []int16) error {
	w.buf.Data = w.buf.Data[:0]
	for _, v := range samples {
		w.buf.Data = append(w.buf.Data, int(v))
	}

	return w.flush()
}

func (w *Writer) flush() error {
	if w.closed {
		return ErrWriterClosed
	}

	if err := w.enc.Write(w.buf); err != nil {
		return fmt.Errorf("wav: write: %w", err)
	}
	w.started = true

	return nil
}

// Close finalizes the header. It is safe to call more than once.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}

	// an empty file still needs its header
	if !w.started {
		w.buf.Data = w.buf.Data[:0]
		if err := w.flush(); err != nil {
			return err
		}
	}
	w.closed = true

	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("wav: close: %w", err)
	}

	return nil
}

// WriteWAV16 writes a complete 16-bit PCM WAV file in one call.
func WriteWAV16(w io.WriteSeeker, sampleRate, channels int, samples []int16) error {
	wr := NewWriter(w, sampleRate, channels)
	if err := wr.WritePCM16(samples); err != nil {
		return err
	}

	return wr.Close()
}
