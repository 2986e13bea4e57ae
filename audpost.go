// SPDX-License-Identifier: EPL-2.0

package audpost

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ik5/audpost/audio"
	"github.com/ik5/audpost/formats/aiff"
	"github.com/ik5/audpost/formats/mp3"
	"github.com/ik5/audpost/formats/vorbis"
	"github.com/ik5/audpost/formats/wav"
	"github.com/ik5/audpost/stream"
)

// DefaultBufSize is the sample buffer used when a caller passes zero.
const DefaultBufSize = 4096

// Request describes one POST exchange whose response is audio.
type Request struct {
	Endpoint string
	Body     []byte
	Timeout  time.Duration
	// Headers are "key: value" strings.
	Headers []string
	// Format forces a registry key. When empty the response Content-Type
	// picks the decoder.
	Format string
}

// DefaultRegistry returns a registry with every bundled decoder and the
// media types servers commonly announce for them.
func DefaultRegistry() *audio.Registry {
	reg := audio.NewRegistry()

	reg.Register("mp3", mp3.Decoder{})
	reg.Register("ogg", vorbis.Decoder{})
	reg.Register("wav", wav.Decoder{})
	reg.Register("aiff", aiff.Decoder{})

	for alias, format := range map[string]string{
		"audio/mpeg":      "mp3",
		"audio/mp3":       "mp3",
		"audio/ogg":       "ogg",
		"application/ogg": "ogg",
		"audio/vorbis":    "ogg",
		"vorbis":          "ogg",
		"audio/wav":       "wav",
		"audio/x-wav":     "wav",
		"audio/wave":      "wav",
		"audio/vnd.wave":  "wav",
		"audio/aiff":      "aiff",
		"audio/x-aiff":    "aiff",
		"aif":             "aiff",
	} {
		reg.Alias(alias, format)
	}

	return reg
}

// Stream is an open POST response together with its decoder.
type Stream struct {
	bytes  *stream.Source
	src    audio.Source
	format string
}

// Source returns the decoded samples.
func (s *Stream) Source() audio.Source { return s.src }

// Bytes returns the underlying byte source.
func (s *Stream) Bytes() *stream.Source { return s.bytes }

// Format returns the registry key of the decoder in use.
func (s *Stream) Format() string { return s.format }

// Close releases the decoder and the connection.
func (s *Stream) Close() error {
	return errors.Join(s.src.Close(), s.bytes.Close())
}

// Open sends req and attaches a decoder to the response. A nil registry
// means DefaultRegistry. On failure nothing is left open.
func Open(ctx context.Context, req Request, reg *audio.Registry, opts ...stream.Option) (*Stream, error) {
	if reg == nil {
		reg = DefaultRegistry()
	}

	src, err := stream.Dial(ctx, req.Endpoint, req.Body, req.Timeout, req.Headers, opts...)
	if err != nil {
		_ = src.Close()
		return nil, err
	}

	key := req.Format
	if key == "" {
		key = src.ContentType()
	}

	format, dec, ok := reg.Lookup(key)
	if !ok {
		_ = src.Close()
		return nil, fmt.Errorf("%w: %q", audio.ErrUnknownFormat, key)
	}

	// decoders probe for io.Seeker, which a Source only pretends to be
	decoded, err := dec.Decode(struct{ io.Reader }{src})
	if err != nil {
		_ = src.Close()
		return nil, fmt.Errorf("decoding %s: %w", format, err)
	}

	return &Stream{bytes: src, src: decoded, format: format}, nil
}

// CollectPCM16 reads src to the end and returns its samples as 16-bit PCM.
func CollectPCM16(src audio.Source, bufSize int) ([]int16, error) {
	if bufSize <= 0 {
		bufSize = DefaultBufSize
	}

	buf := make([]float32, bufSize)
	var out []int16

	for {
		n, err := src.ReadSamples(buf)
		for _, v := range buf[:n] {
			out = append(out, audio.Float32ToInt16(v))
		}

		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, fmt.Errorf("%w", err)
		}
	}
}

// WriteWAV streams src into a 16-bit WAV file and returns how many samples
// were written.
func WriteWAV(dst io.WriteSeeker, src audio.Source, bufSize int) (int64, error) {
	if bufSize <= 0 {
		bufSize = DefaultBufSize
	}

	w := wav.NewWriter(dst, src.SampleRate(), src.Channels())
	buf := make([]float32, bufSize)

	var total int64
	for {
		n, err := src.ReadSamples(buf)
		if n > 0 {
			if werr := w.WriteSamples(buf[:n]); werr != nil {
				return total, werr
			}
			total += int64(n)
		}

		if err == io.EOF {
			return total, w.Close()
		}
		if err != nil {
			return total, errors.Join(err, w.Close())
		}
	}
}
