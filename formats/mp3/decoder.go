// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/ik5/audpost/audio"
)

// Channels is the channel count of every decoded stream. go-mp3 always
// expands mono input to interleaved stereo.
const Channels = 2

// pcmReader is the part of gomp3.Decoder the source needs.
type pcmReader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

type source struct {
	dec        pcmReader
	sampleRate int
	buf        []byte
	// carry holds a byte when the last read stopped mid sample.
	carry   byte
	carried bool
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return Channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return cap(s.buf) / 2 }

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	need := len(dst) * 2
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	s.buf = s.buf[:need]

	off := 0
	if s.carried {
		s.buf[0] = s.carry
		off = 1
		s.carried = false
	}

	n, err := s.dec.Read(s.buf[off:])
	n += off

	if n%2 == 1 {
		s.carry = s.buf[n-1]
		s.carried = true
		n--
	}

	samples := audio.DecodePCM16LE(dst, s.buf[:n])
	if err != nil && err != io.EOF {
		return samples, fmt.Errorf("mp3: %w", err)
	}

	return samples, err
}

// Decoder decodes MPEG-1/2 Layer III streams.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidStream, err)
	}

	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		buf:        make([]byte, 8192),
	}, nil
}
