// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ik5/audpost/audio"
)

const (
	formatPCM        = 0x0001
	formatExtensible = 0xfffe

	// streamingSize marks a data chunk whose length was unknown when the
	// header was written.
	streamingSize = 0xffffffff

	// maxFormatSize bounds the fmt chunk. The largest real layout,
	// WAVE_FORMAT_EXTENSIBLE, needs 40 bytes.
	maxFormatSize = 1 << 10
)

type wavSource struct {
	r          io.Reader
	sampleRate int
	channels   int
	buf        []byte
}

func (s *wavSource) SampleRate() int { return s.sampleRate }
func (s *wavSource) Channels() int   { return s.channels }
func (s *wavSource) Close() error    { return nil }
func (s *wavSource) BufSize() int    { return cap(s.buf) / 2 }

func (s *wavSource) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	need := len(dst) * 2
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	s.buf = s.buf[:need]

	n, err := io.ReadFull(s.r, s.buf)
	switch err {
	case nil:
	case io.EOF, io.ErrUnexpectedEOF:
		// a truncated tail still yields its whole samples
		err = io.EOF
	default:
		return 0, fmt.Errorf("wav: %w", err)
	}

	return audio.DecodePCM16LE(dst, s.buf[:n]), err
}

type format struct {
	code          uint16
	channels      int
	sampleRate    int
	bitsPerSample int
}

func parseFormat(b []byte) (format, error) {
	if len(b) < 16 {
		return format{}, ErrMalformedFormatChunk
	}

	f := format{
		code:          binary.LittleEndian.Uint16(b[0:2]),
		channels:      int(binary.LittleEndian.Uint16(b[2:4])),
		sampleRate:    int(binary.LittleEndian.Uint32(b[4:8])),
		bitsPerSample: int(binary.LittleEndian.Uint16(b[14:16])),
	}

	// WAVE_FORMAT_EXTENSIBLE keeps the real format code in the first two
	// bytes of the sub-format GUID.
	if f.code == formatExtensible {
		if len(b) < 26 {
			return format{}, ErrMalformedFormatChunk
		}
		f.code = binary.LittleEndian.Uint16(b[24:26])
	}

	return f, nil
}

// Decoder reads RIFF/WAVE streams carrying 16-bit PCM. Chunks are walked
// forward only, so the input never needs to seek.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	var hdr [12]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotWavFile, err)
	}

	if string(hdr[0:4]) != "RIFF" || string(hdr[8:12]) != "WAVE" {
		return nil, ErrNotWavFile
	}

	var (
		fmtChunk format
		haveFmt  bool
		chunk    [8]byte
	)

	for {
		if _, err := io.ReadFull(r, chunk[:]); err != nil {
			return nil, fmt.Errorf("wav: reading chunk header: %w", err)
		}

		id := string(chunk[0:4])
		size := binary.LittleEndian.Uint32(chunk[4:8])

		switch id {
		case "fmt ":
			if size > maxFormatSize {
				return nil, fmt.Errorf("%w: %d bytes", ErrMalformedFormatChunk, size)
			}

			body := make([]byte, int64(size)+int64(size%2))
			if _, err := io.ReadFull(r, body); err != nil {
				return nil, fmt.Errorf("wav: reading fmt chunk: %w", err)
			}

			f, err := parseFormat(body[:size])
			if err != nil {
				return nil, err
			}
			fmtChunk, haveFmt = f, true

		case "data":
			if !haveFmt {
				return nil, ErrMissingFormatChunk
			}
			if fmtChunk.code != formatPCM || fmtChunk.bitsPerSample != 16 {
				return nil, fmt.Errorf("%w: format %#04x, %d bits",
					ErrOnlyPCM16bitSupported, fmtChunk.code, fmtChunk.bitsPerSample)
			}
			if fmtChunk.channels < 1 {
				return nil, ErrInvalidChannels
			}

			data := r
			if size != 0 && size != streamingSize {
				data = io.LimitReader(r, int64(size))
			}

			return &wavSource{
				r:          data,
				sampleRate: fmtChunk.sampleRate,
				channels:   fmtChunk.channels,
				buf:        make([]byte, 8192),
			}, nil

		default:
			if _, err := io.CopyN(io.Discard, r, int64(size)+int64(size%2)); err != nil {
				return nil, fmt.Errorf("wav: skipping %q chunk: %w", id, err)
			}
		}
	}
}
