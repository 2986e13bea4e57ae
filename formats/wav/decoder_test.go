// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
)

type chunk struct {
	id   string
	body []byte
}

func pcmFormat(code uint16, channels, rate, bits int) []byte {
	b := make([]byte, 16)
	blockAlign := channels * bits / 8
	binary.LittleEndian.PutUint16(b[0:], code)
	binary.LittleEndian.PutUint16(b[2:], uint16(channels))
	binary.LittleEndian.PutUint32(b[4:], uint32(rate))
	binary.LittleEndian.PutUint32(b[8:], uint32(rate*blockAlign))
	binary.LittleEndian.PutUint16(b[12:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(b[14:], uint16(bits))

	return b
}

func extensibleFormat(sub uint16, channels, rate int) []byte {
	b := append(pcmFormat(formatExtensible, channels, rate, 16), make([]byte, 24)...)
	binary.LittleEndian.PutUint16(b[16:], 22)
	binary.LittleEndian.PutUint16(b[24:], sub)

	return b
}

func pcmData(samples ...int16) []byte {
	b := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(b[i*2:], uint16(s))
	}

	return b
}

// buildRIFF lays out chunks in order, padding odd-sized bodies.
func buildRIFF(chunks ...chunk) []byte {
	body := new(bytes.Buffer)
	body.WriteString("WAVE")
	for _, c := range chunks {
		body.WriteString(c.id)
		_ = binary.Write(body, binary.LittleEndian, uint32(len(c.body)))
		body.Write(c.body)
		if len(c.body)%2 == 1 {
			body.WriteByte(0)
		}
	}

	out := new(bytes.Buffer)
	out.WriteString("RIFF")
	_ = binary.Write(out, binary.LittleEndian, uint32(body.Len()))
	out.Write(body.Bytes())

	return out.Bytes()
}

// chunkHeader returns a RIFF/WAVE preamble followed by a chunk header that
// claims size bytes, with nothing after it.
func chunkHeader(id string, size uint32) []byte {
	b := []byte("RIFF\x00\x00\x00\x00WAVE" + id + "\x00\x00\x00\x00")
	binary.LittleEndian.PutUint32(b[16:], size)

	return b
}

func createWAVFile(sampleRate, channels int, samples []int16) []byte {
	return buildRIFF(
		chunk{"fmt ", pcmFormat(formatPCM, channels, sampleRate, 16)},
		chunk{"data", pcmData(samples...)},
	)
}

// forwardOnly hides any Seek method of the wrapped reader.
func forwardOnly(b []byte) io.Reader {
	return struct{ io.Reader }{bytes.NewReader(b)}
}

func drain(t *testing.T, src interface {
	ReadSamples([]float32) (int, error)
}, size int) []float32 {
	t.Helper()

	var out []float32
	buf := make([]float32, size)
	for range 10000 {
		n, err := src.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}
	t.Fatal("ReadSamples() never reached io.EOF")

	return nil
}

func TestDecoder_Valid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		data     []byte
		rate     int
		channels int
		want     []float32
	}{
		{
			name:     "mono",
			data:     createWAVFile(8000, 1, []int16{0, 16384, -16384, -32768}),
			rate:     8000,
			channels: 1,
			want:     []float32{0, 0.5, -0.5, -1},
		},
		{
			name:     "stereo",
			data:     createWAVFile(44100, 2, []int16{16384, -16384, 0, 8192}),
			rate:     44100,
			channels: 2,
			want:     []float32{0.5, -0.5, 0, 0.25},
		},
		{
			name: "extensible pcm",
			data: buildRIFF(
				chunk{"fmt ", extensibleFormat(formatPCM, 1, 16000)},
				chunk{"data", pcmData(16384)},
			),
			rate:     16000,
			channels: 1,
			want:     []float32{0.5},
		},
		{
			name: "unknown chunks skipped",
			data: buildRIFF(
				chunk{"LIST", []byte("INFOISFT\x04\x00\x00\x00test")},
				chunk{"fmt ", pcmFormat(formatPCM, 1, 8000, 16)},
				chunk{"fact", []byte{1, 0, 0, 0}},
				chunk{"data", pcmData(100, 200)},
			),
			rate:     8000,
			channels: 1,
			want:     []float32{100.0 / 32768, 200.0 / 32768},
		},
		{
			name: "odd sized chunk padding",
			data: buildRIFF(
				chunk{"junk", []byte{1, 2, 3}},
				chunk{"fmt ", pcmFormat(formatPCM, 1, 8000, 16)},
				chunk{"data", pcmData(-100)},
			),
			rate:     8000,
			channels: 1,
			want:     []float32{-100.0 / 32768},
		},
		{
			name: "data limited to chunk size",
			data: buildRIFF(
				chunk{"fmt ", pcmFormat(formatPCM, 1, 8000, 16)},
				chunk{"data", pcmData(300)},
				chunk{"LIST", []byte("trailing metadata")},
			),
			rate:     8000,
			channels: 1,
			want:     []float32{300.0 / 32768},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src, err := Decoder{}.Decode(forwardOnly(tt.data))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			defer src.Close()

			if src.SampleRate() != tt.rate {
				t.Errorf("SampleRate() = %d, want %d", src.SampleRate(), tt.rate)
			}
			if src.Channels() != tt.channels {
				t.Errorf("Channels() = %d, want %d", src.Channels(), tt.channels)
			}

			got := drain(t, src, 3)
			if len(got) != len(tt.want) {
				t.Fatalf("read %d samples, want %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("sample[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDecoder_Invalid(t *testing.T) {
	t.Parallel()

	fmtPCM := chunk{"fmt ", pcmFormat(formatPCM, 1, 8000, 16)}

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"empty", nil, ErrNotWavFile},
		{"truncated header", []byte("RIFF\x00\x00"), ErrNotWavFile},
		{"not riff", []byte("This is not a WAV file at all"), ErrNotWavFile},
		{"not wave", []byte("RIFF\x10\x00\x00\x00AVI LIST"), ErrNotWavFile},
		{
			"8 bit",
			buildRIFF(chunk{"fmt ", pcmFormat(formatPCM, 1, 8000, 8)}, chunk{"data", []byte{1, 2}}),
			ErrOnlyPCM16bitSupported,
		},
		{
			"float",
			buildRIFF(chunk{"fmt ", pcmFormat(3, 1, 8000, 16)}, chunk{"data", []byte{1, 2}}),
			ErrOnlyPCM16bitSupported,
		},
		{
			"extensible float",
			buildRIFF(chunk{"fmt ", extensibleFormat(3, 1, 8000)}, chunk{"data", []byte{1, 2}}),
			ErrOnlyPCM16bitSupported,
		},
		{
			"zero channels",
			buildRIFF(chunk{"fmt ", pcmFormat(formatPCM, 0, 8000, 16)}, chunk{"data", []byte{1, 2}}),
			ErrInvalidChannels,
		},
		{"data before fmt", buildRIFF(chunk{"data", pcmData(1)}, fmtPCM), ErrMissingFormatChunk},
		{"short fmt", buildRIFF(chunk{"fmt ", []byte{1, 0, 1, 0}}), ErrMalformedFormatChunk},
		{"no data chunk", buildRIFF(fmtPCM), io.EOF},
		{"fmt size wraps", chunkHeader("fmt ", 0xffffffff), ErrMalformedFormatChunk},
		{"fmt size huge", chunkHeader("fmt ", 0x7ffffffe), ErrMalformedFormatChunk},
		{"fmt size just over bound", chunkHeader("fmt ", maxFormatSize+1), ErrMalformedFormatChunk},
		{"fmt body truncated", append(chunkHeader("fmt ", 40), 1, 0, 1, 0), io.ErrUnexpectedEOF},
		{"skipped chunk truncated", chunkHeader("LIST", 0xffffffff), io.EOF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Decoder{}.Decode(forwardOnly(tt.data))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Decode() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecoder_OpenEndedData(t *testing.T) {
	t.Parallel()

	for _, size := range []uint32{0, streamingSize} {
		data := createWAVFile(8000, 1, nil)
		binary.LittleEndian.PutUint32(data[len(data)-4:], size)
		data = append(data, pcmData(1, 2, 3, 4, 5)...)

		src, err := Decoder{}.Decode(forwardOnly(data))
		if err != nil {
			t.Fatalf("Decode() size %#x error = %v", size, err)
		}

		if got := drain(t, src, 2); len(got) != 5 {
			t.Errorf("size %#x: read %d samples, want 5", size, len(got))
		}
	}
}

func TestSource_ReadSamples_PartialRead(t *testing.T) {
	t.Parallel()

	samples := make([]int16, 10)
	src, err := Decoder{}.Decode(bytes.NewReader(createWAVFile(8000, 1, samples)))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	dst := make([]float32, 4)
	for i, want := range []struct {
		n   int
		err error
	}{{4, nil}, {4, nil}, {2, io.EOF}, {0, io.EOF}} {
		n, err := src.ReadSamples(dst)
		if n != want.n || err != want.err {
			t.Errorf("read %d = %d, %v, want %d, %v", i, n, err, want.n, want.err)
		}
	}
}

func TestSource_ReadSamples_TruncatedSample(t *testing.T) {
	t.Parallel()

	data := createWAVFile(8000, 1, []int16{100, 200})
	data = data[:len(data)-1]

	src, err := Decoder{}.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	n, err := src.ReadSamples(make([]float32, 4))
	if n != 1 || err != io.EOF {
		t.Errorf("ReadSamples() = %d, %v, want 1, io.EOF", n, err)
	}
}

func TestSource_ReadSamples_EmptyBuffer(t *testing.T) {
	t.Parallel()

	src, err := Decoder{}.Decode(bytes.NewReader(createWAVFile(8000, 1, []int16{1})))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if n, err := src.ReadSamples(nil); n != 0 || err != nil {
		t.Errorf("ReadSamples(nil) = %d, %v, want 0, nil", n, err)
	}
}

type failingReader struct{ r io.Reader }

func (f *failingReader) Read(p []byte) (int, error) {
	n, err := f.r.Read(p)
	if err == io.EOF {
		return n, io.ErrClosedPipe
	}

	return n, err
}

func TestSource_ReadSamples_Error(t *testing.T) {
	t.Parallel()

	data := createWAVFile(8000, 1, nil)
	binary.LittleEndian.PutUint32(data[len(data)-4:], streamingSize)

	src, err := Decoder{}.Decode(&failingReader{r: bytes.NewReader(data)})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if _, err := src.ReadSamples(make([]float32, 4)); !errors.Is(err, io.ErrClosedPipe) {
		t.Errorf("ReadSamples() error = %v, want io.ErrClosedPipe", err)
	}
}

func TestSource_BufSize(t *testing.T) {
	t.Parallel()

	src, err := Decoder{}.Decode(bytes.NewReader(createWAVFile(8000, 1, nil)))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if src.BufSize() != 4096 {
		t.Errorf("BufSize() = %d, want 4096", src.BufSize())
	}
}

func BenchmarkDecoder_Decode(b *testing.B) {
	data := createWAVFile(8000, 1, make([]int16, 1024))

	b.ReportAllocs()

	for b.Loop() {
		_, _ = Decoder{}.Decode(bytes.NewReader(data))
	}
}

func BenchmarkSource_ReadSamples(b *testing.B) {
	data := createWAVFile(44100, 2, make([]int16, 44100*2))
	dst := make([]float32, 4096)

	b.ReportAllocs()

	for b.Loop() {
		src, _ := Decoder{}.Decode(bytes.NewReader(data))
		for {
			if _, err := src.ReadSamples(dst); err != nil {
				break
			}
		}
	}
}
