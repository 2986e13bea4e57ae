// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	gowav "github.com/go-audio/wav"
)

func tempFile(t *testing.T) *os.File {
	t.Helper()

	f, err := os.Create(filepath.Join(t.TempDir(), "out.wav"))
	if err != nil {
		t.Fatalf("os.Create() error = %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })

	return f
}

func readBack(t *testing.T, f *os.File) []byte {
	t.Helper()

	data, err := os.ReadFile(f.Name())
	if err != nil {
		t.Fatalf("os.ReadFile() error = %v", err)
	}

	return data
}

func TestWriteWAV16_Header(t *testing.T) {
	t.Parallel()

	f := tempFile(t)
	samples := []int16{100, -100, 200, -200}
	if err := WriteWAV16(f, 8000, 2, samples); err != nil {
		t.Fatalf("WriteWAV16() error = %v", err)
	}

	data := readBack(t, f)
	if len(data) != 44+len(samples)*2 {
		t.Fatalf("file size = %d, want %d", len(data), 44+len(samples)*2)
	}

	le := binary.LittleEndian
	checks := []struct {
		name string
		got  uint32
		want uint32
	}{
		{"riff size", le.Uint32(data[4:8]), uint32(len(data) - 8)},
		{"format", uint32(le.Uint16(data[20:22])), formatPCM},
		{"channels", uint32(le.Uint16(data[22:24])), 2},
		{"sample rate", le.Uint32(data[24:28]), 8000},
		{"byte rate", le.Uint32(data[28:32]), 8000 * 2 * 2},
		{"block align", uint32(le.Uint16(data[32:34])), 4},
		{"bits", uint32(le.Uint16(data[34:36])), 16},
		{"data size", le.Uint32(data[40:44]), uint32(len(samples) * 2)},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %d, want %d", c.name, c.got, c.want)
		}
	}

	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" || string(data[36:40]) != "data" {
		t.Errorf("unexpected chunk ids in header %q", data[:44])
	}
	if !bytes.Equal(data[44:], pcmData(samples...)) {
		t.Errorf("sample data = %v, want %v", data[44:], pcmData(samples...))
	}
}

func TestWriter_RoundTrip(t *testing.T) {
	t.Parallel()

	f := tempFile(t)
	w := NewWriter(f, 16000, 1)

	in := []float32{0, 0.5, -0.5, 1, -1, 2, -2}
	if err := w.WriteSamples(in[:3]); err != nil {
		t.Fatalf("WriteSamples() error = %v", err)
	}
	if err := w.WriteSamples(in[3:]); err != nil {
		t.Fatalf("WriteSamples() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data := readBack(t, f)

	src, err := Decoder{}.Decode(forwardOnly(data))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if src.SampleRate() != 16000 || src.Channels() != 1 {
		t.Errorf("format = %d Hz x %d, want 16000 Hz x 1", src.SampleRate(), src.Channels())
	}

	got := drain(t, src, 16)
	want := []float32{0, 16383.0 / 32768, -0.5, 32767.0 / 32768, -1, 32767.0 / 32768, -1}
	if len(got) != len(want) {
		t.Fatalf("read %d samples, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	// the reference decoder must agree on the container
	ref := gowav.NewDecoder(bytes.NewReader(data))
	if !ref.IsValidFile() {
		t.Fatal("go-audio/wav rejected the file")
	}
	buf, err := ref.FullPCMBuffer()
	if err != nil {
		t.Fatalf("FullPCMBuffer() error = %v", err)
	}
	if len(buf.Data) != len(want) {
		t.Errorf("reference decoder read %d samples, want %d", len(buf.Data), len(want))
	}
}

func TestWriter_EmptyFile(t *testing.T) {
	t.Parallel()

	f := tempFile(t)
	if err := NewWriter(f, 8000, 1).Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data := readBack(t, f)
	if len(data) != 44 {
		t.Fatalf("file size = %d, want 44", len(data))
	}

	src, err := Decoder{}.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got := drain(t, src, 4); len(got) != 0 {
		t.Errorf("read %d samples from empty file, want 0", len(got))
	}
}

func TestWriter_Closed(t *testing.T) {
	t.Parallel()

	w := NewWriter(tempFile(t), 8000, 1)
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() error = %v, want nil", err)
	}

	if err := w.WritePCM16([]int16{1}); !errors.Is(err, ErrWriterClosed) {
		t.Errorf("WritePCM16() after Close error = %v, want ErrWriterClosed", err)
	}
	if err := w.WriteSamples([]float32{0.1}); !errors.Is(err, ErrWriterClosed) {
		t.Errorf("WriteSamples() after Close error = %v, want ErrWriterClosed", err)
	}
}

func BenchmarkWriter_WritePCM16(b *testing.B) {
	f, err := os.Create(filepath.Join(b.TempDir(), "bench.wav"))
	if err != nil {
		b.Fatal(err)
	}
	defer f.Close()

	w := NewWriter(f, 44100, 2)
	samples := make([]int16, 8192)

	b.ReportAllocs()

	for b.Loop() {
		_ = w.WritePCM16(samples)
	}

	_ = w.Close()
}
