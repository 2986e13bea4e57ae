// SPDX-License-Identifier: EPL-2.0

package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audpost/formats/wav"
)

func writeConfig(t *testing.T, dir, endpoint string, extra string) string {
	t.Helper()

	path := filepath.Join(dir, "speak.yaml")
	content := fmt.Sprintf("endpoint: %s\nbody_file: request.json\nheaders:\n  - \"Content-Type: application/json\"\n%s", endpoint, extra)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "request.json"), []byte(`{"text":"hello"}`), 0o644))

	return path
}

func wavPayload(t *testing.T, samples []int16) []byte {
	t.Helper()

	path := filepath.Join(t.TempDir(), "payload.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, wav.WriteWAV16(f, 8000, 1, samples))
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	return data
}

func TestRun(t *testing.T) {
	t.Parallel()

	samples := make([]int16, 2400)
	for i := range samples {
		samples[i] = int16(i * 7)
	}
	payload := wavPayload(t, samples)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if r.Method != http.MethodPost || string(body) != `{"text":"hello"}` ||
			r.Header.Get("Content-Type") != "application/json" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "audio/wav")
		w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		_, _ = w.Write(payload)
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, srv.URL, "logging:\n  level: debug\n")
	out := filepath.Join(dir, "hello.wav")

	var logs bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-config", cfgPath, "-out", out}, &logs))

	assert.Contains(t, logs.String(), "msg=done")
	assert.Contains(t, logs.String(), "format=wav")

	f, err := os.Open(out)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })

	src, err := wav.Decoder{}.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 8000, src.SampleRate())
	assert.Equal(t, 1, src.Channels())

	total := 0
	buf := make([]float32, 512)
	for {
		n, err := src.ReadSamples(buf)
		total += n
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}
	assert.Equal(t, len(samples), total)
}

func TestRun_HTTPFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, srv.URL, "")
	out := filepath.Join(dir, "never.wav")

	var logs bytes.Buffer
	err := run(context.Background(), []string{"-config", cfgPath, "-out", out}, &logs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, logs.String(), "http failure")

	_, statErr := os.Stat(out)
	assert.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestRun_BadArguments(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer

	err := run(context.Background(), []string{"-h"}, &logs)
	require.ErrorIs(t, err, flag.ErrHelp)

	err = run(context.Background(), []string{"-config", filepath.Join(t.TempDir(), "missing.yaml")}, &logs)
	require.ErrorIs(t, err, os.ErrNotExist)
}
