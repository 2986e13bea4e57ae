// SPDX-License-Identifier: EPL-2.0

// Command audpost sends the POST request described by a YAML config file
// and writes the decoded audio response to a WAV file.
//
//	audpost -config speak.yaml -out hello.wav
package main

import (
	"context"
	"crypto/tls"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ik5/audpost"
	"github.com/ik5/audpost/config"
	"github.com/ik5/audpost/stream"
	"github.com/ik5/audpost/transport"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "audpost: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("audpost", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", "audpost.yaml", "path to the YAML request description")
	out := fs.String("out", "", "output WAV file, overrides the config")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *out != "" {
		cfg.Output = *out
	}

	logger := cfg.Logger(stderr)

	body, err := cfg.Payload()
	if err != nil {
		return err
	}

	topts := []transport.Option{
		transport.WithBufferSize(cfg.BufferBytes),
		transport.WithLogger(logger),
	}
	if cfg.InsecureSkipVerify {
		logger.Warn("TLS certificate verification disabled")
		topts = append(topts, transport.WithTLSConfig(&tls.Config{InsecureSkipVerify: true}))
	}

	// passed to the stream as borrowed, so it is released here
	tr := transport.NewHTTP(topts...)
	defer tr.Release()

	st, err := audpost.Open(ctx, audpost.Request{
		Endpoint: cfg.Endpoint,
		Body:     body,
		Timeout:  cfg.Timeout(),
		Headers:  cfg.Headers,
		Format:   cfg.Format,
	}, nil,
		stream.WithTransport(tr),
		stream.WithLogger(logger),
		stream.WithReconnect(cfg.Reconnect),
		stream.WithRedirectPolicy(cfg.RedirectPolicy()),
		stream.WithStatusFunc(func(code stream.Status, msg string) {
			logger.Info("stream status", "status", code.String(), "msg", msg)
		}),
	)
	if err != nil {
		return fmt.Errorf("open %s: %w", cfg.Endpoint, err)
	}
	defer st.Close()

	src := st.Source()
	logger.Info("streaming",
		"format", st.Format(),
		"rate", src.SampleRate(),
		"channels", src.Channels(),
		"size", st.Bytes().Size(),
	)

	f, err := os.Create(cfg.Output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	start := time.Now()
	n, err := audpost.WriteWAV(f, src, src.BufSize())
	if err != nil {
		return fmt.Errorf("write %s: %w", cfg.Output, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}

	logger.Info("done",
		"output", cfg.Output,
		"samples", n,
		"bytes", st.Bytes().Pos(),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	return nil
}
