// SPDX-License-Identifier: EPL-2.0

package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ik5/audpost/stream"
	"github.com/ik5/audpost/transport"
)

// DefaultTimeoutMs matches stream.DefaultTimeout.
const DefaultTimeoutMs = 5000

// Config describes one POST request whose response is audio.
type Config struct {
	Endpoint string `yaml:"endpoint"`
	// Body is sent as is. BodyFile names a file to send instead; it is
	// resolved against the directory of the config file.
	Body     string `yaml:"body"`
	BodyFile string `yaml:"body_file"`

	TimeoutMs int      `yaml:"timeout_ms"`
	Headers   []string `yaml:"headers"` // "Key: value"

	Format string `yaml:"format"` // empty means use the response Content-Type
	Output string `yaml:"output"`

	Reconnect          bool   `yaml:"reconnect"`
	Redirect           string `yaml:"redirect"` // none, strict or force
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
	BufferBytes        int    `yaml:"buffer_bytes"`

	Logging LoggingConfig `yaml:"logging"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

var redirectPolicies = map[string]transport.RedirectPolicy{
	"none":   transport.RedirectNone,
	"strict": transport.RedirectStrict,
	"force":  transport.RedirectForce,
}

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

func defaults() *Config {
	return &Config{
		TimeoutMs:   DefaultTimeoutMs,
		Output:      "out.wav",
		Reconnect:   true,
		Redirect:    "force",
		BufferBytes: transport.DefaultBufferSize,
		Logging:     LoggingConfig{Level: "info"},
	}
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	if cfg.BodyFile != "" && !filepath.IsAbs(cfg.BodyFile) {
		cfg.BodyFile = filepath.Join(filepath.Dir(path), cfg.BodyFile)
	}

	return cfg, nil
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Endpoint) == "":
		return ErrNoEndpoint
	case c.Body != "" && c.BodyFile != "":
		return ErrBodyConflict
	case c.TimeoutMs < 0:
		return fmt.Errorf("%w: %d", ErrNegativeTimeout, c.TimeoutMs)
	case c.BufferBytes < 0:
		return fmt.Errorf("%w: %d", ErrInvalidBufferSize, c.BufferBytes)
	case c.Output == "":
		return ErrNoOutput
	}

	if _, ok := redirectPolicies[strings.ToLower(c.Redirect)]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRedirect, c.Redirect)
	}
	if _, ok := levels[strings.ToLower(c.Logging.Level)]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLevel, c.Logging.Level)
	}

	for _, h := range c.Headers {
		if _, _, ok := stream.SplitHeader(h); !ok {
			return fmt.Errorf("%w: %q", ErrMalformedHeader, h)
		}
	}

	return nil
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

func (c *Config) RedirectPolicy() transport.RedirectPolicy {
	if p, ok := redirectPolicies[strings.ToLower(c.Redirect)]; ok {
		return p
	}

	return transport.RedirectForce
}

// Payload returns the request body, reading BodyFile when set.
func (c *Config) Payload() ([]byte, error) {
	if c.BodyFile == "" {
		return []byte(c.Body), nil
	}

	data, err := os.ReadFile(c.BodyFile)
	if err != nil {
		return nil, fmt.Errorf("read body file: %w", err)
	}

	return data, nil
}

// Logger builds a slog logger writing to w at the configured level.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, ok := levels[strings.ToLower(c.Logging.Level)]
	if !ok {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	if c.Logging.JSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}
