// SPDX-License-Identifier: MPL-2.0

// Package logging configures the process-wide slog logger.
//
// Records are rendered by charmbracelet/log on stderr, at warn level unless
// verbose output is requested. When a log file is configured every record,
// including debug, is also appended to it in logfmt, rotated by lumberjack.
package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Rotation defaults, in lumberjack units.
const (
	DefaultMaxSizeMB  = 10
	DefaultMaxBackups = 3
	DefaultMaxAgeDays = 28
)

type (
	// Config selects log verbosity and the optional log file.
	Config struct {
		// Verbose lowers the stderr level to debug.
		Verbose bool
		// File, when set, receives all records.
		File       string
		MaxSizeMB  int
		MaxBackups int
		MaxAgeDays int
	}

	// fanout sends each record to every handler that accepts its level.
	fanout []slog.Handler

	nopCloser struct{}
)

// New builds a logger writing to stderr and, when cfg.File is set, to the
// rotating log file. The returned closer releases the file.
func New(cfg Config, stderr io.Writer) (*slog.Logger, io.Closer) {
	level := log.WarnLevel
	if cfg.Verbose {
		level = log.DebugLevel
	}
	console := log.NewWithOptions(stderr, log.Options{
		Level:  level,
		Prefix: "mvc",
	})

	if cfg.File == "" {
		return slog.New(console), nopCloser{}
	}

	rotator := &lj.Logger{
		Filename:   cfg.File,
		MaxSize:    valOr(cfg.MaxSizeMB, DefaultMaxSizeMB),
		MaxBackups: valOr(cfg.MaxBackups, DefaultMaxBackups),
		MaxAge:     valOr(cfg.MaxAgeDays, DefaultMaxAgeDays),
	}
	file := log.NewWithOptions(rotator, log.Options{
		Level:           log.DebugLevel,
		Formatter:       log.LogfmtFormatter,
		ReportTimestamp: true,
	})
	return slog.New(fanout{console, file}), rotator
}

// Setup installs the logger from New as the slog default.
func Setup(cfg Config, stderr io.Writer) io.Closer {
	logger, closer := New(cfg, stderr)
	slog.SetDefault(logger)
	return closer
}

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}

func (nopCloser) Close() error { return nil }

func valOr(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
