// Package logging configures the process-wide slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation limits for file logs.
const (
	MaxSizeMB  = 10
	MaxBackups = 5
	MaxAgeDays = 30
)

// Options selects level and destination.
type Options struct {
	// Level is debug, info, warn or error.
	Level string
	// Verbose forces debug level.
	Verbose bool
	// File, when set, switches to JSON records in a rotating file.
	File string
	// Stderr receives text records when File is empty.
	Stderr io.Writer
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", name, err)
	}
	return lvl, nil
}

// New builds a logger. The returned closer releases the log file, if any.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	level := slog.LevelInfo
	if opts.Level != "" {
		lvl, err := ParseLevel(opts.Level)
		if err != nil {
			return nil, nil, err
		}
		level = lvl
	}
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	if opts.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    MaxSizeMB,
			MaxBackups: MaxBackups,
			MaxAge:     MaxAgeDays,
			Compress:   true,
		}
		return slog.New(slog.NewJSONHandler(rotator, handlerOpts)), rotator, nil
	}

	w := opts.Stderr
	if w == nil {
		w = io.Discard
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts)), nopCloser{}, nil
}

// Setup installs the logger as slog's default.
func Setup(opts Options) (io.Closer, error) {
	logger, closer, err := New(opts)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
