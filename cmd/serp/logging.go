package main

import (
	"io"
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig configures the program logger.
type LogConfig struct {
	// File, when set, receives JSON logs through a rotating writer.
	File    string
	Verbose bool
}

// NewLogger builds the program logger. Without a log file, warnings and
// errors go to stderr as text. With one, info and above is written as JSON
// to a rotating file. The returned closer is nil when nothing needs closing.
func NewLogger(cfg LogConfig, stderr io.Writer) (*slog.Logger, io.Closer, error) {
	opts := &slog.HandlerOptions{Level: slog.LevelWarn}
	if cfg.File != "" {
		opts.Level = slog.LevelInfo
	}
	if cfg.Verbose {
		opts.Level = slog.LevelDebug
	}

	if cfg.File == "" {
		return slog.New(slog.NewTextHandler(stderr, opts)), nil, nil
	}

	w := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    5, // megabytes
		MaxBackups: 3,
		MaxAge:     30, // days
		Compress:   true,
	}
	return slog.New(slog.NewJSONHandler(w, opts)), w, nil
}
