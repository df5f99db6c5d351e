// Package log builds [log/slog] loggers from functional options.
//
//	logger := log.Make(os.Stderr, log.WithLevel(log.LevelDebug), log.WithFormat(log.FormatText))
//	logger.Debug("evaluated", slog.String("quantity", "density"))
package log

import (
	"io"
	"log/slog"
	"strings"
)

// Level represents the severity of a log message.
type Level = slog.Level

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// DefaultLevel is the default log level.
const DefaultLevel = LevelInfo

// ParseLevel parses a string representation of a log level, falling back to
// [DefaultLevel]. See [slog.Level.UnmarshalText] for the accepted forms.
func ParseLevel(s string) Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return DefaultLevel
	}
	return l
}

// Format represents the output format for log messages.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// DefaultFormat is the default log message format.
const DefaultFormat = FormatJSON

func (f Format) String() string {
	if f == FormatText {
		return "text"
	}
	return "json"
}

// ParseFormat parses "json" or "text", falling back to [DefaultFormat].
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	case "text":
		return FormatText
	default:
		return DefaultFormat
	}
}

type config struct {
	level  Level
	format Format
	caller bool
}

// Option configures a logger created by [Make].
type Option func(*config)

// WithLevel sets the minimum level of emitted messages.
func WithLevel(level Level) Option {
	return func(c *config) { c.level = level }
}

// WithFormat sets the output format.
func WithFormat(format Format) Option {
	return func(c *config) { c.format = format }
}

// WithCaller includes the source location of each log call.
func WithCaller(caller bool) Option {
	return func(c *config) { c.caller = caller }
}

// Make creates a logger writing to w. Without options it logs JSON at
// [DefaultLevel].
func Make(w io.Writer, opts ...Option) *slog.Logger {
	cfg := config{level: DefaultLevel, format: DefaultFormat}
	for _, opt := range opts {
		opt(&cfg)
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     cfg.level,
		AddSource: cfg.caller,
	}

	if cfg.format == FormatText {
		return slog.New(slog.NewTextHandler(w, handlerOpts))
	}
	return slog.New(slog.NewJSONHandler(w, handlerOpts))
}

// Discard returns a logger that drops every message.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: LevelError + 1}))
}
