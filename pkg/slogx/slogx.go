package slogx

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
)

type Config struct {
	Service string
	Version string
	Env     string // e.g. "dev", "prod"
	Level   string // e.g. "debug", "info", "warn", "error"
	Format  string // e.g. "json", "text"

	// File, when set, also writes logs to a daily rotated file at this path.
	File         string
	RotationTime time.Duration // default 24h
	MaxAge       time.Duration // default 7 days
}

// New returns a configured slog.Logger instance.
func New(cfg Config) *slog.Logger {
	return NewWithWriter(cfg, os.Stdout)
}

// NewWithWriter is New with an explicit console writer.
func NewWithWriter(cfg Config, console io.Writer) *slog.Logger {
	var handler slog.Handler

	level := parseLevel(cfg.Level)
	opts := &slog.HandlerOptions{
		AddSource: cfg.Env == "dev", // Add source info in dev mode
		Level:     level,
	}

	out := console
	var fileErr error
	if cfg.File != "" {
		var rotating io.Writer
		rotating, fileErr = newRotatingFile(cfg)
		if fileErr == nil {
			out = io.MultiWriter(console, rotating)
		}
	}

	switch strings.ToLower(cfg.Format) {
	case "text":
		handler = slog.NewTextHandler(out, opts)
	default:
		handler = slog.NewJSONHandler(out, opts)
	}

	logger := slog.New(handler).With(
		"service", cfg.Service,
		"version", cfg.Version,
		"env", cfg.Env,
	)

	if fileErr != nil {
		logger.Warn("log file disabled", slog.String("file", cfg.File), slog.Any("error", fileErr))
	}

	slog.SetDefault(logger)
	return logger
}

func newRotatingFile(cfg Config) (*rotatelogs.RotateLogs, error) {
	rotation := cfg.RotationTime
	if rotation <= 0 {
		rotation = 24 * time.Hour
	}
	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = 7 * 24 * time.Hour
	}

	return rotatelogs.New(
		cfg.File+".%Y%m%d%H%M",
		rotatelogs.WithLinkName(cfg.File),
		rotatelogs.WithRotationTime(rotation),
		rotatelogs.WithMaxAge(maxAge),
	)
}

// parseLevel maps a string to slog.Level.
func parseLevel(lvl string) slog.Level {
	switch strings.ToLower(lvl) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
