package config

import (
	"io"
	"log/slog"
	"strconv"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// ParseLevel converts a level name or numeric slog level, falling back to def.
func ParseLevel(value string, def slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	switch level {
	case "":
		return def
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}
	return def
}

// NewLogger builds a text logger writing to a rotating log file. Verbose
// forces debug level. The returned closer releases the file.
func NewLogger(cfg LogConfig) (*slog.Logger, io.Closer) {
	level := ParseLevel(cfg.Level, slog.LevelInfo)
	if cfg.Verbose {
		level = slog.LevelDebug
	}

	writer := &lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{
		AddSource: level <= slog.LevelDebug,
		Level:     level,
	})
	return slog.New(handler), writer
}
