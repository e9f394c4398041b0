package logging

import (
	"errors"
	"log/slog"
	"strings"
)

// Config represents logging configuration
type Config struct {
	Level      slog.Level
	JSONFormat bool
	FilePath   string
	MaxSize    int64
	MaxBackups int
	AddSource  bool
}

// LevelTrace sits below slog.LevelDebug, matching the "trace" rung of the
// LOG env var's off/error/warn/info/debug/trace scale. slog has no native
// trace level; this is the idiomatic way to add one (a custom integer
// below the lowest built-in level).
const LevelTrace slog.Level = slog.LevelDebug - 4

// LevelOff disables logging outright ("LOG=off"). No slog record is ever
// at or above this level, so a handler configured with it emits nothing.
const LevelOff slog.Level = slog.LevelError + 8

// ParseLevel maps the LOG env var's named levels to an slog.Level. An
// unrecognized name falls back to Info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "off":
		return LevelOff
	case "error":
		return slog.LevelError
	case "warn", "warning":
		return slog.LevelWarn
	case "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "trace":
		return LevelTrace
	default:
		return slog.LevelInfo
	}
}

// DefaultConfig returns default logging configuration
func DefaultConfig() *Config {
	return &Config{
		Level:      slog.LevelInfo,
		JSONFormat: false,
		FilePath:   "",
		MaxSize:    100 * 1024 * 1024, // 100MB
		MaxBackups: 5,
		AddSource:  false,
	}
}

// ProductionConfig returns production-optimized configuration
func ProductionConfig() *Config {
	return &Config{
		Level:      slog.LevelInfo,
		JSONFormat: true,
		FilePath:   "",
		MaxSize:    100 * 1024 * 1024,
		MaxBackups: 10,
		AddSource:  false,
	}
}

// DevelopmentConfig returns development-optimized configuration
func DevelopmentConfig() *Config {
	return &Config{
		Level:      slog.LevelDebug,
		JSONFormat: false,
		FilePath:   "",
		MaxSize:    50 * 1024 * 1024,
		MaxBackups: 3,
		AddSource:  true,
	}
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.MaxSize <= 0 {
		return errors.New("max size must be greater than 0")
	}
	if c.MaxBackups < 0 {
		return errors.New("max backups cannot be negative")
	}
	return nil
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	return &Config{
		Level:      c.Level,
		JSONFormat: c.JSONFormat,
		FilePath:   c.FilePath,
		MaxSize:    c.MaxSize,
		MaxBackups: c.MaxBackups,
		AddSource:  c.AddSource,
	}
}
