// Package logging builds the hclog loggers used by host components
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/ppiankov/riskline/internal/model"
)

// LevelEnv overrides the configured log level
const LevelEnv = "RISKLINE_LOG_LEVEL"

// NewLogger creates a named logger writing to stderr, keeping stdout free for reports
func NewLogger(cfg *model.Config, name string) hclog.Logger {
	return NewLoggerTo(cfg, name, os.Stderr)
}

// NewLoggerTo creates a named logger writing to w
func NewLoggerTo(cfg *model.Config, name string, w io.Writer) hclog.Logger {
	var lc model.LoggerConfig
	if cfg != nil {
		lc = cfg.Logger
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:            name,
		Level:           determineLogLevel(lc, w),
		JSONFormat:      lc.JSONFormat,
		IncludeLocation: lc.IncludeLocation,
		DisableTime:     !lc.JSONFormat,
		Output:          w,
	})
}

// determineLogLevel prefers the environment over the configuration. An unset level is INFO.
func determineLogLevel(lc model.LoggerConfig, w io.Writer) hclog.Level {
	if env := os.Getenv(LevelEnv); env != "" {
		return parseLogLevel(env, w)
	}
	if lc.Level == "" {
		return hclog.Info
	}
	return parseLogLevel(lc.Level, w)
}

// parseLogLevel converts a level name, warning and falling back to INFO when unknown
func parseLogLevel(s string, w io.Writer) hclog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return hclog.Trace
	case "DEBUG":
		return hclog.Debug
	case "INFO":
		return hclog.Info
	case "WARN", "WARNING":
		return hclog.Warn
	case "ERROR":
		return hclog.Error
	case "OFF":
		return hclog.Off
	default:
		hclog.New(&hclog.LoggerOptions{
			Level:       hclog.Warn,
			DisableTime: true,
			Output:      w,
		}).Warn("unrecognized log level, defaulting to INFO", "provided_level", s)
		return hclog.Info
	}
}
