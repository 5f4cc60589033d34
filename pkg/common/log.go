// Package common holds small, dependency-light conventions shared across
// the plate-layout packages: structured logging and id generation. Nothing
// here is domain logic; domain logic never imports outward from common.
package common

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// VerboseEnabled gates Verbose/Debug output, mirroring the CLI's --verbose
// flag (cmd/root.go).
var VerboseEnabled = false

var (
	logOnce sync.Once
	logger  zerolog.Logger
)

func log() zerolog.Logger {
	logOnce.Do(func() {
		level := zerolog.InfoLevel
		if VerboseEnabled {
			level = zerolog.DebugLevel
		}
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
			Level(level).
			With().Timestamp().Logger()
	})
	return logger
}

// ResetLogger forces the next log call to re-read VerboseEnabled. Tests and
// the CLI's --verbose flag both need this since the logger is otherwise
// built once, lazily.
func ResetLogger() {
	logOnce = sync.Once{}
}

// Info logs a message at info level, always shown.
func Info(format string, args ...interface{}) {
	log().Info().Msgf(format, args...)
}

// Warning logs a message at warn level, always shown.
func Warning(format string, args ...interface{}) {
	log().Warn().Msgf(format, args...)
}

// Error logs a message at error level, always shown.
func Error(format string, args ...interface{}) {
	log().Error().Msgf(format, args...)
}

// Verbose logs a message at debug level, shown only when VerboseEnabled.
func Verbose(format string, args ...interface{}) {
	log().Debug().Msgf(format, args...)
}

// Debug is an alias for Verbose for semantic clarity at call sites.
func Debug(format string, args ...interface{}) {
	Verbose(format, args...)
}

// SolveEvent logs one structured line summarizing a completed solve
// attempt.
func SolveEvent(status string, plateKind int, plates int, tier string, relaxed []string, ms int64) {
	log().Info().
		Str("status", status).
		Int("plate_kind", plateKind).
		Int("plates", plates).
		Str("tier", tier).
		Strs("relaxed_constraints", relaxed).
		Int64("solve_time_ms", ms).
		Msg("solve completed")
}
