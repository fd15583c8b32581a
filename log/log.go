package log

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Level is a log severity, parsed from CLI flag strings via [ParseLevel].
type Level string

const (
	LevelError Level = "error"
	LevelWarn  Level = "warn"
	LevelInfo  Level = "info"
	LevelDebug Level = "debug"
)

func (l Level) slog() slog.Level {
	switch l {
	case LevelError:
		return slog.LevelError
	case LevelWarn:
		return slog.LevelWarn
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	}

	return slog.LevelInfo
}

// Format is a log output encoding, parsed from CLI flag strings via
// [ParseFormat].
type Format string

const (
	// FormatJSON outputs logs as JSON objects.
	FormatJSON Format = "json"
	// FormatLogfmt outputs logs as key=value pairs, one line per record.
	FormatLogfmt Format = "logfmt"
	// FormatText outputs logs as key=value pairs with the timestamp
	// dropped, for interactive terminal use.
	FormatText Format = "text"
)

var (
	// ErrInvalidArgument indicates an invalid argument was provided.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnknownLogLevel indicates an unrecognized log level string.
	ErrUnknownLogLevel = errors.New("unknown log level")
	// ErrUnknownLogFormat indicates an unrecognized log format string.
	ErrUnknownLogFormat = errors.New("unknown log format")
)

// ParseLevel parses a log level string, case-insensitively. "warning" is
// accepted as an alias for "warn".
func ParseLevel(level string) (Level, error) {
	switch strings.ToLower(level) {
	case "error":
		return LevelError, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	}

	return "", ErrUnknownLogLevel
}

// ParseFormat parses a log format string, case-insensitively.
func ParseFormat(format string) (Format, error) {
	switch strings.ToLower(format) {
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatLogfmt):
		return FormatLogfmt, nil
	case string(FormatText):
		return FormatText, nil
	}

	return "", ErrUnknownLogFormat
}

// GetAllLevelStrings lists every accepted level string, for flag help text
// and shell completion.
func GetAllLevelStrings() []string {
	return []string{string(LevelDebug), string(LevelInfo), string(LevelWarn), string(LevelError)}
}

// GetAllFormatStrings lists every accepted format string, for flag help
// text and shell completion.
func GetAllFormatStrings() []string {
	return []string{string(FormatJSON), string(FormatLogfmt), string(FormatText)}
}

// NewHandler builds a [slog.Handler] writing to w at the given level and
// format.
func NewHandler(w io.Writer, level Level, format Format) slog.Handler {
	opts := &slog.HandlerOptions{Level: level.slog()}

	switch format {
	case FormatJSON:
		return slog.NewJSONHandler(w, opts)

	case FormatText:
		textOpts := &slog.HandlerOptions{
			Level: level.slog(),
			ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey {
					return slog.Attr{}
				}

				return a
			},
		}

		return slog.NewTextHandler(w, textOpts)

	case FormatLogfmt:
		return slog.NewTextHandler(w, opts)
	}

	return slog.NewTextHandler(w, opts)
}

// NewHandlerFromStrings parses levelStr and formatStr and builds a handler
// via [NewHandler].
func NewHandlerFromStrings(w io.Writer, levelStr, formatStr string) (slog.Handler, error) {
	level, err := ParseLevel(levelStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	format, err := ParseFormat(formatStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	return NewHandler(w, level, format), nil
}
