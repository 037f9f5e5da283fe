// Package logging builds the process slog logger from LOG_FORMAT and LOG_LEVEL.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// New returns a logger writing to w. format is "json" or "text" (anything
// else); level is debug, info, warn or error, defaulting to info.
func New(w io.Writer, format, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel maps a level name to a slog.Level. Unknown names are info.
func ParseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}
