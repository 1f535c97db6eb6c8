// Package logging builds the structured loggers used by apicligen commands.
package logging

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// NewLogger creates a logger writing to w. Terminals get slog.TextHandler
// output; pipes and files get slog.JSONHandler output. The level is Info,
// or Debug when verbose is set.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	options := &slog.HandlerOptions{Level: Level(verbose)}

	var handler slog.Handler
	if IsTerminal(w) {
		handler = slog.NewTextHandler(w, options)
	} else {
		handler = slog.NewJSONHandler(w, options)
	}
	return slog.New(handler)
}

// NewCommandLogger is NewLogger on stderr.
func NewCommandLogger(verbose bool) *slog.Logger {
	return NewLogger(os.Stderr, verbose)
}

// Level returns the handler level for the verbose setting.
func Level(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}
