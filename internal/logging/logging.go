// Package logging builds the structured logger shared by the commands.
//
// The interactive table owns the terminal, so while it runs nothing may
// be written to stderr. Logs then go to --log-file or nowhere.
package logging

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// Options selects where log records go.
type Options struct {
	// Path is a file to write JSON records to. It wins over Stderr.
	Path string
	// Verbose lowers the level to debug.
	Verbose bool
	// Stderr allows writing to stderr when no Path is set. The caller
	// clears it before starting the interactive table.
	Stderr bool
}

// New returns the logger and a cleanup function that closes the log
// file, if any.
func New(opts Options) (*slog.Logger, func(), error) {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	if opts.Path != "" {
		file, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		// A log file always records debug events.
		handlerOpts.Level = slog.LevelDebug
		return slog.New(slog.NewJSONHandler(file, handlerOpts)), func() { file.Close() }, nil
	}

	if !opts.Stderr {
		return Discard(), func() {}, nil
	}
	return slog.New(NewHandler(os.Stderr, handlerOpts)), func() {}, nil
}

// NewHandler uses a text handler when w is a terminal and JSON otherwise.
func NewHandler(w io.Writer, opts *slog.HandlerOptions) slog.Handler {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
