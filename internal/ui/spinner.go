// Package ui holds terminal helpers shared by the commands.
package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/imgajeed76/sheetview/internal/ui/styles"
)

// Spinner provides a simple animated spinner for long operations. It
// draws on stderr so that stdout stays clean for piped output.
type Spinner struct {
	message string
	out     io.Writer
	tty     bool

	started bool
	once    sync.Once
	done    chan struct{}
	stopped chan struct{}
}

// NewSpinner creates a new spinner with the given message
func NewSpinner(message string) *Spinner {
	return &Spinner{
		message: message,
		out:     os.Stderr,
		tty:     term.IsTerminal(int(os.Stderr.Fd())),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start begins the spinner animation in the background
func (s *Spinner) Start() {
	s.started = true
	// Not a terminal: stay silent
	if !s.tty {
		close(s.stopped)
		return
	}
	// Accessible mode: just print a static message
	if styles.IsAccessible() {
		fmt.Fprintln(s.out, s.message+"...")
		close(s.stopped)
		return
	}

	go func() {
		defer close(s.stopped)
		frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
		style := lipgloss.NewStyle().Foreground(styles.Accent)
		i := 0
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-s.done:
				// Clear the spinner line
				fmt.Fprint(s.out, "\r\033[K")
				return
			case <-ticker.C:
				frame := styles.Render(style, frames[i%len(frames)])
				fmt.Fprintf(s.out, "\r%s %s", frame, s.message)
				i++
			}
		}
	}()
}

// Stop stops the spinner and waits for the line to be cleared. It is
// safe to call more than once.
func (s *Spinner) Stop() {
	s.once.Do(func() { close(s.done) })
	if s.started {
		<-s.stopped
	}
}
