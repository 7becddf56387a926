package ui

import (
	"bytes"
	"testing"
)

func TestSpinner_SilentWithoutTerminal(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner("Loading")
	s.out = &buf
	s.tty = false

	s.Start()
	s.Stop()
	s.Stop()

	if buf.Len() != 0 {
		t.Errorf("wrote %q to a non-terminal", buf.String())
	}
}

func TestSpinner_StopWithoutStart(t *testing.T) {
	s := NewSpinner("Loading")
	s.Stop()
}
