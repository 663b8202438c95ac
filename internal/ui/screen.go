package ui

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// ShouldUseFullscreen returns true if an interactive console should take over
// the terminal. Returns false when --no-interactive was passed or out is not
// a terminal.
//
// Parameters:
//   - noInteractive: whether --no-interactive was passed
//   - out: the stream console output is written to
//
// Returns:
//   - bool: true if the alternate screen should be used
func ShouldUseFullscreen(noInteractive bool, out *os.File) bool {
	if noInteractive || out == nil {
		return false
	}
	return isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd())
}

// Fullscreen switches a terminal to the alternate screen for the lifetime of
// an interactive console.
type Fullscreen struct {
	output *termenv.Output
	active bool
}

// NewFullscreen returns a controller for the terminal behind out.
func NewFullscreen(out *os.File) *Fullscreen {
	return &Fullscreen{output: termenv.NewOutput(out)}
}

// Enter switches to the alternate screen and clears it.
func (f *Fullscreen) Enter() error {
	if f.active {
		return nil
	}
	f.output.AltScreen()
	f.output.ClearScreen()
	f.active = true
	return nil
}

// Exit restores the main screen. Calling Exit without a matching Enter is a
// no-op.
func (f *Fullscreen) Exit() error {
	if !f.active {
		return nil
	}
	f.active = false
	f.output.ExitAltScreen()
	return nil
}
