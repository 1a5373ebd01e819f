// Package tui renders CLI output: markdown instructions via glamour and the
// startup banner via termenv.
package tui

import (
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// IsInteractive reports whether stdout is a terminal. Piped output gets the
// raw markdown instead of ANSI-styled text.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// NewRenderer returns a function that renders markdown for the terminal.
// In non-interactive contexts the input passes through untouched.
func NewRenderer() func(string) (string, error) {
	if !IsInteractive() {
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // detect light/dark background
	)
	if err != nil {
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}
