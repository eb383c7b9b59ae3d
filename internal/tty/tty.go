// Package tty reports whether the process's standard streams are attached to
// an interactive terminal, gating the combiner's interactive prompts.
package tty

import (
	"os"

	"golang.org/x/term"
)

// IsStderrTerminal reports whether stderr is a terminal. Interactive prompts
// (console.Chooser) write to stderr so piping stdout never disturbs them.
func IsStderrTerminal() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// IsStdinTerminal reports whether stdin is a terminal, required before
// rendering any prompt that reads a response back.
func IsStdinTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
