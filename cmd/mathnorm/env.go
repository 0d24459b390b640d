package main

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/alnah/go-mathnorm/internal/clipboard"
)

// Environment holds injectable dependencies for testability.
// Includes standard streams, terminal detection, and the clipboard.
type Environment struct {
	Stdout    io.Writer
	Stderr    io.Writer
	Stdin     io.Reader
	StdinTTY  func() bool // true when stdin is an interactive terminal
	Clipboard clipboard.Clipboard
}

// DefaultEnv returns the production environment bound to the process streams.
func DefaultEnv() *Environment {
	return &Environment{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Stdin:  os.Stdin,
		StdinTTY: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd())) // #nosec G115 -- fd fits in int
		},
		Clipboard: clipboard.System{},
	}
}

// logger returns a debug logger on Stderr when verbose, nil otherwise.
// A nil logger leaves the library's discarding default in place.
func (e *Environment) logger(verbose bool) *slog.Logger {
	if !verbose {
		return nil
	}
	return slog.New(slog.NewTextHandler(e.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
