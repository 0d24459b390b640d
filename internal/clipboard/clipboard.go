// Package clipboard reads and writes plain text on the system clipboard.
package clipboard

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"sync"

	"github.com/atotto/clipboard"
)

// ErrUnavailable indicates no clipboard backend could be used.
var ErrUnavailable = errors.New("clipboard unavailable")

// Clipboard abstracts clipboard access for testability.
type Clipboard interface {
	Read() (string, error)
	Write(text string) error
}

// System is the clipboard of the running desktop session.
type System struct{}

// Compile-time interface implementation checks.
var (
	_ Clipboard = System{}
	_ Clipboard = (*Memory)(nil)
)

// Read returns the clipboard text.
func (System) Read() (string, error) {
	if clipboard.Unsupported {
		return "", fmt.Errorf("%w: no backend for %s", ErrUnavailable, runtime.GOOS)
	}
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return text, nil
}

// Write replaces the clipboard text.
func (System) Write(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("%w: no backend for %s", ErrUnavailable, runtime.GOOS)
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Backend names the helper the system clipboard goes through, or "" when
// none is installed. Used by diagnostics.
func Backend() string {
	switch runtime.GOOS {
	case "darwin":
		return "pbcopy/pbpaste"
	case "windows":
		return "win32"
	}

	candidates := []string{"xsel", "xclip", "termux-clipboard-get"}
	if os.Getenv("WAYLAND_DISPLAY") != "" {
		candidates = append([]string{"wl-paste"}, candidates...)
	}
	for _, name := range candidates {
		if _, err := exec.LookPath(name); err == nil {
			return name
		}
	}
	return ""
}

// Memory is an in-process clipboard. The zero value is empty and ready.
type Memory struct {
	mu       sync.Mutex
	text     string
	ReadErr  error
	WriteErr error
}

// NewMemory returns a Memory clipboard holding text.
func NewMemory(text string) *Memory {
	return &Memory{text: text}
}

func (m *Memory) Read() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return "", m.ReadErr
	}
	return m.text, nil
}

func (m *Memory) Write(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.text = text
	return nil
}
