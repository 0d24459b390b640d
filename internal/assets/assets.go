package assets

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultStyleName is the style used when none is configured.
const DefaultStyleName = "default"

// NoStyle disables styling: the page keeps the browser defaults.
const NoStyle = "none"

// Sentinel errors for style lookup.
var (
	ErrStyleNotFound    = errors.New("style not found")
	ErrInvalidStyleName = errors.New("invalid style name")
	ErrInvalidStyleDir  = errors.New("invalid style directory")
	ErrStyleRead        = errors.New("failed to read style")
	ErrPathTraversal    = errors.New("path traversal detected")
)

// StyleLoader loads a stylesheet by name (without the .css extension).
type StyleLoader interface {
	LoadStyle(name string) (string, error)
}

// defaultLoader serves the package-level LoadStyle.
var defaultLoader = NewEmbeddedLoader()

// LoadStyle loads a built-in stylesheet by name.
// Returns ErrStyleNotFound for an unknown name and ErrInvalidStyleName for a
// name holding separators or dots.
func LoadStyle(name string) (string, error) {
	return defaultLoader.LoadStyle(name)
}

// ValidateStyleName checks that name is safe to use as a file name.
func ValidateStyleName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidStyleName)
	}
	if strings.ContainsAny(name, "/\\.") {
		return fmt.Errorf("%w: %q", ErrInvalidStyleName, name)
	}
	return nil
}

// isNotFound reports whether err means the style does not exist.
func isNotFound(err error) bool {
	return errors.Is(err, ErrStyleNotFound)
}
