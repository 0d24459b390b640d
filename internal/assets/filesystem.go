package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FilesystemLoader loads {dir}/{name}.css from disk.
type FilesystemLoader struct {
	dir string
}

// NewFilesystemLoader creates a FilesystemLoader rooted at dir.
// Returns ErrInvalidStyleDir unless dir is a readable directory.
func NewFilesystemLoader(dir string) (*FilesystemLoader, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidStyleDir)
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStyleDir, err)
	}

	// Containment checks compare resolved paths
	if real, err := filepath.EvalSymlinks(absDir); err == nil {
		absDir = real
	}

	info, err := os.Stat(absDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: directory does not exist: %s", ErrInvalidStyleDir, absDir)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidStyleDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: not a directory: %s", ErrInvalidStyleDir, absDir)
	}
	if _, err := os.ReadDir(absDir); err != nil {
		return nil, fmt.Errorf("%w: cannot read directory: %v", ErrInvalidStyleDir, err)
	}

	return &FilesystemLoader{dir: absDir}, nil
}

// LoadStyle reads {dir}/{name}.css.
func (f *FilesystemLoader) LoadStyle(name string) (string, error) {
	if err := ValidateStyleName(name); err != nil {
		return "", err
	}

	path := filepath.Join(f.dir, name+".css")
	if err := f.contains(path); err != nil {
		return "", err
	}

	content, err := os.ReadFile(path) // #nosec G304 -- path checked above
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %q in %s", ErrStyleNotFound, name, f.dir)
		}
		return "", fmt.Errorf("%w: %v", ErrStyleRead, err)
	}

	return string(content), nil
}

// contains returns ErrPathTraversal when path, symlinks resolved, leaves dir.
// A path that does not exist yet is checked as written.
func (f *FilesystemLoader) contains(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("%w: cannot resolve path", ErrPathTraversal)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		abs = real
	}

	if !strings.HasPrefix(abs, f.dir+string(filepath.Separator)) {
		return fmt.Errorf("%w: %s escapes %s", ErrPathTraversal, path, f.dir)
	}
	return nil
}

// Compile-time interface check.
var _ StyleLoader = (*FilesystemLoader)(nil)
