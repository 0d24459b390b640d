// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"runtime"
	"strings"

	"github.com/alnah/go-mathnorm/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForClipboard returns hints for clipboard access errors.
// Detects headless sessions and containers, where piping is the way out.
func ForClipboard() string {
	var hints []string

	headless := os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == ""

	if IsInContainer() || (runtime.GOOS == "linux" && headless) {
		hints = append(hints, "no desktop session; pipe input instead: mathnorm < notes.md")
	} else if runtime.GOOS == "linux" {
		hints = append(hints, "install xclip, xsel or wl-clipboard")
	}

	return formatHints(hints)
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and "config init" for the user config directory.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	// Find a user config path (contains go-mathnorm) to suggest
	for _, p := range searchedPaths {
		if strings.Contains(p, "go-mathnorm") {
			hint += " or run 'mathnorm config init' to create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForExtension returns hints for inputs that are not Markdown files.
func ForExtension(accepted []string) string {
	if len(accepted) == 0 {
		return ""
	}
	return format("accepted extensions: " + strings.Join(accepted, ", "))
}

// ForWouldChange returns the hint printed when --check finds work to do.
func ForWouldChange() string {
	return format("run without --check to rewrite, or with --diff to review")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
