package main

// Notes:
// - Shared fixtures for the CLI tests: an in-memory Environment and temp files.
// No coverage gaps: this is test infrastructure, not production code.

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-mathnorm/internal/clipboard"
)

// Inputs shared by the CLI tests.
const (
	mathInput  = "The value \\(x+1\\) is positive.\n"
	mathOutput = "The value $x+1$ is positive.\n"
	plainInput = "Nothing to see here.\n"
)

// testEnv bundles an Environment with its captured streams.
type testEnv struct {
	*Environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	clip   *clipboard.Memory
}

// newTestEnv returns an environment whose stdin holds stdin. An empty stdin
// behaves like an interactive terminal.
func newTestEnv(stdin, clip string) *testEnv {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	mem := clipboard.NewMemory(clip)
	return &testEnv{
		Environment: &Environment{
			Stdout:    stdout,
			Stderr:    stderr,
			Stdin:     strings.NewReader(stdin),
			StdinTTY:  func() bool { return stdin == "" },
			Clipboard: mem,
		},
		stdout: stdout,
		stderr: stderr,
		clip:   mem,
	}
}

// writeTestFile creates dir/name (and parents) holding content.
func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return path
}

// readTestFile returns the content of path.
func readTestFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

// testConfig writes a minimal config file so runs never pick up a user config.
func testConfig(t *testing.T) string {
	t.Helper()
	return writeTestFile(t, t.TempDir(), "mathnorm.yaml", "normalize:\n  strictness: default\n")
}

// runCLI runs mathnorm with args under a test config.
func runCLI(t *testing.T, env *testEnv, args ...string) int {
	t.Helper()
	full := append([]string{"mathnorm"}, args...)
	full = append(full, "--config", testConfig(t))
	return run(context.Background(), full, env.Environment)
}

// isolateEnv points the config search at an empty temp directory, makes it
// the working directory and clears MATHNORM_* variables. It returns the
// directory. Tests using it cannot run in parallel.
func isolateEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("HOME", dir)
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, "MATHNORM_") {
			t.Setenv(name, "")
			if err := os.Unsetenv(name); err != nil {
				t.Fatalf("setup: %v", err)
			}
		}
	}
	t.Chdir(dir)
	return dir
}
