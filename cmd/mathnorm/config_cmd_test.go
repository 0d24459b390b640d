package main

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-mathnorm/internal/config"
)

func TestRunConfigInit(t *testing.T) {
	t.Parallel()

	t.Run("writes defaults", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "nested", "work.yaml")
		env := newTestEnv("", "")
		if err := runConfig([]string{"init", "-o", path}, env.Environment); err != nil {
			t.Fatalf("runConfig() error = %v", err)
		}
		if got := env.stdout.String(); got != "Created "+path+"\n" {
			t.Errorf("stdout = %q", got)
		}
		cfg, err := config.LoadConfig(path)
		if err != nil {
			t.Fatalf("written config does not load: %v", err)
		}
		if cfg.Normalize.Strictness != config.StrictnessDefault {
			t.Errorf("Strictness = %q", cfg.Normalize.Strictness)
		}
	})

	t.Run("refuses to overwrite", func(t *testing.T) {
		t.Parallel()

		path := writeTestFile(t, t.TempDir(), "work.yaml", "# mine\n")
		env := newTestEnv("", "")
		err := runConfig([]string{"init", "--output", path}, env.Environment)
		if !errors.Is(err, ErrConfigExists) {
			t.Fatalf("error = %v, want ErrConfigExists", err)
		}
		if got := readTestFile(t, path); got != "# mine\n" {
			t.Errorf("file overwritten: %q", got)
		}
	})

	t.Run("force overwrites", func(t *testing.T) {
		t.Parallel()

		path := writeTestFile(t, t.TempDir(), "work.yaml", "# mine\n")
		env := newTestEnv("", "")
		if err := runConfig([]string{"init", "-o", path, "--force"}, env.Environment); err != nil {
			t.Fatalf("runConfig() error = %v", err)
		}
		if got := readTestFile(t, path); !strings.Contains(got, "normalize:") {
			t.Errorf("file not rewritten: %q", got)
		}
	})

	t.Run("unknown flag", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv("", "")
		if err := runConfig([]string{"init", "--bogus"}, env.Environment); !errors.Is(err, ErrUsage) {
			t.Errorf("error = %v, want ErrUsage", err)
		}
	})
}

func TestRunConfigInit_DefaultPath(t *testing.T) {
	dir := t.TempDir()
	orig := configPathFunc
	configPathFunc = func(name string) (string, error) {
		return filepath.Join(dir, name+".yaml"), nil
	}
	t.Cleanup(func() { configPathFunc = orig })

	env := newTestEnv("", "")
	if err := runConfig([]string{"init", "work"}, env.Environment); err != nil {
		t.Fatalf("runConfig() error = %v", err)
	}
	want := filepath.Join(dir, "work.yaml")
	if got := env.stdout.String(); got != "Created "+want+"\n" {
		t.Errorf("stdout = %q, want Created %s", got, want)
	}
}

func TestRunConfigPath(t *testing.T) {
	dir := isolateEnv(t)
	writeTestFile(t, dir, "work.yml", "preview:\n  title: Work\n")

	env := newTestEnv("", "")
	if err := runConfig([]string{"path", "work"}, env.Environment); err != nil {
		t.Fatalf("runConfig() error = %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(env.stdout.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4:\n%s", len(lines), env.stdout)
	}
	if lines[0] != "  work.yaml" {
		t.Errorf("line 0 = %q", lines[0])
	}
	if lines[1] != "* work.yml" {
		t.Errorf("line 1 = %q", lines[1])
	}
}

func TestRunConfig_Usage(t *testing.T) {
	t.Parallel()

	env := newTestEnv("", "")
	if err := runConfig(nil, env.Environment); err != nil {
		t.Errorf("runConfig(nil) error = %v", err)
	}
	if !strings.Contains(env.stdout.String(), "config <init|path>") {
		t.Errorf("usage not printed: %q", env.stdout)
	}

	if err := runConfig([]string{"edit"}, env.Environment); !errors.Is(err, ErrUsage) {
		t.Errorf("error = %v, want ErrUsage", err)
	}
}
