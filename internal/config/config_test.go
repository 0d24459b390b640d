package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Normalize.BracketBlocks != BracketBlocksPermissive {
		t.Errorf("Normalize.BracketBlocks = %q, want %q", cfg.Normalize.BracketBlocks, BracketBlocksPermissive)
	}
	if cfg.Normalize.Strictness != StrictnessDefault {
		t.Errorf("Normalize.Strictness = %q, want %q", cfg.Normalize.Strictness, StrictnessDefault)
	}
	if cfg.Normalize.CollapseSingleLineDisplay {
		t.Error("Normalize.CollapseSingleLineDisplay = true, want false")
	}
	if !slices.Contains(cfg.Input.Include, "**/*.md") {
		t.Errorf("Input.Include = %v, want **/*.md included", cfg.Input.Include)
	}
	if cfg.Output.InPlace {
		t.Error("Output.InPlace = true, want false")
	}
	if cfg.Preview.Style != "default" {
		t.Errorf("Preview.Style = %q, want default", cfg.Preview.Style)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestNormalizeConfig_PermissiveBracketBlocks(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{value: "", want: true},
		{value: "permissive", want: true},
		{value: "strict", want: false},
		{value: "STRICT", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			n := NormalizeConfig{BracketBlocks: tt.value}
			if got := n.PermissiveBracketBlocks(); got != tt.want {
				t.Errorf("PermissiveBracketBlocks() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidateFieldLength(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		maxLength int
		wantErr   bool
	}{
		{name: "empty value is valid", value: "", maxLength: 10},
		{name: "value at limit is valid", value: "1234567890", maxLength: 10},
		{name: "value over limit returns error", value: "12345678901", maxLength: 10, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFieldLength("test.field", tt.value, tt.maxLength)
			if tt.wantErr {
				if !errors.Is(err, ErrFieldTooLong) {
					t.Errorf("error = %v, want ErrFieldTooLong", err)
				}
				if err != nil && !strings.Contains(err.Error(), "test.field") {
					t.Errorf("error %q should name the field", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:   "strict bracket blocks",
			mutate: func(c *Config) { c.Normalize.BracketBlocks = BracketBlocksStrict },
		},
		{
			name:   "enum values are case-insensitive",
			mutate: func(c *Config) { c.Normalize.Strictness = "Conservative" },
		},
		{
			name:   "empty enums mean defaults",
			mutate: func(c *Config) { c.Normalize = NormalizeConfig{} },
		},
		{
			name:    "unknown bracket blocks mode",
			mutate:  func(c *Config) { c.Normalize.BracketBlocks = "loose" },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "unknown strictness",
			mutate:  func(c *Config) { c.Normalize.Strictness = "paranoid" },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "malformed include glob",
			mutate:  func(c *Config) { c.Input.Include = []string{"[abc"} },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "empty exclude glob",
			mutate:  func(c *Config) { c.Input.Exclude = []string{""} },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "too many patterns",
			mutate:  func(c *Config) { c.Input.Exclude = make([]string, MaxPatterns+1) },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "pattern too long",
			mutate:  func(c *Config) { c.Input.Include = []string{strings.Repeat("a", MaxPatternLength+1)} },
			wantErr: ErrFieldTooLong,
		},
		{
			name:    "in place with output directory",
			mutate:  func(c *Config) { c.Output.InPlace = true; c.Output.DefaultDir = "out" },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "output directory too long",
			mutate:  func(c *Config) { c.Output.DefaultDir = strings.Repeat("d", MaxPathLength+1) },
			wantErr: ErrFieldTooLong,
		},
		{
			name:    "preview title too long",
			mutate:  func(c *Config) { c.Preview.Title = strings.Repeat("t", MaxTitleLength+1) },
			wantErr: ErrFieldTooLong,
		},
		{
			name:   "style none",
			mutate: func(c *Config) { c.Preview.Style = "none" },
		},
		{
			name:   "style file",
			mutate: func(c *Config) { c.Preview.Style = "styles/site.CSS" },
		},
		{
			name:   "empty style",
			mutate: func(c *Config) { c.Preview.Style = "" },
		},
		{
			name:    "style name with separator",
			mutate:  func(c *Config) { c.Preview.Style = "../default" },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "style dir too long",
			mutate:  func(c *Config) { c.Preview.StyleDir = strings.Repeat("d", MaxPathLength+1) },
			wantErr: ErrFieldTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("empty name returns ErrEmptyConfigName", func(t *testing.T) {
		_, err := LoadConfig("")
		if !errors.Is(err, ErrEmptyConfigName) {
			t.Errorf("error = %v, want ErrEmptyConfigName", err)
		}
	})

	t.Run("valid file path loads config", func(t *testing.T) {
		configPath := writeConfig(t, t.TempDir(), "test.yaml", `normalize:
  bracketBlocks: strict
  strictness: conservative
  collapseSingleLineDisplay: true
input:
  include:
    - "docs/**/*.md"
  exclude:
    - "**/vendor/**"
`)

		cfg, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Normalize.PermissiveBracketBlocks() {
			t.Error("PermissiveBracketBlocks() = true, want false")
		}
		if cfg.Normalize.Strictness != StrictnessConservative {
			t.Errorf("Normalize.Strictness = %q, want %q", cfg.Normalize.Strictness, StrictnessConservative)
		}
		if !cfg.Normalize.CollapseSingleLineDisplay {
			t.Error("Normalize.CollapseSingleLineDisplay = false, want true")
		}
		if !slices.Contains(cfg.Input.Include, "docs/**/*.md") {
			t.Errorf("Input.Include = %v, want docs/**/*.md included", cfg.Input.Include)
		}
		if !slices.Contains(cfg.Input.Exclude, "**/vendor/**") {
			t.Errorf("Input.Exclude = %v, want **/vendor/** included", cfg.Input.Exclude)
		}
	})

	t.Run("absent fields keep defaults", func(t *testing.T) {
		configPath := writeConfig(t, t.TempDir(), "partial.yaml", "preview:\n  title: Notes\n")

		cfg, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Preview.Title != "Notes" {
			t.Errorf("Preview.Title = %q, want %q", cfg.Preview.Title, "Notes")
		}
		if cfg.Normalize.Strictness != StrictnessDefault {
			t.Errorf("Normalize.Strictness = %q, want %q", cfg.Normalize.Strictness, StrictnessDefault)
		}
		if !cfg.Normalize.PermissiveBracketBlocks() {
			t.Error("PermissiveBracketBlocks() = false, want true")
		}
	})

	t.Run("nonexistent file path returns ErrConfigNotFound", func(t *testing.T) {
		_, err := LoadConfig("/nonexistent/path/config.yaml")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("invalid YAML returns ErrConfigParse", func(t *testing.T) {
		configPath := writeConfig(t, t.TempDir(), "invalid.yaml", "normalize: [unclosed")

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("unknown field returns ErrConfigParse in strict mode", func(t *testing.T) {
		configPath := writeConfig(t, t.TempDir(), "unknown.yaml", "normalize:\n  strictness: default\nunknownField: x\n")

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("invalid enum returns ErrInvalidValue", func(t *testing.T) {
		configPath := writeConfig(t, t.TempDir(), "enum.yaml", "normalize:\n  bracketBlocks: sometimes\n")

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidValue) {
			t.Errorf("error = %v, want ErrInvalidValue", err)
		}
	})

	t.Run("config name resolves yaml in current directory", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "myconfig.yaml", "preview:\n  title: fromname\n")

		originalWd, err := os.Getwd()
		if err != nil {
			t.Fatalf("failed to get working directory: %v", err)
		}
		defer os.Chdir(originalWd)
		if err := os.Chdir(dir); err != nil {
			t.Fatalf("chdir: %v", err)
		}

		cfg, err := LoadConfig("myconfig")
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Preview.Title != "fromname" {
			t.Errorf("Preview.Title = %q, want %q", cfg.Preview.Title, "fromname")
		}
	})

	t.Run("config name resolves yml extension", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "other.yml", "output:\n  inPlace: true\n")

		originalWd, err := os.Getwd()
		if err != nil {
			t.Fatalf("failed to get working directory: %v", err)
		}
		defer os.Chdir(originalWd)
		if err := os.Chdir(dir); err != nil {
			t.Fatalf("chdir: %v", err)
		}

		cfg, err := LoadConfig("other")
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if !cfg.Output.InPlace {
			t.Error("Output.InPlace = false, want true")
		}
	})

	t.Run("unknown config name returns ErrConfigNotFound", func(t *testing.T) {
		dir := t.TempDir()
		originalWd, err := os.Getwd()
		if err != nil {
			t.Fatalf("failed to get working directory: %v", err)
		}
		defer os.Chdir(originalWd)
		if err := os.Chdir(dir); err != nil {
			t.Fatalf("chdir: %v", err)
		}

		_, err = LoadConfig("definitely-not-a-config-name-xyz")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
		if err != nil && !strings.Contains(err.Error(), "definitely-not-a-config-name-xyz.yaml") {
			t.Errorf("error %q should list searched paths", err)
		}
	})
}

func TestSearchPaths(t *testing.T) {
	paths := SearchPaths("mathnorm")

	if len(paths) < 2 {
		t.Fatalf("SearchPaths() = %v, want at least the local candidates", paths)
	}
	if paths[0] != "mathnorm.yaml" || paths[1] != "mathnorm.yml" {
		t.Errorf("local candidates = %v, want [mathnorm.yaml mathnorm.yml]", paths[:2])
	}
	for _, p := range paths[2:] {
		if !strings.Contains(p, dirName) {
			t.Errorf("user candidate %q should live under %s", p, dirName)
		}
	}
}

func TestUserPath(t *testing.T) {
	path, err := UserPath("mathnorm")
	if err != nil {
		t.Skipf("no user config directory: %v", err)
	}
	if filepath.Base(path) != "mathnorm.yaml" {
		t.Errorf("UserPath() = %q, want mathnorm.yaml file", path)
	}
	if filepath.Base(filepath.Dir(path)) != dirName {
		t.Errorf("UserPath() = %q, want parent %s", path, dirName)
	}
}

func TestConfig_Encode(t *testing.T) {
	data, err := DefaultConfig().Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	for _, want := range []string{"normalize:", "bracketBlocks: permissive", "strictness: default", "include:"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("Encode() output missing %q:\n%s", want, data)
		}
	}

	// Encoded defaults must load back without error.
	path := writeConfig(t, t.TempDir(), "encoded.yaml", string(data))
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig(encoded) error = %v", err)
	}
	if cfg.Normalize.Strictness != StrictnessDefault {
		t.Errorf("round-tripped Strictness = %q, want %q", cfg.Normalize.Strictness, StrictnessDefault)
	}
}
