package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/alnah/go-mathnorm/internal/assets"
	"github.com/alnah/go-mathnorm/internal/fileutil"
	"github.com/alnah/go-mathnorm/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// DefaultName is the config name looked up when --config is not given.
const DefaultName = "mathnorm"

// dirName is the per-user config directory under os.UserConfigDir().
const dirName = "go-mathnorm"

// Accepted values for enum fields.
const (
	BracketBlocksPermissive = "permissive"
	BracketBlocksStrict     = "strict"

	StrictnessDefault      = "default"
	StrictnessConservative = "conservative"
)

// Field length limits.
const (
	MaxPathLength    = 4096
	MaxPatternLength = 256
	MaxPatterns      = 64
	MaxTitleLength   = 200
)

// Config holds all configuration for math normalization.
type Config struct {
	Normalize NormalizeConfig `yaml:"normalize"`
	Input     InputConfig     `yaml:"input"`
	Output    OutputConfig    `yaml:"output"`
	Preview   PreviewConfig   `yaml:"preview"`
}

// NormalizeConfig tunes the rewriting heuristics.
type NormalizeConfig struct {
	BracketBlocks             string `yaml:"bracketBlocks"` // "permissive" (default) or "strict"
	Strictness                string `yaml:"strictness"`    // "default" or "conservative"
	CollapseSingleLineDisplay bool   `yaml:"collapseSingleLineDisplay"`
}

// InputConfig defines input source options.
type InputConfig struct {
	DefaultDir string   `yaml:"defaultDir"` // Default input directory (empty = must specify)
	Include    []string `yaml:"include"`    // doublestar globs, relative to the walked directory
	Exclude    []string `yaml:"exclude"`
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default output directory (empty = stdout or in place)
	InPlace    bool   `yaml:"inPlace"`
}

// PreviewConfig defines options for the preview command.
type PreviewConfig struct {
	Title    string `yaml:"title"`    // Empty = file name
	Style    string `yaml:"style"`    // Style name, path to a .css file, or "none"
	StyleDir string `yaml:"styleDir"` // Directory of {name}.css files shadowing the built-in styles
}

// StyleIsFile reports whether Style names a stylesheet file rather than a
// built-in or styleDir style.
func (p PreviewConfig) StyleIsFile() bool {
	return strings.EqualFold(filepath.Ext(p.Style), ".css")
}

// PermissiveBracketBlocks reports whether every isolated [ ... ] block is
// converted. An empty value counts as permissive.
func (n NormalizeConfig) PermissiveBracketBlocks() bool {
	return !strings.EqualFold(n.BracketBlocks, BracketBlocksStrict)
}

// Validate checks enum values, glob syntax and field lengths.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Normalize.BracketBlocks) {
	case "", BracketBlocksPermissive, BracketBlocksStrict:
	default:
		return fmt.Errorf("%w: normalize.bracketBlocks %q (must be %s or %s)",
			ErrInvalidValue, c.Normalize.BracketBlocks, BracketBlocksPermissive, BracketBlocksStrict)
	}

	switch strings.ToLower(strings.TrimSpace(c.Normalize.Strictness)) {
	case "", StrictnessDefault, StrictnessConservative:
	default:
		return fmt.Errorf("%w: normalize.strictness %q (must be %s or %s)",
			ErrInvalidValue, c.Normalize.Strictness, StrictnessDefault, StrictnessConservative)
	}

	if err := validatePatterns("input.include", c.Input.Include); err != nil {
		return err
	}
	if err := validatePatterns("input.exclude", c.Input.Exclude); err != nil {
		return err
	}

	if err := validateFieldLength("input.defaultDir", c.Input.DefaultDir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("output.defaultDir", c.Output.DefaultDir, MaxPathLength); err != nil {
		return err
	}
	if c.Output.InPlace && c.Output.DefaultDir != "" {
		return fmt.Errorf("%w: output.inPlace and output.defaultDir are mutually exclusive", ErrInvalidValue)
	}

	if err := validateFieldLength("preview.title", c.Preview.Title, MaxTitleLength); err != nil {
		return err
	}
	if err := validateFieldLength("preview.style", c.Preview.Style, MaxPathLength); err != nil {
		return err
	}
	if c.Preview.Style != "" && !c.Preview.StyleIsFile() {
		if err := assets.ValidateStyleName(c.Preview.Style); err != nil {
			return fmt.Errorf("%w: preview.style: %v", ErrInvalidValue, err)
		}
	}
	return validateFieldLength("preview.styleDir", c.Preview.StyleDir, MaxPathLength)
}

// validatePatterns checks count, length and doublestar syntax of globs.
func validatePatterns(field string, patterns []string) error {
	if len(patterns) > MaxPatterns {
		return fmt.Errorf("%w: %s has %d patterns (max %d)", ErrInvalidValue, field, len(patterns), MaxPatterns)
	}
	for i, p := range patterns {
		name := fmt.Sprintf("%s[%d]", field, i)
		if err := validateFieldLength(name, p, MaxPatternLength); err != nil {
			return err
		}
		if p == "" || !doublestar.ValidatePattern(p) {
			return fmt.Errorf("%w: %s %q is not a valid glob", ErrInvalidValue, name, p)
		}
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns the configuration used when no file is loaded.
func DefaultConfig() *Config {
	return &Config{
		Normalize: NormalizeConfig{
			BracketBlocks: BracketBlocksPermissive,
			Strictness:    StrictnessDefault,
		},
		Input: InputConfig{
			Include: []string{"**/*.md", "**/*.markdown"},
		},
		Preview: PreviewConfig{
			Style: assets.DefaultStyleName,
		},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Fields absent from the file keep their DefaultConfig values.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s\n%s", ErrConfigParse, configPath, yamlutil.Describe(err))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SearchPaths returns the files LoadConfig tries for a config name, in order.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, <UserConfigDir>/go-mathnorm/
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2) // 2 locations

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}

	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, dirName, name+ext))
		}
	}

	return paths
}

// UserPath returns where "config init" writes a named config by default.
func UserPath(name string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating user config directory: %w", err)
	}
	return filepath.Join(dir, dirName, name+".yaml"), nil
}

// resolveConfigPath searches for a config file by name in standard locations.
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}

// Encode renders c as YAML suitable for a config file.
func (c *Config) Encode() ([]byte, error) {
	data, err := yamlutil.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return data, nil
}
