package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/alnah/go-mathnorm/internal/config"
	"github.com/alnah/go-mathnorm/internal/fileutil"
	"github.com/alnah/go-mathnorm/internal/hints"
)

// envConfig holds configuration from environment variables.
// Provides CI-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath   string // MATHNORM_CONFIG: config file name or path
	Conservative bool   // MATHNORM_CONSERVATIVE: strict bracket blocks + conservative classifier
	Workers      int    // MATHNORM_WORKERS: parallel workers
	InputDir     string // MATHNORM_INPUT_DIR: default input directory
	OutputDir    string // MATHNORM_OUTPUT_DIR: default output directory
}

// knownEnvVars lists valid MATHNORM_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"MATHNORM_CONFIG":       true,
	"MATHNORM_CONSERVATIVE": true,
	"MATHNORM_WORKERS":      true,
	"MATHNORM_INPUT_DIR":    true,
	"MATHNORM_OUTPUT_DIR":   true,
	"MATHNORM_CONTAINER":    true, // read by doctor
}

// loadEnvConfig reads configuration from environment variables.
// Malformed booleans and counts are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("MATHNORM_CONFIG"),
		InputDir:   os.Getenv("MATHNORM_INPUT_DIR"),
		OutputDir:  os.Getenv("MATHNORM_OUTPUT_DIR"),
	}

	if v := os.Getenv("MATHNORM_CONSERVATIVE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Conservative = b
		}
	}

	if workers := os.Getenv("MATHNORM_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// unknownEnvVars returns the unrecognized MATHNORM_* names, sorted.
func unknownEnvVars() []string {
	var names []string
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, "MATHNORM_") {
			continue
		}
		name, _, _ := strings.Cut(env, "=")
		if !knownEnvVars[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// warnUnknownEnvVars logs warnings for unrecognized MATHNORM_* variables.
// Helps catch typos like MATHNORM_WORKER instead of MATHNORM_WORKERS.
func warnUnknownEnvVars(w io.Writer) {
	for _, name := range unknownEnvVars() {
		fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
	}
}

// applyEnvConfig applies environment variable values over the loaded config.
// Flags are merged afterwards, giving: CLI flags > env vars > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Conservative {
		cfg.Normalize.BracketBlocks = config.BracketBlocksStrict
		cfg.Normalize.Strictness = config.StrictnessConservative
	}
	if env.InputDir != "" {
		cfg.Input.DefaultDir = env.InputDir
	}
	if env.OutputDir != "" {
		cfg.Output.DefaultDir = env.OutputDir
		cfg.Output.InPlace = false
	}
}

// resolveConfig loads the config named by the flag, then MATHNORM_CONFIG.
// Without either, a "mathnorm" config in the standard locations is used
// if one exists, and the defaults otherwise.
func resolveConfig(flagName string, env *envConfig) (*config.Config, error) {
	name := flagName
	if name == "" {
		name = env.ConfigPath
	}

	if name == "" {
		cfg, err := config.LoadConfig(config.DefaultName)
		if err == nil {
			return cfg, nil
		}
		if errors.Is(err, config.ErrConfigNotFound) {
			return config.DefaultConfig(), nil
		}
		return nil, fmt.Errorf("loading config: %w", err)
	}

	cfg, err := config.LoadConfig(name)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) && !fileutil.IsFilePath(name) {
			return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
		}
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}
