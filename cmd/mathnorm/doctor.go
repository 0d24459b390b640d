package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/alnah/go-mathnorm/internal/clipboard"
	"github.com/alnah/go-mathnorm/internal/config"
	"github.com/alnah/go-mathnorm/internal/fileutil"
	"github.com/alnah/go-mathnorm/internal/hints"
)

// clipboardBackend is swapped in tests.
var clipboardBackend = clipboard.Backend

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status    string        `json:"status"` // "ready", "warnings", "errors"
	Clipboard clipboardInfo `json:"clipboard"`
	Config    configInfo    `json:"config"`
	Env       envInfo       `json:"environment"`
	Warnings  []string      `json:"warnings,omitempty"`
	Errors    []string      `json:"errors,omitempty"`
}

// clipboardInfo holds clipboard backend detection results.
type clipboardInfo struct {
	Available bool   `json:"available"`
	Backend   string `json:"backend,omitempty"`
}

// configInfo holds config file lookup results.
type configInfo struct {
	Searched []string `json:"searched"`
	Found    string   `json:"found,omitempty"`
	Valid    bool     `json:"valid"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string   `json:"os"`
	Arch          string   `json:"arch"`
	Container     bool     `json:"container"`
	ContainerHint string   `json:"container_hint,omitempty"`
	CI            bool     `json:"ci"`
	ConfigVar     string   `json:"mathnorm_config,omitempty"`
	UnknownVars   []string `json:"unknown_vars,omitempty"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(args []string, env *Environment) int {
	jsonOutput := false
	for _, arg := range args {
		if arg == "--json" {
			jsonOutput = true
		}
	}

	result := runDoctor()

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor() *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:        runtime.GOOS,
			Arch:      runtime.GOARCH,
			ConfigVar: os.Getenv("MATHNORM_CONFIG"),
		},
	}

	checkClipboard(result)
	checkConfig(result)
	checkEnvironment(result)

	// Determine final status
	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkClipboard detects the clipboard helper. A missing one is only a
// warning: files and stdin still work.
func checkClipboard(result *doctorResult) {
	backend := clipboardBackend()
	if backend == "" {
		result.Warnings = append(result.Warnings,
			"No clipboard backend found; the no-argument clipboard mode will fail"+hints.ForClipboard())
		return
	}
	result.Clipboard.Available = true
	result.Clipboard.Backend = backend
}

// checkConfig locates the config LoadConfig would pick and validates it.
func checkConfig(result *doctorResult) {
	name := result.Env.ConfigVar
	if name == "" {
		name = config.DefaultName
	}

	if fileutil.IsFilePath(name) {
		result.Config.Searched = []string{name}
	} else {
		result.Config.Searched = config.SearchPaths(name)
	}

	for _, p := range result.Config.Searched {
		if fileutil.FileExists(p) {
			result.Config.Found = p
			break
		}
	}

	if result.Config.Found == "" {
		if result.Env.ConfigVar != "" {
			result.Errors = append(result.Errors,
				fmt.Sprintf("MATHNORM_CONFIG=%s not found", result.Env.ConfigVar))
		}
		return
	}

	if _, err := config.LoadConfig(result.Config.Found); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Config %s: %v", result.Config.Found, err))
		return
	}
	result.Config.Valid = true
}

// checkEnvironment detects container and CI environments and typos in
// MATHNORM_* variables.
func checkEnvironment(result *doctorResult) {
	result.Env.Container, result.Env.ContainerHint = isContainer()

	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	result.Env.UnknownVars = unknownEnvVars()
	for _, name := range result.Env.UnknownVars {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Unknown environment variable %s (typo?)", name))
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer() (bool, string) {
	// Explicit override (highest priority)
	if os.Getenv("MATHNORM_CONTAINER") == "1" {
		return true, "MATHNORM_CONTAINER=1"
	}
	if hints.IsInContainer() {
		return true, "/.dockerenv"
	}
	// Podman / systemd-nspawn / general container indicator
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "mathnorm doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Clipboard")
	if r.Clipboard.Available {
		fmt.Fprintf(w, "  [OK] Backend: %s\n", r.Clipboard.Backend)
	} else {
		fmt.Fprintln(w, "  [WARN] No backend (use files or stdin)")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Config")
	switch {
	case r.Config.Found == "":
		fmt.Fprintln(w, "  [OK] No config file, using defaults")
	case r.Config.Valid:
		fmt.Fprintf(w, "  [OK] Loaded %s\n", r.Config.Found)
	default:
		fmt.Fprintf(w, "  [ERROR] Invalid %s\n", r.Config.Found)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
