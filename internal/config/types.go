// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// RuntimeNative runs commands in the host system shell.
	// Defined locally to avoid coupling config to internal/runtime.
	RuntimeNative RuntimeMode = "native"
	// RuntimeVirtual runs commands in the embedded mvdan/sh interpreter.
	RuntimeVirtual RuntimeMode = "virtual"
)

var (
	// ErrInvalidConfigRuntimeMode is returned when a config RuntimeMode value is not recognized.
	ErrInvalidConfigRuntimeMode = errors.New("invalid runtime mode")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// RuntimeMode specifies the execution runtime for task commands.
	RuntimeMode string

	// InvalidConfigError collects every field-level problem found by Config.Validate.
	// It wraps ErrInvalidConfig for errors.Is() compatibility.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the vxtask configuration.
	Config struct {
		// DefaultRuntime selects the runtime used to execute task commands
		DefaultRuntime RuntimeMode `json:"default_runtime" mapstructure:"default_runtime"`
		// CIEnv names the environment variable that marks a CI run
		CIEnv string `json:"ci_env" mapstructure:"ci_env"`
		// Coverage configures the test task's coverage artifacts
		Coverage CoverageConfig `json:"coverage" mapstructure:"coverage"`
		Lint     LintConfig     `json:"lint" mapstructure:"lint"`
		Cyclo    CycloConfig    `json:"cyclo" mapstructure:"cyclo"`
		Sec      SecConfig      `json:"sec" mapstructure:"sec"`
		// Release configures the release task's version file and push target
		Release ReleaseConfig `json:"release" mapstructure:"release"`
		// Watch configures `vxtask watch`
		Watch WatchConfig `json:"watch" mapstructure:"watch"`
		UI    UIConfig    `json:"ui" mapstructure:"ui"`

		source string
	}

	// CoverageConfig locates the coverage output directory.
	CoverageConfig struct {
		// DirEnv is the environment variable holding the directory name
		DirEnv string `json:"dir_env" mapstructure:"dir_env"`
		// DefaultDir is used when DirEnv is unset or empty
		DefaultDir string `json:"default_dir" mapstructure:"default_dir"`
		// HTML enables the HTML coverage report
		HTML bool `json:"html" mapstructure:"html"`
	}

	// LintConfig holds the linter flags.
	LintConfig struct {
		Timeout string `json:"timeout" mapstructure:"timeout"`
		Exclude string `json:"exclude" mapstructure:"exclude"`
	}

	// CycloConfig holds the cyclomatic complexity threshold.
	CycloConfig struct {
		Over int `json:"over" mapstructure:"over"`
	}

	// SecConfig holds the security scanner flags.
	SecConfig struct {
		ExcludeDir string `json:"exclude_dir" mapstructure:"exclude_dir"`
	}

	// ReleaseConfig describes where the version lives and where releases are pushed.
	ReleaseConfig struct {
		VersionFile string `json:"version_file" mapstructure:"version_file"`
		Remote      string `json:"remote" mapstructure:"remote"`
		Branch      string `json:"branch" mapstructure:"branch"`
	}

	// WatchConfig selects the files whose changes re-run a watched task.
	WatchConfig struct {
		// Debounce is the quiet period after the last change before the task re-runs
		Debounce string `json:"debounce" mapstructure:"debounce"`
		// Patterns are doublestar globs relative to the work directory
		Patterns []string `json:"patterns" mapstructure:"patterns"`
		// Ignore are extra doublestar globs that never trigger a run
		Ignore []string `json:"ignore" mapstructure:"ignore"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// Verbose enables debug logging
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// String returns the string representation of the RuntimeMode.
func (m RuntimeMode) String() string { return string(m) }

// Validate returns an error if the RuntimeMode is not one of the defined modes.
func (m RuntimeMode) Validate() error {
	switch m {
	case RuntimeNative, RuntimeVirtual:
		return nil
	default:
		return fmt.Errorf("%w: %q (valid: %s, %s)", ErrInvalidConfigRuntimeMode, string(m), RuntimeNative, RuntimeVirtual)
	}
}

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, err := range e.FieldErrors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig so callers can use errors.Is for programmatic detection.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// Source returns the file the configuration was loaded from, or "" for built-in defaults.
func (c *Config) Source() string { return c.source }

// Validate checks the invariants the CUE schema cannot see, such as values
// overridden from the environment after schema validation.
func (c *Config) Validate() error {
	var errs []error
	if err := c.DefaultRuntime.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("default_runtime: %w", err))
	}
	if strings.TrimSpace(c.Coverage.DefaultDir) == "" {
		errs = append(errs, errors.New("coverage.default_dir: must not be empty"))
	}
	if _, err := time.ParseDuration(c.Lint.Timeout); err != nil {
		errs = append(errs, fmt.Errorf("lint.timeout: %w", err))
	}
	if c.Cyclo.Over < 1 {
		errs = append(errs, fmt.Errorf("cyclo.over: must be at least 1, got %d", c.Cyclo.Over))
	}
	if d, err := time.ParseDuration(c.Watch.Debounce); err != nil {
		errs = append(errs, fmt.Errorf("watch.debounce: %w", err))
	} else if d <= 0 {
		errs = append(errs, fmt.Errorf("watch.debounce: must be positive, got %s", d))
	}
	if strings.TrimSpace(c.Release.VersionFile) == "" {
		errs = append(errs, errors.New("release.version_file: must not be empty"))
	}
	if strings.TrimSpace(c.Release.Remote) == "" || strings.TrimSpace(c.Release.Branch) == "" {
		errs = append(errs, errors.New("release: remote and branch must not be empty"))
	}

	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DefaultRuntime: RuntimeVirtual,
		CIEnv:          "CI",
		Coverage: CoverageConfig{
			DirEnv:     "CI_COMMIT_REF_SLUG",
			DefaultDir: "coverage",
			HTML:       true,
		},
		Lint: LintConfig{
			Timeout: "5m0s",
			Exclude: `Error return value of .(rClient\.)`,
		},
		Cyclo: CycloConfig{Over: 10},
		Sec:   SecConfig{ExcludeDir: "examples/*"},
		Release: ReleaseConfig{
			VersionFile: ".bumpversion.cfg",
			Remote:      "vx",
			Branch:      "master",
		},
		Watch: WatchConfig{
			Debounce: "500ms",
			Patterns: []string{"**/*.go", "go.mod", "go.sum"},
			Ignore:   []string{"vendor/**"},
		},
	}
}
