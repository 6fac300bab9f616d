// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vxbase/vxtask/internal/issue"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "vxtask"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "vxtask"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment overrides, e.g. VXTASK_LINT_TIMEOUT.
	EnvPrefix = "VXTASK"

	// maxConfigFileSize bounds how much of a config file is handed to the CUE compiler.
	maxConfigFileSize = 1 << 20
)

//go:embed config_schema.cue
var configSchema string

// ErrConfigTooLarge is returned when a config file exceeds the size limit.
var ErrConfigTooLarge = errors.New("config file too large")

// ResolvePath returns the config file that would be loaded for opts, or ""
// when no file applies and built-in defaults are used.
func ResolvePath(opts LoadOptions) string {
	if opts.ConfigFilePath != "" {
		return opts.ConfigFilePath
	}

	local := filepath.Join(opts.WorkDir, ConfigFileName+"."+ConfigFileExt)
	if fileExists(local) {
		return local
	}
	return ""
}

// loadWithOptions performs option-driven config loading without mutating
// package-level state.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// An explicit --config path must exist; the local file is optional.
	if opts.ConfigFilePath != "" && !fileExists(opts.ConfigFilePath) {
		return nil, issue.NewErrorContext().
			WithOperation("load configuration").
			WithResource(opts.ConfigFilePath).
			WithSuggestion("Verify the file path is correct").
			WithSuggestion("Use 'vxtask config show' to see the default configuration").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
			BuildError()
	}

	path := ResolvePath(opts)
	if path != "" {
		if err := loadCUEIntoViper(v, path); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("Run 'vxtask config dump' for a complete example").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.source = path

	if err := cfg.Validate(); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(path).
			WithSuggestion("Check VXTASK_* environment overrides").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(err).
			BuildError()
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, defaults *Config) {
	v.SetDefault("default_runtime", string(defaults.DefaultRuntime))
	v.SetDefault("ci_env", defaults.CIEnv)
	v.SetDefault("coverage.dir_env", defaults.Coverage.DirEnv)
	v.SetDefault("coverage.default_dir", defaults.Coverage.DefaultDir)
	v.SetDefault("coverage.html", defaults.Coverage.HTML)
	v.SetDefault("lint.timeout", defaults.Lint.Timeout)
	v.SetDefault("lint.exclude", defaults.Lint.Exclude)
	v.SetDefault("cyclo.over", defaults.Cyclo.Over)
	v.SetDefault("sec.exclude_dir", defaults.Sec.ExcludeDir)
	v.SetDefault("release.version_file", defaults.Release.VersionFile)
	v.SetDefault("release.remote", defaults.Release.Remote)
	v.SetDefault("release.branch", defaults.Release.Branch)
	v.SetDefault("watch.debounce", defaults.Watch.Debounce)
	v.SetDefault("watch.patterns", defaults.Watch.Patterns)
	v.SetDefault("watch.ignore", defaults.Watch.Ignore)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config schema,
// and merges its contents into Viper.
//
// The file decodes to map[string]any rather than a struct so that Viper keeps
// its defaults for omitted keys; Concrete(false) because every field is optional.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if len(data) > maxConfigFileSize {
		return fmt.Errorf("%w: %s is %d bytes (limit %d)", ErrConfigTooLarge, path, len(data), maxConfigFileSize)
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return formatCUEError(userValue.Err(), path)
	}

	schema := schemaValue.LookupPath(cue.ParsePath("#Config"))
	unified := schema.Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return formatCUEError(err, path)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return formatCUEError(err, path)
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// vxtask configuration file\n")
	sb.WriteString("// Place it next to go.mod as vxtask.cue; every field is optional.\n\n")

	fmt.Fprintf(&sb, "default_runtime: %q\n", cfg.DefaultRuntime)
	fmt.Fprintf(&sb, "ci_env: %q\n", cfg.CIEnv)

	sb.WriteString("\ncoverage: {\n")
	fmt.Fprintf(&sb, "\tdir_env: %q\n", cfg.Coverage.DirEnv)
	fmt.Fprintf(&sb, "\tdefault_dir: %q\n", cfg.Coverage.DefaultDir)
	fmt.Fprintf(&sb, "\thtml: %v\n", cfg.Coverage.HTML)
	sb.WriteString("}\n")

	sb.WriteString("\nlint: {\n")
	fmt.Fprintf(&sb, "\ttimeout: %q\n", cfg.Lint.Timeout)
	fmt.Fprintf(&sb, "\texclude: %q\n", cfg.Lint.Exclude)
	sb.WriteString("}\n")

	fmt.Fprintf(&sb, "\ncyclo: over: %d\n", cfg.Cyclo.Over)
	fmt.Fprintf(&sb, "sec: exclude_dir: %q\n", cfg.Sec.ExcludeDir)

	sb.WriteString("\nrelease: {\n")
	fmt.Fprintf(&sb, "\tversion_file: %q\n", cfg.Release.VersionFile)
	fmt.Fprintf(&sb, "\tremote: %q\n", cfg.Release.Remote)
	fmt.Fprintf(&sb, "\tbranch: %q\n", cfg.Release.Branch)
	sb.WriteString("}\n")

	sb.WriteString("\nwatch: {\n")
	fmt.Fprintf(&sb, "\tdebounce: %q\n", cfg.Watch.Debounce)
	fmt.Fprintf(&sb, "\tpatterns: %s\n", cueStringList(cfg.Watch.Patterns))
	fmt.Fprintf(&sb, "\tignore: %s\n", cueStringList(cfg.Watch.Ignore))
	sb.WriteString("}\n")

	fmt.Fprintf(&sb, "\nui: verbose: %v\n", cfg.UI.Verbose)

	return sb.String()
}

func cueStringList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = strconv.Quote(item)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
