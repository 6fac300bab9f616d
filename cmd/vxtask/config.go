// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vxbase/vxtask/internal/config"
	"github.com/vxbase/vxtask/internal/issue"
	"github.com/vxbase/vxtask/pkg/types"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `vxtask config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage vxtask configuration",
		Long: `Manage vxtask configuration.

Configuration is read from vxtask.cue in the working directory, or from the
file given with --config. Every key is optional; VXTASK_* environment
variables (for example VXTASK_LINT_TIMEOUT) override file values.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd, app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfigOrReport(cmd, app)
			if err != nil {
				return err
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			workDir, err := app.workDir()
			if err != nil {
				return err
			}
			path := config.ResolvePath(config.LoadOptions{ConfigFilePath: app.flags.configFile, WorkDir: workDir})
			if path == "" {
				path = "(defaults)"
			}
			fmt.Fprintln(app.stdout, path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create vxtask.cue with the default configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(app)
		},
	})

	return cfgCmd
}

// loadConfigOrReport loads configuration and renders load failures.
func loadConfigOrReport(cmd *cobra.Command, app *App) (*config.Config, error) {
	cfg, _, err := app.loadConfig(cmd.Context())
	if err != nil {
		renderError(app.stderr, err, issue.ConfigLoadFailedId, app.flags.verbose)
		cmd.SilenceErrors = true
		return nil, &ExitError{Code: types.ExitFailure, Err: err}
	}
	return cfg, nil
}

func showConfig(cmd *cobra.Command, app *App) error {
	cfg, err := loadConfigOrReport(cmd, app)
	if err != nil {
		return err
	}

	out := app.stdout
	keyStyle := CmdStyle
	valueStyle := SuccessStyle
	line := func(indent, key, value string) {
		fmt.Fprintf(out, "%s%s: %s\n", indent, keyStyle.Render(key), valueStyle.Render(value))
	}

	fmt.Fprintln(out, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(out)

	source := cfg.Source()
	if source == "" {
		source = SubtitleStyle.Render("(using defaults)")
	}
	fmt.Fprintf(out, "%s: %s\n\n", keyStyle.Render("Config file"), source)

	line("", "default_runtime", cfg.DefaultRuntime.String())
	line("", "ci_env", cfg.CIEnv)

	fmt.Fprintf(out, "\n%s:\n", keyStyle.Render("coverage"))
	line("  ", "dir_env", cfg.Coverage.DirEnv)
	line("  ", "default_dir", cfg.Coverage.DefaultDir)
	line("  ", "html", strconv.FormatBool(cfg.Coverage.HTML))

	fmt.Fprintf(out, "\n%s:\n", keyStyle.Render("lint"))
	line("  ", "timeout", cfg.Lint.Timeout)
	line("  ", "exclude", cfg.Lint.Exclude)

	fmt.Fprintf(out, "\n%s:\n", keyStyle.Render("cyclo"))
	line("  ", "over", strconv.Itoa(cfg.Cyclo.Over))

	fmt.Fprintf(out, "\n%s:\n", keyStyle.Render("sec"))
	line("  ", "exclude_dir", cfg.Sec.ExcludeDir)

	fmt.Fprintf(out, "\n%s:\n", keyStyle.Render("release"))
	line("  ", "version_file", cfg.Release.VersionFile)
	line("  ", "remote", cfg.Release.Remote)
	line("  ", "branch", cfg.Release.Branch)

	fmt.Fprintf(out, "\n%s:\n", keyStyle.Render("watch"))
	line("  ", "debounce", cfg.Watch.Debounce)
	line("  ", "patterns", strings.Join(cfg.Watch.Patterns, ", "))
	line("  ", "ignore", strings.Join(cfg.Watch.Ignore, ", "))

	fmt.Fprintf(out, "\n%s:\n", keyStyle.Render("ui"))
	line("  ", "verbose", strconv.FormatBool(cfg.UI.Verbose))

	return nil
}

// initConfig writes the default configuration to <workdir>/vxtask.cue unless
// the file already exists.
func initConfig(app *App) error {
	workDir, err := app.workDir()
	if err != nil {
		return err
	}
	path := filepath.Join(workDir, config.ConfigFileName+"."+config.ConfigFileExt)

	if _, statErr := os.Stat(path); statErr == nil {
		fmt.Fprintf(app.stdout, "%s %s already exists\n", WarningStyle.Render("!"), path)
		return nil
	} else if !errors.Is(statErr, fs.ErrNotExist) {
		return statErr
	}

	if err := os.WriteFile(path, []byte(config.GenerateCUE(config.DefaultConfig())), 0o644); err != nil {
		return issue.WrapWithOperation(err, "write default configuration")
	}
	fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
	return nil
}
