// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for vxtask.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/vxbase/vxtask/internal/runtime"
	"github.com/vxbase/vxtask/internal/tasks"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the vxtask command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vxtask",
		Short: "Developer task runner for Go projects",
		Long: TitleStyle.Render("vxtask") + SubtitleStyle.Render(" - Developer task runner for Go projects") + `

vxtask wraps the Go toolchain, linters, coverage tools and git behind a
fixed set of named tasks. Each task runs one or more external commands
and fails with the tool's own exit status.

` + SubtitleStyle.Render("Examples:") + `
  vxtask list               List all tasks
  vxtask test               Run tests and write coverage reports
  vxtask fmt -e             Check formatting, echoing each command
  vxtask --dry-run release  Show the git pushes without running them
  vxtask config show        Show the effective configuration`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.flags.configFile, "config", "", "config file (default is ./vxtask.cue)")
	flags.StringVarP(&app.flags.workDir, "workdir", "C", "", "run tasks in this directory")
	flags.StringVar(&app.flags.runtime, "runtime", "", fmt.Sprintf("command runtime: %s or %s (default from config)", runtime.RuntimeTypeVirtual, runtime.RuntimeTypeNative))
	flags.BoolVar(&app.flags.dryRun, "dry-run", false, "print commands instead of running them")
	flags.BoolVarP(&app.flags.echo, "echo", "e", false, "print each command before running it")
	flags.BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.SetIn(app.stdin)
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	for _, task := range app.Tasks.List() {
		rootCmd.AddCommand(newTaskCommand(app, task))
	}
	rootCmd.AddCommand(newRunCommand(app))
	rootCmd.AddCommand(newWatchCommand(app))
	rootCmd.AddCommand(newListCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute builds the command tree and runs it. This is called by main.main().
func Execute() {
	rootCmd := NewRootCommand(NewApp(Dependencies{}))

	// fang overrides rootCmd.Version, so the version is passed as an option.
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code.Normalize()))
		}
		os.Exit(1)
	}
}

// taskNames returns the registered task names for shell completion.
func taskNames(reg *tasks.Registry) []string {
	list := reg.List()
	names := make([]string, 0, len(list))
	for _, t := range list {
		names = append(names, t.Name)
	}
	return names
}
