// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/vxbase/vxtask/internal/config"
	"github.com/vxbase/vxtask/internal/issue"
	"github.com/vxbase/vxtask/internal/runtime"
	"github.com/vxbase/vxtask/internal/tasks"
	"github.com/vxbase/vxtask/pkg/types"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// exitCommandNotFound is the status POSIX shells report for a missing program.
const exitCommandNotFound types.ExitCode = 127

// newTaskCommand exposes one registered task as `vxtask <name>`.
func newTaskCommand(app *App, task tasks.Task) *cobra.Command {
	return &cobra.Command{
		Use:   task.Name,
		Short: task.Short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTask(cmd, app, task.Name)
		},
	}
}

// newRunCommand creates `vxtask run <task>` for callers that pick the task by name.
func newRunCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "run <task>",
		Short: "Run a task by name",
		Args:  cobra.ExactArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return taskNames(app.Tasks), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTask(cmd, app, args[0])
		},
	}
}

// taskSession is a task resolved against the loaded configuration and ready to run.
type taskSession struct {
	name    string
	cfg     *config.Config
	workDir string
	logger  *log.Logger
	runner  *tasks.ShellRunner
}

// runTask runs one task and maps its Result to an ExitError.
func runTask(cmd *cobra.Command, app *App, name string) error {
	s, err := prepareTask(cmd, app, name)
	if err != nil {
		return err
	}

	res := s.run(cmd.Context(), app)
	if res.Success() {
		return nil
	}

	reportResult(app, name, res)
	cmd.SilenceErrors = true
	return &ExitError{Code: res.ExitCode, Err: res.Err}
}

// prepareTask checks the task name, loads configuration and builds the runner.
// Failures are rendered and returned as an ExitError.
func prepareTask(cmd *cobra.Command, app *App, name string) (*taskSession, error) {
	if _, err := app.Tasks.Lookup(name); err != nil {
		renderError(app.stderr, err, issue.UnknownTaskId, app.flags.verbose)
		cmd.SilenceErrors = true
		return nil, &ExitError{Code: types.ExitFailure, Err: err}
	}

	cfg, workDir, err := app.loadConfig(cmd.Context())
	if err != nil {
		renderError(app.stderr, err, issue.ConfigLoadFailedId, app.flags.verbose)
		cmd.SilenceErrors = true
		return nil, &ExitError{Code: types.ExitFailure, Err: err}
	}

	rt, err := selectRuntime(app.flags.runtime, cfg)
	if err != nil {
		return nil, &ExitError{Code: types.ExitFailure, Err: err}
	}

	logger := app.newLogger(cfg.UI.Verbose)
	return &taskSession{
		name:    name,
		cfg:     cfg,
		workDir: workDir,
		logger:  logger,
		runner: &tasks.ShellRunner{
			Runtimes:  app.Runtimes,
			Runtime:   rt,
			WorkDir:   workDir,
			Stdin:     app.stdin,
			Stdout:    app.stdout,
			Stderr:    app.stderr,
			Logger:    logger,
			Echo:      app.flags.echo,
			DryRun:    app.flags.dryRun,
			EchoStyle: func(s string) string { return CmdStyle.Render(s) },
		},
	}, nil
}

func (s *taskSession) run(ctx context.Context, app *App) tasks.Result {
	return app.Tasks.Run(&tasks.Context{
		Context:  ctx,
		WorkDir:  s.workDir,
		Getenv:   app.getenv,
		Stdout:   app.stdout,
		Stderr:   app.stderr,
		Settings: s.cfg,
		Runner:   s.runner,
		Logger:   s.logger,
		DryRun:   app.flags.dryRun,
	}, s.name)
}

// selectRuntime resolves the --runtime flag, falling back to the configured default.
func selectRuntime(flag string, cfg *config.Config) (runtime.RuntimeType, error) {
	mode := cfg.DefaultRuntime
	if flag != "" {
		mode = config.RuntimeMode(flag)
	}
	if err := mode.Validate(); err != nil {
		return "", fmt.Errorf("--runtime: %w", err)
	}
	return runtime.RuntimeType(mode), nil
}

// reportResult prints a failed task's messages and, for well-known failures,
// the matching issue page.
func reportResult(app *App, name string, res tasks.Result) {
	for _, msg := range res.Messages {
		fmt.Fprintln(app.stdout, msg)
	}

	switch {
	case errors.Is(res.Err, runtime.ErrShellNotFound):
		renderError(app.stderr, res.Err, issue.ShellNotFoundId, app.flags.verbose)
	case res.Err != nil:
		renderError(app.stderr, res.Err, 0, app.flags.verbose)
	case res.ExitCode == exitCommandNotFound:
		fmt.Fprintf(app.stderr, "%s %s: %s\n", ErrorStyle.Render("✗"), CmdStyle.Render(name), res.String())
		renderIssue(app.stderr, issue.ToolNotFoundId)
	case len(res.Messages) > 0 && name == tasks.TaskFmt && app.flags.verbose:
		renderIssue(app.stderr, issue.FormatViolationId)
	case len(res.Messages) == 0:
		fmt.Fprintf(app.stderr, "%s %s: %s\n", ErrorStyle.Render("✗"), CmdStyle.Render(name), res.String())
	}
}
