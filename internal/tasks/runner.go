// SPDX-License-Identifier: MPL-2.0

package tasks

import (
	"context"
	"fmt"
	"io"

	"github.com/vxbase/vxtask/internal/runtime"
	"github.com/vxbase/vxtask/pkg/types"

	"github.com/charmbracelet/log"
)

type (
	// Runner executes commands on behalf of task handlers.
	Runner interface {
		// Run executes cmd, streaming its output, and returns its exit code.
		Run(ctx context.Context, cmd Command) (types.ExitCode, error)
		// Capture executes cmd and returns its standard output.
		Capture(ctx context.Context, cmd Command) (string, types.ExitCode, error)
	}

	// ShellRunner renders commands to shell command lines and executes them
	// through a runtime registry.
	ShellRunner struct {
		Runtimes *runtime.Registry
		// Runtime selects the runtime commands are dispatched to
		Runtime runtime.RuntimeType
		WorkDir string
		// Env overrides or extends the inherited process environment
		Env    map[string]string
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
		Logger *log.Logger
		// Echo prints each command line before it runs
		Echo bool
		// DryRun prints each command line instead of running it
		DryRun bool
		// EchoStyle decorates echoed command lines; nil prints them plain
		EchoStyle func(string) string
	}
)

// Run executes cmd and streams its output.
func (r *ShellRunner) Run(ctx context.Context, cmd Command) (types.ExitCode, error) {
	if r.announce(cmd) {
		return types.ExitSuccess, nil
	}

	res := r.Runtimes.Execute(r.executionContext(ctx, cmd))
	r.logResult(cmd, res)
	return res.ExitCode, res.Error
}

// Capture executes cmd and returns its standard output. Standard error is
// forwarded to the runner's Stderr once the command finishes.
func (r *ShellRunner) Capture(ctx context.Context, cmd Command) (string, types.ExitCode, error) {
	if r.announce(cmd) {
		return "", types.ExitSuccess, nil
	}

	res := r.Runtimes.ExecuteCapture(r.executionContext(ctx, cmd))
	if res.ErrOutput != "" && r.Stderr != nil {
		_, _ = io.WriteString(r.Stderr, res.ErrOutput)
	}
	r.logResult(cmd, res)
	return res.Output, res.ExitCode, res.Error
}

// announce echoes cmd when requested and reports whether execution should be skipped.
func (r *ShellRunner) announce(cmd Command) (skip bool) {
	line := cmd.String()
	r.logger().Debug("running", "cmd", line, "runtime", r.Runtime)

	if r.DryRun {
		r.echo("[dry-run] " + line)
		return true
	}
	if r.Echo {
		r.echo(line)
	}
	return false
}

func (r *ShellRunner) echo(line string) {
	if r.Stdout == nil {
		return
	}
	if r.EchoStyle != nil {
		line = r.EchoStyle(line)
	}
	fmt.Fprintln(r.Stdout, line)
}

func (r *ShellRunner) executionContext(ctx context.Context, cmd Command) *runtime.ExecutionContext {
	ec := runtime.NewExecutionContext(ctx, cmd.String())
	ec.WorkDir = r.WorkDir
	ec.SelectedRuntime = r.Runtime
	if ec.SelectedRuntime == "" {
		ec.SelectedRuntime = runtime.RuntimeTypeVirtual
	}
	if r.Stdout != nil {
		ec.IO.Stdout = r.Stdout
	}
	if r.Stderr != nil {
		ec.IO.Stderr = r.Stderr
	}
	if r.Stdin != nil {
		ec.IO.Stdin = r.Stdin
	}
	for k, v := range r.Env {
		ec.Env.ExtraEnv[k] = v
	}
	return ec
}

func (r *ShellRunner) logResult(cmd Command, res *runtime.Result) {
	switch {
	case res.Error != nil:
		r.logger().Debug("command error", "cmd", cmd.Tool(), "err", res.Error)
	case !res.ExitCode.IsSuccess():
		r.logger().Debug("command exited", "cmd", cmd.Tool(), "code", int(res.ExitCode))
	}
}

func (r *ShellRunner) logger() *log.Logger {
	if r.Logger == nil {
		return log.Default()
	}
	return r.Logger
}
