// SPDX-License-Identifier: MPL-2.0

package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vxbase/vxtask/internal/config"
	"github.com/vxbase/vxtask/pkg/types"

	"github.com/charmbracelet/log"
)

var (
	// ErrUnknownTask is returned when a task name is not registered.
	ErrUnknownTask = errors.New("unknown task")
	// ErrDuplicateTask is returned when a task name is registered twice.
	ErrDuplicateTask = errors.New("task already registered")
	// ErrNoRunner is returned when a task is run without a command runner.
	ErrNoRunner = errors.New("no command runner configured")
)

type (
	// Handler performs a task against an execution context.
	Handler func(tc *Context) Result

	// Task is a named unit of work exposed as a CLI subcommand.
	Task struct {
		Name    string
		Short   string
		Handler Handler
	}

	// Context carries everything a handler needs to run commands.
	// Handlers read it but never modify it.
	Context struct {
		// Context is the Go context for cancellation
		Context context.Context
		// WorkDir is the project root; relative paths resolve against it
		WorkDir string
		// Getenv looks up environment variables. Tasks resolve CI and
		// coverage variables through it on every invocation.
		Getenv func(string) string
		Stdout io.Writer
		Stderr io.Writer
		// Settings holds the resolved configuration
		Settings *config.Config
		Runner   Runner
		Logger   *log.Logger
		// DryRun skips filesystem writes; the Runner is expected to skip execution too
		DryRun bool
	}

	// Result is the outcome of a task. The zero value is success.
	Result struct {
		// ExitCode is the process exit status the task maps to
		ExitCode types.ExitCode
		// Messages are user-facing lines explaining a failure
		Messages []string
		// Command is the command line that failed, if any
		Command string
		// Err is an infrastructure or precondition error
		Err error
	}
)

// Success returns true if the task completed without error.
func (r Result) Success() bool {
	return r.ExitCode.IsSuccess() && r.Err == nil
}

// fail builds a failed Result with exit code 1.
func fail(err error, messages ...string) Result {
	return Result{ExitCode: types.ExitFailure, Messages: messages, Err: err}
}

// withDefaults returns a copy of tc with unset fields filled from the process.
func (tc *Context) withDefaults() *Context {
	c := *tc
	if c.Context == nil {
		c.Context = context.Background()
	}
	if c.WorkDir == "" {
		if wd, err := os.Getwd(); err == nil {
			c.WorkDir = wd
		} else {
			c.WorkDir = "."
		}
	}
	if c.Getenv == nil {
		c.Getenv = os.Getenv
	}
	if c.Stdout == nil {
		c.Stdout = io.Discard
	}
	if c.Stderr == nil {
		c.Stderr = io.Discard
	}
	if c.Settings == nil {
		c.Settings = config.DefaultConfig()
	}
	if c.Logger == nil {
		c.Logger = log.New(io.Discard)
	}
	return &c
}

// run executes cmd and converts its exit status into a Result.
func (tc *Context) run(cmd Command) Result {
	code, err := tc.Runner.Run(tc.Context, cmd)
	return commandResult(cmd, code, err)
}

// runAll executes cmds in order and stops at the first failure.
func (tc *Context) runAll(cmds ...Command) Result {
	for _, cmd := range cmds {
		if res := tc.run(cmd); !res.Success() {
			return res
		}
	}
	return Result{}
}

func commandResult(cmd Command, code types.ExitCode, err error) Result {
	if err == nil && code.IsSuccess() {
		return Result{}
	}
	if err != nil && code.IsSuccess() {
		code = types.ExitFailure
	}
	return Result{ExitCode: code, Command: cmd.String(), Err: err}
}

// String describes a failed Result for logs.
func (r Result) String() string {
	switch {
	case r.Success():
		return "ok"
	case r.Command != "":
		return fmt.Sprintf("%s exited with status %d", r.Command, r.ExitCode)
	default:
		return fmt.Sprintf("exit status %d", r.ExitCode)
	}
}
