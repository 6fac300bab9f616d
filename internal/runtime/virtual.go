// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/vxbase/vxtask/pkg/types"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// VirtualRuntime executes command lines with the embedded mvdan/sh interpreter.
// Redirections, globs and pipelines behave the same on every host OS; external
// programs are still resolved from PATH.
type VirtualRuntime struct{}

// NewVirtualRuntime creates a new virtual runtime
func NewVirtualRuntime() *VirtualRuntime {
	return &VirtualRuntime{}
}

// Name returns the runtime name
func (r *VirtualRuntime) Name() string {
	return string(RuntimeTypeVirtual)
}

// Available returns true; the interpreter is built in.
func (r *VirtualRuntime) Available() bool {
	return true
}

// Validate checks that the command line is non-empty and parses
func (r *VirtualRuntime) Validate(ctx *ExecutionContext) error {
	if strings.TrimSpace(ctx.Script) == "" {
		return fmt.Errorf("script has no content to execute")
	}
	if _, err := parseScript(ctx.Script); err != nil {
		return fmt.Errorf("script syntax error: %w", err)
	}
	return nil
}

// Execute runs a command line, streaming its output
func (r *VirtualRuntime) Execute(ctx *ExecutionContext) *Result {
	out, _ := newStreamingOutput(ctx)
	return r.run(ctx, out, nil)
}

// ExecuteCapture runs a command line and captures its output
func (r *VirtualRuntime) ExecuteCapture(ctx *ExecutionContext) *Result {
	out, captured := newCapturingOutput()
	return r.run(ctx, out, captured)
}

func (r *VirtualRuntime) run(ctx *ExecutionContext, out *executeOutput, captured *capturedOutput) *Result {
	prog, err := parseScript(ctx.Script)
	if err != nil {
		return NewErrorResult(types.ExitFailure, fmt.Errorf("failed to parse script: %w", err))
	}

	workDir := ctx.WorkDir
	if workDir == "" {
		if workDir, err = os.Getwd(); err != nil {
			return NewErrorResult(types.ExitFailure, fmt.Errorf("failed to determine working directory: %w", err))
		}
	}

	var stdin = ctx.IO.Stdin
	if captured != nil {
		stdin = nil
	}

	runner, err := interp.New(
		interp.Dir(workDir),
		interp.Env(expand.ListEnviron(EnvToSlice(buildEnv(ctx))...)),
		interp.StdIO(stdin, out.stdout, out.stderr),
	)
	if err != nil {
		return NewErrorResult(types.ExitFailure, fmt.Errorf("failed to create interpreter: %w", err))
	}

	result := &Result{}
	if err := runner.Run(ctx.goContext(), prog); err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			result.ExitCode = types.ExitCode(exitStatus)
		} else {
			result.ExitCode = types.ExitFailure
			result.Error = fmt.Errorf("script execution failed: %w", err)
		}
	}

	if captured != nil {
		result.Output = captured.stdout.String()
		result.ErrOutput = captured.stderr.String()
	}

	return result
}

func parseScript(script string) (*syntax.File, error) {
	return syntax.NewParser().Parse(strings.NewReader(script), "vxtask")
}
