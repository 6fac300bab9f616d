// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"bytes"
	"errors"
	"io"
	"os/exec"

	"github.com/vxbase/vxtask/pkg/types"
)

type (
	// executeOutput configures where command output is directed during execution.
	executeOutput struct {
		stdout io.Writer
		stderr io.Writer
	}

	// capturedOutput holds the captured stdout and stderr buffers when capture mode is used.
	capturedOutput struct {
		stdout bytes.Buffer
		stderr bytes.Buffer
	}
)

// NewErrorResult creates a Result with the given exit code and error.
func NewErrorResult(code types.ExitCode, err error) *Result {
	return &Result{ExitCode: code, Error: err}
}

// newStreamingOutput streams to the execution context writers.
func newStreamingOutput(ctx *ExecutionContext) (*executeOutput, *capturedOutput) {
	return &executeOutput{stdout: ctx.IO.Stdout, stderr: ctx.IO.Stderr}, nil
}

// newCapturingOutput captures to internal buffers.
func newCapturingOutput() (*executeOutput, *capturedOutput) {
	captured := &capturedOutput{}
	return &executeOutput{
		stdout: &captured.stdout,
		stderr: &captured.stderr,
	}, captured
}

// processResult maps an os/exec error to a Result, attaching captured output.
func processResult(err error, captured *capturedOutput) *Result {
	result := &Result{}
	if captured != nil {
		result.Output = captured.stdout.String()
		result.ErrOutput = captured.stderr.String()
	}

	if err == nil {
		return result
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := types.ExitCode(exitErr.ExitCode())
		if validateErr := code.Validate(); validateErr != nil {
			// -1: the process was killed by a signal
			result.ExitCode = types.ExitFailure
			result.Error = err
			return result
		}
		result.ExitCode = code
		return result
	}

	result.ExitCode = types.ExitFailure
	result.Error = err
	return result
}
