// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"strings"

	"github.com/vxbase/vxtask/pkg/types"
)

// ErrShellNotFound is returned when no host shell can be located.
var ErrShellNotFound = errors.New("no shell found")

// NativeRuntime executes command lines using the system's default shell
type NativeRuntime struct {
	// Shell overrides the default shell
	Shell string
	// ShellArgs are arguments passed to the shell before the script
	ShellArgs []string

	lookPath func(string) (string, error)
	getenv   func(string) string
}

// NewNativeRuntime creates a new native runtime
func NewNativeRuntime() *NativeRuntime {
	return &NativeRuntime{
		lookPath: exec.LookPath,
		getenv:   os.Getenv,
	}
}

// Name returns the runtime name
func (r *NativeRuntime) Name() string {
	return string(RuntimeTypeNative)
}

// Available returns whether a host shell can be found
func (r *NativeRuntime) Available() bool {
	_, err := r.getShell()
	return err == nil
}

// Validate checks if a command line can be executed
func (r *NativeRuntime) Validate(ctx *ExecutionContext) error {
	if strings.TrimSpace(ctx.Script) == "" {
		return fmt.Errorf("script has no content to execute")
	}
	return nil
}

// Execute runs a command line using the system shell, streaming its output
func (r *NativeRuntime) Execute(ctx *ExecutionContext) *Result {
	out, _ := newStreamingOutput(ctx)
	return r.run(ctx, out, nil)
}

// ExecuteCapture runs a command line and captures its output
func (r *NativeRuntime) ExecuteCapture(ctx *ExecutionContext) *Result {
	out, captured := newCapturingOutput()
	return r.run(ctx, out, captured)
}

func (r *NativeRuntime) run(ctx *ExecutionContext, out *executeOutput, captured *capturedOutput) *Result {
	shell, err := r.getShell()
	if err != nil {
		return NewErrorResult(types.ExitFailure, err)
	}

	args := append(r.getShellArgs(shell), ctx.Script)
	cmd := exec.CommandContext(ctx.goContext(), shell, args...)
	if ctx.WorkDir != "" {
		cmd.Dir = ctx.WorkDir
	}
	cmd.Env = EnvToSlice(buildEnv(ctx))
	cmd.Stdout = out.stdout
	cmd.Stderr = out.stderr
	if captured == nil {
		cmd.Stdin = ctx.IO.Stdin
	}

	return processResult(cmd.Run(), captured)
}

// getShell determines which shell to use
func (r *NativeRuntime) getShell() (string, error) {
	if r.Shell != "" {
		return r.Shell, nil
	}

	lookPath := r.lookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	switch goruntime.GOOS {
	case "windows":
		for _, candidate := range []string{"pwsh", "powershell", "cmd"} {
			if path, err := lookPath(candidate); err == nil {
				return path, nil
			}
		}
	default:
		getenv := r.getenv
		if getenv == nil {
			getenv = os.Getenv
		}
		if shell := getenv("SHELL"); shell != "" {
			return shell, nil
		}
		for _, candidate := range []string{"bash", "sh"} {
			if path, err := lookPath(candidate); err == nil {
				return path, nil
			}
		}
	}

	return "", ErrShellNotFound
}

// getShellArgs returns the arguments to pass to the shell before the script
func (r *NativeRuntime) getShellArgs(shell string) []string {
	if len(r.ShellArgs) > 0 {
		return append([]string(nil), r.ShellArgs...)
	}

	base := strings.TrimSuffix(filepath.Base(shell), ".exe")
	switch base {
	case "cmd":
		return []string{"/C"}
	case "powershell", "pwsh":
		return []string{"-NoProfile", "-Command"}
	default:
		return []string{"-c"}
	}
}
