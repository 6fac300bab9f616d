// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/vxbase/vxtask/pkg/types"
)

// Runtime type constants for the available shells.
const (
	RuntimeTypeNative  RuntimeType = "native"
	RuntimeTypeVirtual RuntimeType = "virtual"
)

var (
	// ErrRuntimeNotRegistered is returned when no runtime is registered for a type.
	ErrRuntimeNotRegistered = errors.New("runtime not registered")
	// ErrCaptureUnsupported is returned when a runtime cannot capture output.
	ErrCaptureUnsupported = errors.New("runtime does not support output capture")
)

type (
	// IOContext groups the standard streams of a command.
	IOContext struct {
		Stdout io.Writer
		Stderr io.Writer
		Stdin  io.Reader
	}

	// EnvContext describes the environment handed to a command.
	EnvContext struct {
		// Inherited is the base environment in KEY=VALUE form, usually os.Environ().
		Inherited []string
		// ExtraEnv overrides or extends Inherited.
		ExtraEnv map[string]string
	}

	// ExecutionContext contains all information needed to execute a command line.
	ExecutionContext struct {
		// Context is the Go context for cancellation
		Context context.Context
		// Script is the shell command line to run
		Script string
		// WorkDir is the working directory; empty means the current directory
		WorkDir string
		// SelectedRuntime is the runtime Registry.Execute dispatches to
		SelectedRuntime RuntimeType

		IO  IOContext
		Env EnvContext
	}

	// Result contains the result of a command execution
	Result struct {
		// ExitCode is the exit code of the command
		ExitCode types.ExitCode
		// Error contains any infrastructure error (shell missing, parse failure)
		Error error
		// Output contains captured stdout (if captured)
		Output string
		// ErrOutput contains captured stderr (if captured)
		ErrOutput string
	}

	// Runtime defines the interface for command execution
	Runtime interface {
		// Name returns the runtime name
		Name() string
		// Execute runs a command line in this runtime
		Execute(ctx *ExecutionContext) *Result
		// Available returns whether this runtime is available on the current system
		Available() bool
		// Validate checks if a command line can be executed with this runtime
		Validate(ctx *ExecutionContext) error
	}

	// CapturingRuntime is implemented by runtimes that support capturing output.
	CapturingRuntime interface {
		// ExecuteCapture runs a command line and captures stdout/stderr.
		ExecuteCapture(ctx *ExecutionContext) *Result
	}

	// RuntimeType identifies the type of runtime.
	//
	//nolint:revive // RuntimeType is more descriptive than Type for external callers
	RuntimeType string

	// Registry holds all available runtimes
	Registry struct {
		runtimes map[RuntimeType]Runtime
	}
)

// NewExecutionContext creates an execution context for script with process defaults.
func NewExecutionContext(ctx context.Context, script string) *ExecutionContext {
	if ctx == nil {
		ctx = context.Background()
	}

	return &ExecutionContext{
		Context:         ctx,
		Script:          script,
		SelectedRuntime: RuntimeTypeVirtual,
		IO: IOContext{
			Stdout: os.Stdout,
			Stderr: os.Stderr,
			Stdin:  os.Stdin,
		},
		Env: EnvContext{
			Inherited: os.Environ(),
			ExtraEnv:  make(map[string]string),
		},
	}
}

// Success returns true if the command executed successfully
func (r *Result) Success() bool {
	return r.ExitCode.IsSuccess() && r.Error == nil
}

// String returns the runtime type name.
func (t RuntimeType) String() string { return string(t) }

// Validate returns an error unless t names a known runtime.
func (t RuntimeType) Validate() error {
	switch t {
	case RuntimeTypeNative, RuntimeTypeVirtual:
		return nil
	default:
		return fmt.Errorf("unknown runtime %q (valid: %s, %s)", string(t), RuntimeTypeNative, RuntimeTypeVirtual)
	}
}

// NewRegistry creates a new runtime registry
func NewRegistry() *Registry {
	return &Registry{
		runtimes: make(map[RuntimeType]Runtime),
	}
}

// NewDefaultRegistry creates a registry with the native and virtual runtimes.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(RuntimeTypeNative, NewNativeRuntime())
	r.Register(RuntimeTypeVirtual, NewVirtualRuntime())
	return r
}

// Register adds a runtime to the registry
func (r *Registry) Register(typ RuntimeType, rt Runtime) {
	r.runtimes[typ] = rt
}

// Get returns a runtime by type
func (r *Registry) Get(typ RuntimeType) (Runtime, error) {
	rt, ok := r.runtimes[typ]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrRuntimeNotRegistered, typ)
	}
	return rt, nil
}

// Available returns all available runtimes in name order
func (r *Registry) Available() []RuntimeType {
	var available []RuntimeType
	for _, typ := range slices.Sorted(maps.Keys(r.runtimes)) {
		if r.runtimes[typ].Available() {
			available = append(available, typ)
		}
	}
	return available
}

// Execute runs a command line using the runtime selected in the execution context
func (r *Registry) Execute(ctx *ExecutionContext) *Result {
	rt, err := r.prepare(ctx)
	if err != nil {
		return NewErrorResult(types.ExitFailure, err)
	}
	return rt.Execute(ctx)
}

// ExecuteCapture runs a command line and returns its captured output.
func (r *Registry) ExecuteCapture(ctx *ExecutionContext) *Result {
	rt, err := r.prepare(ctx)
	if err != nil {
		return NewErrorResult(types.ExitFailure, err)
	}

	capturing, ok := rt.(CapturingRuntime)
	if !ok {
		return NewErrorResult(types.ExitFailure, fmt.Errorf("%w: %s", ErrCaptureUnsupported, rt.Name()))
	}
	return capturing.ExecuteCapture(ctx)
}

func (r *Registry) prepare(ctx *ExecutionContext) (Runtime, error) {
	rt, err := r.Get(ctx.SelectedRuntime)
	if err != nil {
		return nil, err
	}

	if !rt.Available() {
		return nil, fmt.Errorf("runtime '%s' is not available on this system", rt.Name())
	}

	if err := rt.Validate(ctx); err != nil {
		return nil, err
	}

	return rt, nil
}

// EnvToSlice converts a map of environment variables to a sorted KEY=VALUE slice
func EnvToSlice(env map[string]string) []string {
	result := make([]string, 0, len(env))
	for _, k := range slices.Sorted(maps.Keys(env)) {
		result = append(result, k+"="+env[k])
	}
	return result
}

// buildEnv merges ExtraEnv over the inherited environment. Later entries win.
func buildEnv(ctx *ExecutionContext) map[string]string {
	env := make(map[string]string, len(ctx.Env.Inherited)+len(ctx.Env.ExtraEnv))
	for _, kv := range ctx.Env.Inherited {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		env[name] = value
	}
	maps.Copy(env, ctx.Env.ExtraEnv)
	return env
}

func (ctx *ExecutionContext) goContext() context.Context {
	if ctx.Context == nil {
		return context.Background()
	}
	return ctx.Context
}
