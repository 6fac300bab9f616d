// SPDX-License-Identifier: MPL-2.0

package tasks

import (
	"bytes"
	"context"
	"testing"

	"github.com/vxbase/vxtask/internal/config"
	"github.com/vxbase/vxtask/pkg/types"
)

type (
	// fakeResponse is what fakeRunner answers for one command line.
	fakeResponse struct {
		out  string
		code types.ExitCode
		err  error
	}

	// fakeRunner records every command and answers from a table keyed by the
	// rendered command line. Unknown commands succeed with no output.
	fakeRunner struct {
		calls     []Command
		captured  []bool
		responses map[string]fakeResponse
		// onRun runs before the response is returned, e.g. to create files
		onRun func(cmd Command)
	}
)

func newFakeRunner() *fakeRunner {
	return &fakeRunner{responses: make(map[string]fakeResponse)}
}

func (f *fakeRunner) respond(cmd string, resp fakeResponse) *fakeRunner {
	f.responses[cmd] = resp
	return f
}

func (f *fakeRunner) Run(_ context.Context, cmd Command) (types.ExitCode, error) {
	resp := f.record(cmd, false)
	return resp.code, resp.err
}

func (f *fakeRunner) Capture(_ context.Context, cmd Command) (string, types.ExitCode, error) {
	resp := f.record(cmd, true)
	return resp.out, resp.code, resp.err
}

func (f *fakeRunner) record(cmd Command, capture bool) fakeResponse {
	f.calls = append(f.calls, cmd)
	f.captured = append(f.captured, capture)
	if f.onRun != nil {
		f.onRun(cmd)
	}
	return f.responses[cmd.String()]
}

// commandLines returns the rendered command lines in call order.
func (f *fakeRunner) commandLines() []string {
	lines := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		lines = append(lines, c.String())
	}
	return lines
}

// newTestContext builds a task context rooted in a temp dir whose
// environment is exactly env.
func newTestContext(t *testing.T, runner Runner, env map[string]string) (*Context, *bytes.Buffer) {
	t.Helper()

	var stdout bytes.Buffer
	tc := &Context{
		Context:  context.Background(),
		WorkDir:  t.TempDir(),
		Getenv:   func(key string) string { return env[key] },
		Stdout:   &stdout,
		Settings: config.DefaultConfig(),
		Runner:   runner,
	}
	return tc.withDefaults(), &stdout
}
