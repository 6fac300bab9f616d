// SPDX-License-Identifier: MPL-2.0

package tasks

import (
	"io"
	"strings"

	"github.com/vxbase/vxtask/pkg/types"
)

// Remediation lines printed when a formatting check finds violations.
const (
	GofmtViolationMessage     = "The code have format issues (see the list above this output), please run  'gofmt -d .' to list the issues"
	GoimportsViolationMessage = "Failed the imports check (see the list above this output), use 'goimports -d .' to check the diff"
	PushHintMessage           = "Please execute 'vxtask fmt -e' before pushing"
)

// Fmt lists files that gofmt would change, then files goimports would change.
// Any output, even blank lines, counts as a report. The first check reporting
// anything fails the task; the remaining check is not run.
func Fmt(tc *Context) Result {
	checks := []struct {
		cmd     Command
		message string
	}{
		{Cmd("gofmt", "-l", "."), GofmtViolationMessage},
		{Cmd("goimports", "-l", "."), GoimportsViolationMessage},
	}

	for _, check := range checks {
		out, code, err := tc.Runner.Capture(tc.Context, check.cmd)
		if res := commandResult(check.cmd, code, err); !res.Success() {
			return res
		}
		if out == "" {
			continue
		}

		_, _ = io.WriteString(tc.Stdout, out)
		if !strings.HasSuffix(out, "\n") {
			_, _ = io.WriteString(tc.Stdout, "\n")
		}
		return Result{
			ExitCode: types.ExitFailure,
			Messages: []string{check.message, PushHintMessage},
			Command:  check.cmd.String(),
		}
	}

	return Result{}
}
