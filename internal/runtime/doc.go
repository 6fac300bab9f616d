// SPDX-License-Identifier: MPL-2.0

// Package runtime runs shell command lines for vxtask tasks.
//
// Two runtime implementations are available:
//   - native: executes command lines with the host shell (bash/sh/PowerShell)
//   - virtual: executes command lines with an embedded shell interpreter (mvdan/sh)
//
// All runtimes implement the Runtime interface with Name(), Execute(), Available()
// and Validate(). Both also implement CapturingRuntime so callers can inspect a
// tool's output (the fmt task decides pass/fail from what gofmt prints).
//
// ExecutionContext carries the command line plus its I/O streams (IOContext),
// environment (EnvContext) and working directory. Results report the process
// exit code separately from infrastructure errors, so a tool exiting 2 yields
// Result{ExitCode: 2, Error: nil}.
package runtime
