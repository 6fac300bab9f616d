// SPDX-License-Identifier: MPL-2.0

// Package tasks implements the vxtask task dispatcher.
//
// Each task is a named handler that runs a short sequence of external
// toolchain commands (go, golangci-lint, gocyclo, gosec, gofmt, goimports,
// gocover-cobertura, git) through a Runner and turns their exit codes and
// output into a Result. Handlers never exit the process; the CLI maps a
// Result to the process exit status.
package tasks
