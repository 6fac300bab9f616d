// SPDX-License-Identifier: MPL-2.0

package tasks

import "strconv"

// allPackages is the package pattern every Go tool is pointed at.
const allPackages = "./..."

// Dep fetches module dependencies.
func Dep(tc *Context) Result {
	return tc.run(Cmd("go", "get", allPackages))
}

// Lint runs golangci-lint with the configured timeout and exclude pattern.
func Lint(tc *Context) Result {
	lint := tc.Settings.Lint
	args := []string{"golangci-lint", "run", allPackages, "--timeout=" + lint.Timeout}
	if lint.Exclude != "" {
		args = append(args, "-e", lint.Exclude)
	}
	return tc.run(Cmd(args...))
}

// Race runs the short test suite with the race detector.
func Race(tc *Context) Result {
	return tc.run(Cmd("go", "test", "-race", "-short", allPackages))
}

// Cyclo reports functions whose cyclomatic complexity exceeds the threshold.
func Cyclo(tc *Context) Result {
	return tc.run(Cmd("gocyclo", "-over", strconv.Itoa(tc.Settings.Cyclo.Over), "."))
}

// Sec runs the gosec scanner, skipping the configured directory glob.
func Sec(tc *Context) Result {
	args := []string{"gosec"}
	if dir := tc.Settings.Sec.ExcludeDir; dir != "" {
		args = append(args, "-exclude-dir", dir)
	}
	return tc.run(Cmd(append(args, allPackages)...))
}
