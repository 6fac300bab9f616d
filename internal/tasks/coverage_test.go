// SPDX-License-Identifier: MPL-2.0

package tasks

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/vxbase/vxtask/internal/issue"
	"github.com/vxbase/vxtask/pkg/types"
)

// simulateCoverageTools makes the fake runner produce the files the real
// tools would write into dir.
func simulateCoverageTools(t *testing.T, runner *fakeRunner, dir string) {
	t.Helper()

	write := func(name string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("mode: count\n"), 0o644); err != nil {
			t.Errorf("failed to write %s: %v", name, err)
		}
	}
	runner.onRun = func(cmd Command) {
		switch {
		case slices.Contains(cmd.Args, "-covermode=count"):
			write("coverage.cov")
			write("pkg.cov")
		case cmd.Tool() == "gocover-cobertura":
			write("coverage.xml")
		case slices.Contains(cmd.Args, "-o"):
			write("index.html")
		}
	}
}

func TestTest_DefaultDirectory(t *testing.T) {
	t.Parallel()

	runner := newFakeRunner()
	tc, _ := newTestContext(t, runner, nil)
	dir := filepath.Join(tc.WorkDir, "coverage")
	simulateCoverageTools(t, runner, dir)

	res := Test(tc)
	if !res.Success() {
		t.Fatalf("Test() = %v, err %v", res, res.Err)
	}

	want := []string{
		"go test -covermode=count -coverprofile=coverage/coverage.cov ./...",
		"go tool cover -func=coverage/coverage.cov",
		"gocover-cobertura < coverage/coverage.cov > coverage/coverage.xml",
		"go tool cover -html=coverage/coverage.cov -o coverage/index.html",
	}
	if got := runner.commandLines(); !slices.Equal(got, want) {
		t.Errorf("commands =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("coverage dir missing: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	slices.Sort(names)
	if !slices.Equal(names, []string{"coverage.xml", "index.html"}) {
		t.Errorf("coverage dir contains %v, want only the reports", names)
	}
}

func TestTest_DirectoryFromEnvironment(t *testing.T) {
	t.Parallel()

	runner := newFakeRunner()
	tc, _ := newTestContext(t, runner, map[string]string{"CI_COMMIT_REF_SLUG": "feature-x"})
	tc.Settings.Coverage.HTML = false

	res := Test(tc)
	if !res.Success() {
		t.Fatalf("Test() failed: %v", res)
	}

	if _, err := os.Stat(filepath.Join(tc.WorkDir, "feature-x")); err != nil {
		t.Errorf("coverage dir from CI_COMMIT_REF_SLUG not created: %v", err)
	}
	if len(runner.calls) != 3 {
		t.Errorf("HTML disabled: expected 3 commands, got %q", runner.commandLines())
	}
	if got := runner.calls[0].String(); !strings.Contains(got, "-coverprofile=feature-x/coverage.cov") {
		t.Errorf("first command = %q, want profile under feature-x", got)
	}
}

func TestTest_FailureAbortsRemainingSteps(t *testing.T) {
	t.Parallel()

	runner := newFakeRunner()
	runner.respond("go tool cover -func=coverage/coverage.cov", fakeResponse{code: 2})
	tc, _ := newTestContext(t, runner, nil)
	dir := filepath.Join(tc.WorkDir, "coverage")
	simulateCoverageTools(t, runner, dir)

	res := Test(tc)
	if res.ExitCode != 2 {
		t.Errorf("exit code = %d, want 2", res.ExitCode)
	}
	if len(runner.calls) != 2 {
		t.Errorf("expected to stop after the failing command, ran %q", runner.commandLines())
	}
	if _, err := os.Stat(filepath.Join(dir, "coverage.cov")); err != nil {
		t.Error("profiles should be left in place when the task fails")
	}
}

func TestResolveCoverageDir_Idempotent(t *testing.T) {
	t.Parallel()

	tc, _ := newTestContext(t, newFakeRunner(), map[string]string{"CI_COMMIT_REF_SLUG": "nested/slug"})

	first, err := ResolveCoverageDir(tc)
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	marker := filepath.Join(first.Path, "coverage.xml")
	if err := os.WriteFile(marker, []byte("<coverage/>"), 0o644); err != nil {
		t.Fatal(err)
	}

	second, err := ResolveCoverageDir(tc)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if first != second {
		t.Errorf("resolutions differ: %+v vs %+v", first, second)
	}
	if _, err := os.Stat(marker); err != nil {
		t.Error("resolving again should not touch existing contents")
	}
	if first.File("coverage.cov") != "nested/slug/coverage.cov" {
		t.Errorf("File() = %q", first.File("coverage.cov"))
	}
}

func TestResolveCoverageDir_AbsolutePath(t *testing.T) {
	t.Parallel()

	abs := filepath.Join(t.TempDir(), "reports")
	tc, _ := newTestContext(t, newFakeRunner(), map[string]string{"CI_COMMIT_REF_SLUG": abs})

	dir, err := ResolveCoverageDir(tc)
	if err != nil {
		t.Fatal(err)
	}
	if dir.Path != abs || dir.File("coverage.cov") != filepath.Join(abs, "coverage.cov") {
		t.Errorf("absolute dir not preserved: %+v", dir)
	}
}

func TestTest_CoverageDirCreationFails(t *testing.T) {
	t.Parallel()

	runner := newFakeRunner()
	tc, _ := newTestContext(t, runner, nil)
	// A regular file where the directory should go.
	if err := os.WriteFile(filepath.Join(tc.WorkDir, "coverage"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	res := Test(tc)
	if res.ExitCode != types.ExitFailure {
		t.Errorf("exit code = %d, want 1", res.ExitCode)
	}
	var actionable *issue.ActionableError
	if !errors.As(res.Err, &actionable) || actionable.Issue != issue.CoverageDirFailedId {
		t.Errorf("Err = %v, want actionable coverage dir error", res.Err)
	}
	if len(runner.calls) != 0 {
		t.Errorf("no tool should run without a coverage dir, ran %q", runner.commandLines())
	}
}

func TestTest_DryRunTouchesNothing(t *testing.T) {
	t.Parallel()

	runner := newFakeRunner()
	tc, _ := newTestContext(t, runner, nil)
	tc.DryRun = true

	if res := Test(tc); !res.Success() {
		t.Fatalf("Test() dry run failed: %v", res)
	}
	if _, err := os.Stat(filepath.Join(tc.WorkDir, "coverage")); !os.IsNotExist(err) {
		t.Errorf("dry run should not create the coverage dir, stat err = %v", err)
	}
	if len(runner.calls) != 4 {
		t.Errorf("dry run should still hand every command to the runner, got %d", len(runner.calls))
	}
}
