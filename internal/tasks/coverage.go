// SPDX-License-Identifier: MPL-2.0

package tasks

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/vxbase/vxtask/internal/issue"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	coverageProfile = "coverage.cov"
	coverageXML     = "coverage.xml"
	coverageHTML    = "index.html"
	// intermediatePattern matches the profiles removed once reports are written.
	intermediatePattern = "*.cov"
)

// CoverageDir locates the coverage output directory.
type CoverageDir struct {
	// Name is the directory as passed to tools, relative to the work dir when
	// not absolute
	Name string
	// Path is the absolute directory on disk
	Path string
}

// File returns the tool-facing path of a file inside the directory.
func (d CoverageDir) File(name string) string {
	if filepath.IsAbs(d.Name) {
		return filepath.Join(d.Name, name)
	}
	return path.Join(filepath.ToSlash(d.Name), name)
}

// ResolveCoverageDir names the coverage directory from the configured
// environment variable, falling back to the configured default, and creates
// it when missing. Calling it again with the same environment yields the same
// directory and leaves the filesystem unchanged.
func ResolveCoverageDir(tc *Context) (CoverageDir, error) {
	cov := tc.Settings.Coverage

	name := tc.Getenv(cov.DirEnv)
	if name == "" {
		name = cov.DefaultDir
	}

	dir := CoverageDir{Name: name, Path: name}
	if !filepath.IsAbs(name) {
		dir.Path = filepath.Join(tc.WorkDir, name)
	}

	if tc.DryRun {
		return dir, nil
	}

	if err := os.MkdirAll(dir.Path, 0o755); err != nil {
		return dir, issue.NewErrorContext().
			WithOperation("create coverage directory").
			WithResource(dir.Path).
			WithSuggestion("Check that the parent directory is writable").
			WithSuggestion(fmt.Sprintf("Set %s to a different directory name", cov.DirEnv)).
			WithIssue(issue.CoverageDirFailedId).
			Wrap(err).
			BuildError()
	}
	return dir, nil
}

// Test runs the test suite with coverage, writes the function summary, the
// Cobertura XML report and optionally the HTML report, then removes the
// intermediate profiles.
func Test(tc *Context) Result {
	dir, err := ResolveCoverageDir(tc)
	if err != nil {
		return fail(err)
	}

	profile := dir.File(coverageProfile)
	cmds := []Command{
		Cmd("go", "test", "-covermode=count", "-coverprofile="+profile, allPackages),
		Cmd("go", "tool", "cover", "-func="+profile),
		Cmd("gocover-cobertura").ReadFrom(profile).WriteTo(dir.File(coverageXML)),
	}
	if tc.Settings.Coverage.HTML {
		cmds = append(cmds, Cmd("go", "tool", "cover", "-html="+profile, "-o", dir.File(coverageHTML)))
	}

	if res := tc.runAll(cmds...); !res.Success() {
		return res
	}

	if tc.DryRun {
		return Result{}
	}
	if err := removeIntermediate(dir.Path); err != nil {
		return fail(fmt.Errorf("failed to remove coverage profiles: %w", err))
	}
	tc.Logger.Debug("coverage reports written", "dir", dir.Path)
	return Result{}
}

// removeIntermediate deletes the *.cov files directly inside dir.
func removeIntermediate(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var errs []error
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if matched, matchErr := doublestar.Match(intermediatePattern, entry.Name()); matchErr != nil || !matched {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
