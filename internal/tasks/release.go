// SPDX-License-Identifier: MPL-2.0

package tasks

import (
	"path/filepath"
	"strconv"

	"github.com/vxbase/vxtask/internal/issue"
	"github.com/vxbase/vxtask/internal/version"
)

// IsCI reports whether the configured CI variable is set. Any non-empty value
// counts unless it parses as boolean false ("false", "0").
func IsCI(tc *Context) bool {
	value := tc.Getenv(tc.Settings.CIEnv)
	if value == "" {
		return false
	}
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	return true
}

// Release pushes the release branch and the version tag to the release
// remote. It does nothing in CI.
func Release(tc *Context) Result {
	rel := tc.Settings.Release

	if IsCI(tc) {
		tc.Logger.Info("skipping release in CI", "env", tc.Settings.CIEnv)
		return Result{}
	}

	versionPath := rel.VersionFile
	if !filepath.IsAbs(versionPath) {
		versionPath = filepath.Join(tc.WorkDir, versionPath)
	}

	readFailed := "Failed read the version from " + rel.VersionFile
	v, err := version.Read(versionPath)
	if err != nil {
		return fail(issue.NewErrorContext().
			WithOperation("read release version").
			WithResource(versionPath).
			WithSuggestion("Check that the file is valid INI or TOML").
			WithIssue(issue.VersionNotFoundId).
			Wrap(err).
			BuildError(), readFailed)
	}
	if v == "" {
		return fail(nil, readFailed)
	}
	if !version.IsSemantic(v) {
		tc.Logger.Warn("version is not a semantic version", "version", v, "file", rel.VersionFile)
	}

	tc.Logger.Info("releasing", "version", v, "remote", rel.Remote)
	return tc.runAll(
		Cmd("git", "push", rel.Remote, rel.Branch),
		Cmd("git", "push", rel.Remote, version.Tag(v)),
	)
}
