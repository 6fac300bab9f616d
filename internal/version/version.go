// SPDX-License-Identifier: MPL-2.0

package version

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/mod/semver"
	"gopkg.in/ini.v1"
)

const (
	// bumpversionSection is the INI section holding current_version.
	bumpversionSection = "bumpversion"
	currentVersionKey  = "current_version"
)

// ErrMalformedVersionFile is returned when a version file exists but cannot be parsed.
var ErrMalformedVersionFile = errors.New("malformed version file")

// tomlVersionFile covers bump-my-version's .bumpversion.toml and pyproject.toml.
type tomlVersionFile struct {
	CurrentVersion string `toml:"current_version"`
	Tool           struct {
		Bumpversion struct {
			CurrentVersion string `toml:"current_version"`
		} `toml:"bumpversion"`
	} `toml:"tool"`
}

// Read returns the current version recorded in path.
//
// A missing file, a missing section, or a missing key yields "" and no error;
// callers treat the empty string as "not found". Files ending in .toml are
// decoded as TOML, everything else as INI.
func Read(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read version file: %w", err)
	}

	var v string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		v, err = readTOML(data)
	default:
		v, err = readINI(data)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrMalformedVersionFile, path, err)
	}

	return strings.TrimSpace(v), nil
}

func readINI(data []byte) (string, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		AllowPythonMultilineValues: true,
		SkipUnrecognizableLines:    true,
	}, data)
	if err != nil {
		return "", err
	}

	section, err := f.GetSection(bumpversionSection)
	if err != nil {
		return "", nil //nolint:nilerr // a missing section means no version
	}
	if !section.HasKey(currentVersionKey) {
		return "", nil
	}
	return section.Key(currentVersionKey).String(), nil
}

func readTOML(data []byte) (string, error) {
	var doc tomlVersionFile
	if err := toml.Unmarshal(data, &doc); err != nil {
		return "", err
	}
	if doc.Tool.Bumpversion.CurrentVersion != "" {
		return doc.Tool.Bumpversion.CurrentVersion, nil
	}
	return doc.CurrentVersion, nil
}

// IsSemantic reports whether v (with or without a leading "v") is a valid
// semantic version.
func IsSemantic(v string) bool {
	if v == "" {
		return false
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return semver.IsValid(v)
}

// Tag returns the git tag name for v: the version prefixed with "v".
func Tag(v string) string {
	return "v" + strings.TrimPrefix(v, "v")
}
