// SPDX-License-Identifier: MPL-2.0

package version

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestRead(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		content string
		want    string
		wantErr bool
	}{
		{
			name: "bumpversion cfg",
			file: ".bumpversion.cfg",
			content: `[bumpversion]
current_version = 1.2.3
commit = True
tag = True

[bumpversion:file:version.go]
search = Version = "{current_version}"
`,
			want: "1.2.3",
		},
		{
			name: "multiline serialize value",
			file: ".bumpversion.cfg",
			content: `[bumpversion]
current_version = 2.0.0-rc1
parse = (?P<major>\d+)\.(?P<minor>\d+)\.(?P<patch>\d+)(\-(?P<release>[a-z]+)(?P<build>\d+))?
serialize =
	{major}.{minor}.{patch}-{release}{build}
	{major}.{minor}.{patch}
`,
			want: "2.0.0-rc1",
		},
		{
			name:    "value is trimmed",
			file:    "setup.cfg",
			content: "[bumpversion]\ncurrent_version =   0.9.1   \n",
			want:    "0.9.1",
		},
		{
			name:    "missing section",
			file:    ".bumpversion.cfg",
			content: "[metadata]\nname = vx\n",
			want:    "",
		},
		{
			name:    "missing key",
			file:    ".bumpversion.cfg",
			content: "[bumpversion]\ncommit = True\n",
			want:    "",
		},
		{
			name:    "empty file",
			file:    ".bumpversion.cfg",
			content: "",
			want:    "",
		},
		{
			name:    "bump-my-version toml",
			file:    ".bumpversion.toml",
			content: "[tool.bumpversion]\ncurrent_version = \"3.4.5\"\n",
			want:    "3.4.5",
		},
		{
			name:    "top-level toml key",
			file:    "version.toml",
			content: "current_version = \"0.1.0\"\n",
			want:    "0.1.0",
		},
		{
			name:    "malformed toml",
			file:    ".bumpversion.toml",
			content: "[tool.bumpversion\ncurrent_version = ",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := writeFile(t, tt.file, tt.content)
			got, err := Read(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Read() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrMalformedVersionFile) {
				t.Errorf("error should wrap ErrMalformedVersionFile, got %v", err)
			}
			if got != tt.want {
				t.Errorf("Read() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	t.Parallel()

	got, err := Read(filepath.Join(t.TempDir(), ".bumpversion.cfg"))
	if err != nil {
		t.Fatalf("missing file should not be an error, got %v", err)
	}
	if got != "" {
		t.Errorf("Read() = %q, want empty", got)
	}
}

func TestIsSemantic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{"1.2.3", true},
		{"v1.2.3", true},
		{"2.0.0-rc1", true},
		{"1.2", true},
		{"", false},
		{"release-7", false},
		{"1.2.3.4", false},
	}

	for _, tt := range tests {
		if got := IsSemantic(tt.in); got != tt.want {
			t.Errorf("IsSemantic(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTag(t *testing.T) {
	t.Parallel()

	if got := Tag("1.2.3"); got != "v1.2.3" {
		t.Errorf("Tag(1.2.3) = %q", got)
	}
	if got := Tag("v1.2.3"); got != "v1.2.3" {
		t.Errorf("Tag(v1.2.3) = %q, want no double prefix", got)
	}
}
