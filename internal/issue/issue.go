// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

const (
	ToolNotFoundId Id = iota + 1
	ShellNotFoundId
	ConfigLoadFailedId
	UnknownTaskId
	CoverageDirFailedId
	VersionNotFoundId
	FormatViolationId
	WatchFailedId
)

type (
	// Id identifies a catalog entry.
	Id int

	// MarkdownMsg is the Markdown body of a catalog entry.
	MarkdownMsg string

	// HttpLink is a documentation URL.
	HttpLink string

	// Issue is a Markdown guidance page for a well-known failure.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
		extLinks []HttpLink
	}
)

var (
	render = glamour.Render

	toolNotFoundIssue = &Issue{
		id: ToolNotFoundId,
		mdMsg: `
# A toolchain binary is missing!

The task shells out to an external tool that is not on your PATH
(the shell reported exit status 127).

## Install the tools vxtask uses

| Task | Tool | Install |
|------|------|---------|
| lint | golangci-lint | see the install guide below |
| test | gocover-cobertura | ` + "`go install github.com/boumenot/gocover-cobertura@latest`" + ` |
| cyclo | gocyclo | ` + "`go install github.com/fzipp/gocyclo/cmd/gocyclo@latest`" + ` |
| sec | gosec | ` + "`go install github.com/securego/gosec/v2/cmd/gosec@latest`" + ` |
| fmt | goimports | ` + "`go install golang.org/x/tools/cmd/goimports@latest`" + ` |

Make sure ` + "`$(go env GOPATH)/bin`" + ` is on your PATH, then retry.`,
		docLinks: []HttpLink{"https://golangci-lint.run/welcome/install/"},
		extLinks: []HttpLink{
			"https://github.com/boumenot/gocover-cobertura",
			"https://github.com/fzipp/gocyclo",
			"https://github.com/securego/gosec",
		},
	}

	shellNotFoundIssue = &Issue{
		id: ShellNotFoundId,
		mdMsg: `
# No shell found!

The native runtime needs a host shell (` + "`$SHELL`" + `, bash or sh).

## Things you can try:
- Switch to the embedded shell interpreter:
~~~
$ vxtask --runtime virtual <task>
~~~
- Or set it permanently in ` + "`vxtask.cue`" + `:
~~~cue
default_runtime: "virtual"
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load vxtask.cue!

The configuration file contains invalid CUE or values outside the schema.

## Things you can try:
- Print the effective configuration:
~~~
$ vxtask config show
~~~
- Regenerate a file with every default spelled out:
~~~
$ vxtask config dump > vxtask.cue
~~~`,
	}

	unknownTaskIssue = &Issue{
		id: UnknownTaskId,
		mdMsg: `
# Unknown task!

## Things you can try:
- List all available tasks:
~~~
$ vxtask list
~~~
- Check for typos in the task name`,
	}

	coverageDirFailedIssue = &Issue{
		id: CoverageDirFailedId,
		mdMsg: `
# Could not create the coverage directory!

The directory is named by ` + "`$CI_COMMIT_REF_SLUG`" + ` when set, else ` + "`coverage`" + `.

## Things you can try:
- Check write permissions on the working directory
- Unset or fix ` + "`CI_COMMIT_REF_SLUG`" + ` if it contains an unusable path`,
	}

	versionNotFoundIssue = &Issue{
		id: VersionNotFoundId,
		mdMsg: `
# No release version found!

The release task reads ` + "`current_version`" + ` from the version file.

## Example .bumpversion.cfg
~~~ini
[bumpversion]
current_version = 1.2.3
~~~`,
		extLinks: []HttpLink{"https://github.com/c4urself/bump2version"},
	}

	formatViolationIssue = &Issue{
		id: FormatViolationId,
		mdMsg: `
# Formatting check failed!

## Things you can try:
~~~
$ gofmt -d .
$ goimports -d .
$ gofmt -w . && goimports -w .
~~~`,
		docLinks: []HttpLink{"https://pkg.go.dev/golang.org/x/tools/cmd/goimports"},
	}

	watchFailedIssue = &Issue{
		id: WatchFailedId,
		mdMsg: `
# The file watcher stopped!

` + "`vxtask watch`" + ` could not start or keep watching the work directory.

## Things you can try:
- Raise the inotify watch limit on Linux:
~~~
$ sudo sysctl fs.inotify.max_user_watches=524288
~~~
- Exclude large generated trees with ` + "`watch: ignore`" + ` in vxtask.cue:
~~~cue
watch: ignore: ["vendor/**", "node_modules/**"]
~~~
- Check that every ` + "`watch.patterns`" + ` entry is a valid glob.`,
		extLinks: []HttpLink{"https://github.com/fsnotify/fsnotify"},
	}

	issues = map[Id]*Issue{
		ToolNotFoundId:      toolNotFoundIssue,
		ShellNotFoundId:     shellNotFoundIssue,
		ConfigLoadFailedId:  configLoadFailedIssue,
		UnknownTaskId:       unknownTaskIssue,
		CoverageDirFailedId: coverageDirFailedIssue,
		VersionNotFoundId:   versionNotFoundIssue,
		FormatViolationId:   formatViolationIssue,
		WatchFailedId:       watchFailedIssue,
	}
)

// Id returns the catalog id.
func (i *Issue) Id() Id {
	return i.id
}

// MarkdownMsg returns the raw Markdown body.
func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

// DocLinks returns a copy of the documentation links.
func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

// ExtLinks returns a copy of the external links.
func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the page for a terminal using the given glamour style.
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))

	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range slices.Concat(i.docLinks, i.extLinks) {
			md.WriteString("\n- " + string(link))
		}
	}

	return render(md.String(), stylePath)
}

// Get returns the catalog entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}

// Values returns all catalog entries ordered by id.
func Values() []*Issue {
	result := make([]*Issue, 0, len(issues))
	for _, id := range slices.Sorted(maps.Keys(issues)) {
		result = append(result, issues[id])
	}
	return result
}
