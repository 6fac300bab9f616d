// SPDX-License-Identifier: MPL-2.0

package tasks

import (
	"strings"

	"github.com/kballard/go-shellquote"
)

// Command is an external program invocation with optional file redirections.
// It is rendered to a shell command line with every word quoted, so
// interpolated paths and patterns reach the tool unchanged.
type Command struct {
	Args []string
	// Stdin names a file redirected to standard input
	Stdin string
	// Stdout names a file standard output is redirected to
	Stdout string
}

// Cmd creates a Command from argv.
func Cmd(args ...string) Command {
	return Command{Args: args}
}

// ReadFrom returns a copy of c reading standard input from path.
func (c Command) ReadFrom(path string) Command {
	c.Stdin = path
	return c
}

// WriteTo returns a copy of c writing standard output to path.
func (c Command) WriteTo(path string) Command {
	c.Stdout = path
	return c
}

// Tool returns the program name, or "" for an empty command.
func (c Command) Tool() string {
	if len(c.Args) == 0 {
		return ""
	}
	return c.Args[0]
}

// String renders c as a shell command line.
func (c Command) String() string {
	var sb strings.Builder
	sb.WriteString(shellquote.Join(c.Args...))
	if c.Stdin != "" {
		sb.WriteString(" < ")
		sb.WriteString(shellquote.Join(c.Stdin))
	}
	if c.Stdout != "" {
		sb.WriteString(" > ")
		sb.WriteString(shellquote.Join(c.Stdout))
	}
	return sb.String()
}
