// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/vxbase/vxtask/internal/issue"

	"github.com/charmbracelet/log"
)

// issueStyle is the glamour style used for issue pages.
const issueStyle = "dark"

// formatErrorForDisplay formats an error for user display.
// ActionableErrors use their Format method; verbose mode adds the error chain.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}

// renderError prints err and the issue page it points to. An ActionableError
// carrying its own issue id takes precedence over fallback.
func renderError(w io.Writer, err error, fallback issue.Id, verbose bool) {
	fmt.Fprintln(w, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))

	id := fallback
	var ae *issue.ActionableError
	if errors.As(err, &ae) && ae.Issue != 0 {
		id = ae.Issue
	}
	if id != 0 {
		renderIssue(w, id)
	}
}

// renderIssue prints the catalog page for id.
func renderIssue(w io.Writer, id issue.Id) {
	entry := issue.Get(id)
	if entry == nil {
		return
	}

	rendered, err := entry.Render(issueStyle)
	if err != nil {
		log.Warn("failed to render issue catalog entry", "issueID", int(id), "error", err)
		return
	}
	fmt.Fprint(w, rendered)
}
