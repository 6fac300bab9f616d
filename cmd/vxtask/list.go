// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newListCommand creates `vxtask list`.
func newListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List available tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list := app.Tasks.List()

			width := 0
			for _, t := range list {
				width = max(width, len(t.Name))
			}

			fmt.Fprintln(app.stdout, TitleStyle.Render("Available tasks:"))
			for _, t := range list {
				// Pad before styling so ANSI codes do not skew alignment.
				name := fmt.Sprintf("%-*s", width, t.Name)
				fmt.Fprintf(app.stdout, "  %s  %s\n", CmdStyle.Render(name), SubtitleStyle.Render(t.Short))
			}
			return nil
		},
	}
}
