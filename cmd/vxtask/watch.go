// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/vxbase/vxtask/internal/issue"
	"github.com/vxbase/vxtask/internal/watch"
	"github.com/vxbase/vxtask/pkg/types"

	"github.com/spf13/cobra"
)

func newWatchCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <task>",
		Short: "Run a task, then re-run it whenever watched files change",
		Long: `Run a task once, then keep re-running it whenever a file matching
watch.patterns changes under the work directory. Stop with Ctrl+C.

A failing run is reported and watching continues.`,
		Example: `  vxtask watch test
  vxtask watch --dry-run lint`,
		Args: cobra.ExactArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return taskNames(app.Tasks), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return watchTask(cmd, app, args[0])
		},
	}
}

// watchTask runs name once and again after every debounced batch of changes
// until the command context is canceled.
func watchTask(cmd *cobra.Command, app *App, name string) error {
	s, err := prepareTask(cmd, app, name)
	if err != nil {
		return err
	}

	// Config.Validate already rejected unparsable durations.
	debounce, _ := time.ParseDuration(s.cfg.Watch.Debounce)
	w, err := watch.New(watch.Options{
		Dir:      s.workDir,
		Patterns: s.cfg.Watch.Patterns,
		Ignore:   s.cfg.Watch.Ignore,
		Debounce: debounce,
		Logger:   s.logger,
	})
	if err != nil {
		renderError(app.stderr, err, issue.WatchFailedId, app.flags.verbose)
		cmd.SilenceErrors = true
		return &ExitError{Code: types.ExitFailure, Err: err}
	}

	arrow := CmdStyle.Render("→")
	runOnce := func(ctx context.Context) {
		if res := s.run(ctx, app); res.Success() {
			fmt.Fprintf(app.stdout, "%s %s\n", SuccessStyle.Render("✓"), name)
		} else if ctx.Err() == nil {
			reportResult(app, name, res)
		}
		fmt.Fprintf(app.stdout, "\n%s Watching for changes (Ctrl+C to stop)...\n\n", arrow)
	}

	ctx := cmd.Context()
	fmt.Fprintf(app.stdout, "%s Watch mode: initial run of '%s'\n", arrow, name)
	runOnce(ctx)
	if err := w.Run(ctx, func(ctx context.Context, changed []string) {
		s.logger.Debug("changes", "paths", changed)
		fmt.Fprintf(app.stdout, "%s Detected %d change(s). Re-running '%s'...\n", arrow, len(changed), name)
		runOnce(ctx)
	}); err != nil {
		renderError(app.stderr, err, issue.WatchFailedId, app.flags.verbose)
		cmd.SilenceErrors = true
		return &ExitError{Code: types.ExitFailure, Err: err}
	}
	return nil
}
