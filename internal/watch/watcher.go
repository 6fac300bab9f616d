// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs a task when files under the work directory change.
//
// Changes are coalesced: after the first matching event the watcher waits for
// a quiet period (the debounce) and then hands the full set of changed paths
// to the trigger. The trigger runs on the watcher's own goroutine, so events
// that arrive while a task is running are batched into the next run instead
// of starting a concurrent one.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce applies when Options.Debounce is not positive.
const DefaultDebounce = 500 * time.Millisecond

// builtinIgnores are never watched. Coverage profiles and editor swap files
// change on every test run or keystroke.
var builtinIgnores = []string{
	".git/**",
	"**/.git/**",
	"**/*.swp",
	"**/*~",
	"**/*.cov",
	"**/.DS_Store",
}

// ErrAlreadyRunning is returned by a second call to Run.
var ErrAlreadyRunning = errors.New("watch: Run called more than once")

type (
	// Trigger is called with the changed paths, relative to the watched
	// directory, in slash form and sorted.
	Trigger func(ctx context.Context, changed []string)

	// Options configures a Watcher.
	Options struct {
		// Dir is the directory tree to watch. It must exist.
		Dir string
		// Patterns select the files that trigger a run. Empty matches every
		// file that is not ignored.
		Patterns []string
		// Ignore is merged with the built-in ignore list.
		Ignore   []string
		Debounce time.Duration
		Logger   *log.Logger
	}

	// Watcher monitors a directory tree. Create it with New.
	Watcher struct {
		dir      string
		patterns []string
		ignores  []string
		debounce time.Duration
		logger   *log.Logger
		fsw      *fsnotify.Watcher
		started  atomic.Bool
	}
)

// New validates the patterns and registers every non-ignored directory under
// opts.Dir with fsnotify.
func New(opts Options) (*Watcher, error) {
	dir, err := filepath.Abs(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve %q: %w", opts.Dir, err)
	}

	if err := validatePatterns(opts.Patterns); err != nil {
		return nil, err
	}
	if err := validatePatterns(opts.Ignore); err != nil {
		return nil, err
	}

	w := &Watcher{
		dir:      dir,
		patterns: slices.Clone(opts.Patterns),
		ignores:  append(slices.Clone(builtinIgnores), opts.Ignore...),
		debounce: opts.Debounce,
		logger:   opts.Logger,
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	if w.logger == nil {
		w.logger = log.Default()
	}

	if w.fsw, err = fsnotify.NewWatcher(); err != nil {
		return nil, fmt.Errorf("watch: create watcher: %w", err)
	}
	if err := w.addTree(dir); err != nil {
		_ = w.fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run dispatches debounced batches of changes to trigger until ctx is
// canceled. It returns nil on cancellation and an error when the underlying
// watcher breaks.
func (w *Watcher) Run(ctx context.Context, trigger Trigger) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer func() {
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("closing file watcher", "error", err)
		}
	}()

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: event channel closed")
			}
			rel, relevant := w.classify(evt)
			if !relevant {
				continue
			}
			w.logger.Debug("change detected", "path", rel, "op", evt.Op.String())
			pending[rel] = struct{}{}
			timer.Reset(w.debounce)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := slices.Sorted(maps.Keys(pending))
			clear(pending)
			trigger(ctx, changed)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: error channel closed")
			}
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("watch: %w", err)
			}
			w.logger.Warn("file watcher error", "error", err)
		}
	}
}

// classify returns the slash-form relative path of evt and whether it should
// trigger a run. New directories are added to the watch as a side effect.
func (w *Watcher) classify(evt fsnotify.Event) (string, bool) {
	// Chmod-only events come from tools touching file modes, not edits.
	if evt.Op == fsnotify.Chmod {
		return "", false
	}

	rel, err := filepath.Rel(w.dir, evt.Name)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if w.ignored(rel) {
		return "", false
	}

	if evt.Has(fsnotify.Create) {
		if info, statErr := os.Stat(evt.Name); statErr == nil && info.IsDir() {
			if addErr := w.addTree(evt.Name); addErr != nil {
				w.logger.Warn("watching new directory", "path", rel, "error", addErr)
			}
			return "", false
		}
	}

	return rel, w.matches(rel)
}

// addTree registers root and its non-ignored subdirectories.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("watch: %w", err)
			}
			w.logger.Debug("skipping unreadable path", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}

		rel, relErr := filepath.Rel(w.dir, path)
		if relErr != nil {
			return nil
		}
		if slashed := filepath.ToSlash(rel); rel != "." && (w.ignored(slashed) || w.ignored(slashed+"/")) {
			return filepath.SkipDir
		}

		if addErr := w.fsw.Add(path); addErr != nil {
			return fmt.Errorf("watch: add %q: %w", path, addErr)
		}
		return nil
	})
}

func (w *Watcher) ignored(rel string) bool {
	return matchAny(w.ignores, rel)
}

func (w *Watcher) matches(rel string) bool {
	return len(w.patterns) == 0 || matchAny(w.patterns, rel)
}

func matchAny(patterns []string, rel string) bool {
	for _, pat := range patterns {
		if ok, _ := doublestar.Match(pat, rel); ok {
			return true
		}
	}
	return false
}

func validatePatterns(patterns []string) error {
	for _, pat := range patterns {
		if !doublestar.ValidatePattern(pat) {
			return fmt.Errorf("watch: invalid pattern %q", pat)
		}
	}
	return nil
}
