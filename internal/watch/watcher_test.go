// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

const testDebounce = 100 * time.Millisecond

// startWatcher runs a watcher over dir and returns the channel its trigger
// publishes batches on.
func startWatcher(t *testing.T, opts Options) <-chan []string {
	t.Helper()

	if opts.Debounce == 0 {
		opts.Debounce = testDebounce
	}
	opts.Logger = log.New(io.Discard)

	w, err := New(opts)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	batches := make(chan []string, 10)
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.Run(ctx, func(_ context.Context, changed []string) {
			batches <- changed
		})
	}()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-errCh:
			if err != nil {
				t.Errorf("Run() error: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Error("Run did not return after cancel")
		}
	})
	return batches
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("package x\n"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func waitBatch(t *testing.T, batches <-chan []string) []string {
	t.Helper()
	select {
	case b := <-batches:
		return b
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for trigger")
		return nil
	}
}

func expectQuiet(t *testing.T, batches <-chan []string, d time.Duration) {
	t.Helper()
	select {
	case b := <-batches:
		t.Errorf("unexpected trigger with %v", b)
	case <-time.After(d):
	}
}

func TestWatcher_CoalescesRapidChanges(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	batches := startWatcher(t, Options{Dir: dir, Patterns: []string{"**/*.go"}})

	for _, name := range []string{"c.go", "a.go", "b.go"} {
		writeFile(t, filepath.Join(dir, name))
		time.Sleep(10 * time.Millisecond)
	}

	got := waitBatch(t, batches)
	if !slices.Equal(got, []string{"a.go", "b.go", "c.go"}) {
		t.Errorf("changed = %v, want sorted a.go b.go c.go", got)
	}
	expectQuiet(t, batches, 3*testDebounce)
}

func TestWatcher_PatternsAndIgnores(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "vendor", "dep"), 0o755); err != nil {
		t.Fatal(err)
	}
	batches := startWatcher(t, Options{
		Dir:      dir,
		Patterns: []string{"**/*.go"},
		Ignore:   []string{"vendor/**"},
	})

	writeFile(t, filepath.Join(dir, "notes.txt"))
	writeFile(t, filepath.Join(dir, "coverage.cov"))
	writeFile(t, filepath.Join(dir, "vendor", "dep", "dep.go"))
	expectQuiet(t, batches, 3*testDebounce)

	writeFile(t, filepath.Join(dir, "main.go"))
	if got := waitBatch(t, batches); !slices.Equal(got, []string{"main.go"}) {
		t.Errorf("changed = %v, want [main.go]", got)
	}
}

func TestWatcher_FollowsNewDirectories(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	batches := startWatcher(t, Options{Dir: dir, Patterns: []string{"**/*.go"}})

	sub := filepath.Join(dir, "internal", "pkg")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	// Give the watcher a moment to register the new directories.
	time.Sleep(testDebounce)
	writeFile(t, filepath.Join(sub, "pkg.go"))

	got := waitBatch(t, batches)
	if !slices.Contains(got, "internal/pkg/pkg.go") {
		t.Errorf("changed = %v, want internal/pkg/pkg.go", got)
	}
}

func TestWatcher_EmptyPatternsMatchEverything(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	batches := startWatcher(t, Options{Dir: dir})

	writeFile(t, filepath.Join(dir, "README.md"))
	if got := waitBatch(t, batches); !slices.Equal(got, []string{"README.md"}) {
		t.Errorf("changed = %v", got)
	}
}

func TestWatcher_RunTwice(t *testing.T) {
	t.Parallel()

	w, err := New(Options{Dir: t.TempDir(), Logger: log.New(io.Discard)})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, func(context.Context, []string) {}) }()

	for !w.started.Load() {
		time.Sleep(time.Millisecond)
	}
	if err := w.Run(ctx, func(context.Context, []string) {}); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run() = %v, want ErrAlreadyRunning", err)
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("first Run() = %v", err)
	}
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts Options
	}{
		{"missing directory", Options{Dir: filepath.Join(t.TempDir(), "absent")}},
		{"invalid pattern", Options{Dir: t.TempDir(), Patterns: []string{"[unclosed"}}},
		{"invalid ignore", Options{Dir: t.TempDir(), Ignore: []string{"{a,b"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tt.opts.Logger = log.New(io.Discard)
			if _, err := New(tt.opts); err == nil {
				t.Error("New() should fail")
			}
		})
	}
}

func TestMatchAny(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rel  string
		want bool
	}{
		{".git/HEAD", true},
		{"sub/.git/config", true},
		{"main.go.swp", true},
		{"coverage/coverage.cov", true},
		{"main.go", false},
		{"internal/tasks/format.go", false},
	}

	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			t.Parallel()

			if got := matchAny(builtinIgnores, tt.rel); got != tt.want {
				t.Errorf("matchAny(builtinIgnores, %q) = %v, want %v", tt.rel, got, tt.want)
			}
		})
	}
}
