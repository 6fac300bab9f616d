// SPDX-License-Identifier: MPL-2.0

package tasks

import (
	"fmt"
	"strings"

	"github.com/vxbase/vxtask/pkg/types"
)

// Task names.
const (
	TaskDep     = "dep"
	TaskLint    = "lint"
	TaskTest    = "test"
	TaskRace    = "race"
	TaskCyclo   = "cyclo"
	TaskSec     = "sec"
	TaskFmt     = "fmt"
	TaskRelease = "release"
)

// Registry maps task names to tasks and keeps registration order for listing.
type Registry struct {
	tasks map[string]Task
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tasks: make(map[string]Task)}
}

// NewDefaultRegistry creates a registry holding every built-in task.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, t := range builtinTasks() {
		if err := r.Register(t); err != nil {
			panic(err) // built-in names are unique
		}
	}
	return r
}

func builtinTasks() []Task {
	return []Task{
		{Name: TaskDep, Short: "Fetch module dependencies", Handler: Dep},
		{Name: TaskLint, Short: "Run golangci-lint over all packages", Handler: Lint},
		{Name: TaskTest, Short: "Run tests with coverage and write reports", Handler: Test},
		{Name: TaskRace, Short: "Run short tests with the race detector", Handler: Race},
		{Name: TaskCyclo, Short: "Report functions above the cyclomatic complexity threshold", Handler: Cyclo},
		{Name: TaskSec, Short: "Run the gosec security scanner", Handler: Sec},
		{Name: TaskFmt, Short: "Check gofmt and goimports formatting", Handler: Fmt},
		{Name: TaskRelease, Short: "Push the release branch and version tag", Handler: Release},
	}
}

// Register adds t to the registry.
func (r *Registry) Register(t Task) error {
	if strings.TrimSpace(t.Name) == "" || t.Handler == nil {
		return fmt.Errorf("invalid task %q: name and handler are required", t.Name)
	}
	if _, exists := r.tasks[t.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTask, t.Name)
	}
	r.tasks[t.Name] = t
	r.order = append(r.order, t.Name)
	return nil
}

// Lookup returns the task registered under name.
func (r *Registry) Lookup(name string) (Task, error) {
	t, ok := r.tasks[name]
	if !ok {
		return Task{}, fmt.Errorf("%w: %q", ErrUnknownTask, name)
	}
	return t, nil
}

// List returns all tasks in registration order.
func (r *Registry) List() []Task {
	list := make([]Task, 0, len(r.order))
	for _, name := range r.order {
		list = append(list, r.tasks[name])
	}
	return list
}

// Run looks up name and runs its handler against tc.
func (r *Registry) Run(tc *Context, name string) Result {
	t, err := r.Lookup(name)
	if err != nil {
		return fail(err)
	}
	if tc.Runner == nil {
		return fail(ErrNoRunner)
	}

	tc = tc.withDefaults()
	tc.Logger.Debug("task started", "task", name, "workdir", tc.WorkDir)

	res := t.Handler(tc)
	if res.Err != nil && res.ExitCode.IsSuccess() {
		res.ExitCode = types.ExitFailure
	}

	if res.Success() {
		tc.Logger.Debug("task finished", "task", name)
	} else {
		tc.Logger.Debug("task failed", "task", name, "result", res.String())
	}
	return res
}
