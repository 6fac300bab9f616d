// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "read version"},
			expected: "failed to read version",
		},
		{
			name:     "operation with resource",
			err:      &ActionableError{Operation: "read version", Resource: ".bumpversion.cfg"},
			expected: "failed to read version: .bumpversion.cfg",
		},
		{
			name: "operation with resource and cause",
			err: &ActionableError{
				Operation: "create coverage directory",
				Resource:  "coverage",
				Cause:     errors.New("permission denied"),
			},
			expected: "failed to create coverage directory: coverage: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_ErrorsIs(t *testing.T) {
	err := NewErrorContext().
		WithOperation("create coverage directory").
		Wrap(fs.ErrPermission).
		BuildError()

	if !errors.Is(err, fs.ErrPermission) {
		t.Error("errors.Is should see through ActionableError to the cause")
	}

	var ae *ActionableError
	if !errors.As(err, &ae) {
		t.Fatal("errors.As should find the ActionableError")
	}
}

func TestActionableError_Format(t *testing.T) {
	inner := errors.New("disk full")
	err := &ActionableError{
		Operation:   "create coverage directory",
		Resource:    "coverage",
		Suggestions: []string{"Free some disk space", "Set CI_COMMIT_REF_SLUG to another path"},
		Cause:       errors.Join(errors.New("mkdir coverage"), inner),
	}

	short := err.Format(false)
	if !strings.Contains(short, "  • Free some disk space") {
		t.Errorf("Format(false) missing suggestion bullet:\n%s", short)
	}
	if strings.Contains(short, "Error chain:") {
		t.Errorf("Format(false) should not include the error chain:\n%s", short)
	}

	verbose := err.Format(true)
	if !strings.Contains(verbose, "Error chain:") || !strings.Contains(verbose, "1. mkdir coverage") {
		t.Errorf("Format(true) missing error chain:\n%s", verbose)
	}
}

func TestErrorContext_Build(t *testing.T) {
	if got := NewErrorContext().WithResource("x").Build(); got != nil {
		t.Errorf("Build() without operation = %v, want nil", got)
	}
	if got := NewErrorContext().BuildError(); got != nil {
		t.Errorf("BuildError() without operation = %v, want nil", got)
	}

	cause := errors.New("boom")
	ae := NewErrorContext().
		WithOperation("read version").
		WithResource(".bumpversion.cfg").
		WithSuggestion("first").
		WithSuggestion("second").
		WithIssue(VersionNotFoundId).
		Wrap(cause).
		Build()

	if ae.Operation != "read version" || ae.Resource != ".bumpversion.cfg" {
		t.Errorf("unexpected operation/resource: %+v", ae)
	}
	if len(ae.Suggestions) != 2 {
		t.Errorf("Suggestions = %v, want 2 entries", ae.Suggestions)
	}
	if ae.Issue != VersionNotFoundId {
		t.Errorf("Issue = %d, want %d", ae.Issue, VersionNotFoundId)
	}
	if !errors.Is(ae, cause) {
		t.Error("built error should wrap cause")
	}
}

func TestWrapWithOperation(t *testing.T) {
	if WrapWithOperation(nil, "anything") != nil {
		t.Error("WrapWithOperation(nil) should return nil")
	}

	err := WrapWithOperation(errors.New("exit status 2"), "push tag")
	if err.Error() != "failed to push tag: exit status 2" {
		t.Errorf("WrapWithOperation() = %q", err.Error())
	}
}
