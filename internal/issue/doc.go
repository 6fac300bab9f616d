// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// remediation suggestions. Issue is a catalog of Markdown guidance pages,
// rendered with glamour, shown when a task fails for a well-known reason
// (a missing toolchain binary, an unreadable version file, and so on).
package issue
