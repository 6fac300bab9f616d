// SPDX-License-Identifier: MPL-2.0

// Package testutil provides test helpers that fail the test on setup errors,
// plus fake toolchain executables for exercising tasks without the real tools.
package testutil
