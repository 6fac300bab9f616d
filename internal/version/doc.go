// SPDX-License-Identifier: MPL-2.0

// Package version reads the project release version from bumpversion-style
// configuration files.
package version
