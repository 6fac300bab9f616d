// SPDX-License-Identifier: MPL-2.0

// Command vxtask runs the project's developer tasks: dependency fetch, lint,
// tests with coverage, race detection, complexity and security scans,
// formatting checks and release pushes.
package main

import cmd "github.com/vxbase/vxtask/cmd/vxtask"

func main() {
	cmd.Execute()
}
