// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"
	"strings"

	cueerrors "cuelang.org/go/cue/errors"
)

// formatCUEError flattens a CUE error into "<file>: <path>: <message>" lines.
//
//	vxtask.cue: cyclo.over: invalid value 0 (out of bound >=1)
func formatCUEError(err error, filePath string) error {
	if err == nil {
		return nil
	}

	cueErrs := cueerrors.Errors(err)
	if len(cueErrs) == 0 {
		return fmt.Errorf("%s: %w", filePath, err)
	}

	lines := make([]string, 0, len(cueErrs))
	for _, e := range cueErrs {
		path := formatPath(cueerrors.Path(e))
		if path == "" {
			lines = append(lines, e.Error())
			continue
		}
		format, args := e.Msg()
		msg := fmt.Sprintf(format, args...)
		lines = append(lines, path+": "+msg)
	}

	if len(lines) == 1 {
		return fmt.Errorf("%s: %s", filePath, lines[0])
	}
	return fmt.Errorf("%s: validation failed:\n  %s", filePath, strings.Join(lines, "\n  "))
}

// formatPath renders a CUE path such as ["lint", "timeout"] as "lint.timeout".
// The #Config definition selector is dropped since users never write it.
func formatPath(path []string) string {
	parts := make([]string, 0, len(path))
	for _, p := range path {
		if p == "#Config" {
			continue
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, ".")
}
