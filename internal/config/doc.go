// SPDX-License-Identifier: MPL-2.0

// Package config handles vxtask configuration using Viper with CUE as the file format.
//
// Configuration is read from vxtask.cue in the working directory, or from an
// explicit path given with --config. The file is validated against an embedded
// CUE schema (config_schema.cue) and merged over built-in defaults, so every
// key is optional. VXTASK_* environment variables override both.
package config
