// SPDX-License-Identifier: MPL-2.0

// Package scriptfile provides types and parsing for the scripts file, the
// ordered list of named script definitions that mvc exposes as subcommands.
//
// The file is usually CUE (scripts.cue) validated against an embedded schema,
// but YAML, JSON and TOML files are decoded as well, selected by extension.
// Definitions are read-only here: mvc never writes the scripts file.
package scriptfile
