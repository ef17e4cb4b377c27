// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for mvc.
//
// The root command routes the script aliases (push, commit, build, run and
// any other unreserved name) to the dispatcher, and hosts the script,
// upgrade, version, config and help subcommands. App is the composition
// root that builds the registry, backends, version client and updater from
// the loaded configuration.
package cmd
