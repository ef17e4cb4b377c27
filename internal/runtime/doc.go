// SPDX-License-Identifier: MPL-2.0

// Package runtime runs script command text through an execution backend.
//
// The Executor is the low-level spawner: it splits command text on whitespace
// and starts exactly one host process, with no quoting, escaping or shell
// metacharacter handling. Arguments containing spaces therefore cannot be
// expressed through it. Backends wrap an execution mechanism behind a common
// interface and are looked up by scriptfile.BackendType in a Registry, so new
// backends plug in without touching the dispatcher.
package runtime
