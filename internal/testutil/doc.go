// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers shared by mvc's package tests.
//
// The Must* helpers fail the test on error instead of returning it. The
// CommandRecorder stands in for process creation: it records every program a
// test would have spawned and re-executes the test binary as a stub process,
// so command dispatch can be asserted without running git or any other tool.
package testutil
