// SPDX-License-Identifier: MPL-2.0

// Package selfupdate replaces the running mvc binary with the latest release.
//
// An upgrade walks a fixed sequence of states:
//
//	PrivilegeCheck -> StagedArtifactCheck -> FreshDownload | SwapFromStage -> Swapped | Aborted
//
// The install path is only ever changed by a single rename of a complete
// file onto it, so a process running the old binary keeps working and an
// interrupted upgrade never leaves the install path empty. A downloaded
// artifact waits at the staging path until it is swapped in; a later run
// that finds it there resumes from the swap instead of downloading again.
//
// Environmental failures never fail the CLI: they end in Aborted with an
// advisory message, and the cause is logged.
package selfupdate
