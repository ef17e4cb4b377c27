// SPDX-License-Identifier: MPL-2.0

//go:build unix

package selfupdate

import (
	"os"
	"syscall"
)

// stagedByCurrentUser requires the effective user to own info and nobody
// else to be able to write it.
func stagedByCurrentUser(info os.FileInfo) bool {
	if info.Mode().Perm()&0o022 != 0 {
		return false
	}
	st, ok := info.Sys().(*syscall.Stat_t)
	return ok && int(st.Uid) == os.Geteuid()
}
