// SPDX-License-Identifier: MPL-2.0

package selfupdate

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"
)

const executableMode = 0o755

//nolint:gochecknoglobals // Test seam for os.Rename().
var rename = os.Rename

// swapInto makes staged executable and renames it onto install. When the
// two paths are on different filesystems the artifact is first copied into
// a temp file next to install, and that file is renamed instead, so install
// is still replaced in one step. staged no longer exists on success.
func swapInto(staged, install string) error {
	if err := os.Chmod(staged, executableMode); err != nil {
		return fmt.Errorf("marking %s executable: %w", staged, err)
	}

	err := rename(staged, install)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return fmt.Errorf("replacing %s: %w", install, err)
	}

	slog.Debug("staging path is on another filesystem; copying next to install path", "staged", staged, "install", install)

	tmp, err := copyToTemp(staged, filepath.Dir(install))
	if err != nil {
		return err
	}
	renamed := false
	defer func() {
		if !renamed {
			_ = os.Remove(tmp)
		}
	}()

	if err := rename(tmp, install); err != nil {
		return fmt.Errorf("replacing %s: %w", install, err)
	}
	renamed = true

	if err := os.Remove(staged); err != nil {
		slog.Warn("failed to remove staged artifact", "path", staged, "error", err)
	}
	return nil
}

// copyToTemp copies src into a new executable temp file in dir and returns
// its path.
func copyToTemp(src, dir string) (_ string, err error) {
	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("opening staged artifact: %w", err)
	}
	defer func() { _ = in.Close() }() // read-only file handle

	out, err := os.CreateTemp(dir, ".mvc-swap-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(out.Name())
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		_ = out.Close()
		return "", fmt.Errorf("copying staged artifact: %w", err)
	}
	if err = out.Close(); err != nil {
		return "", fmt.Errorf("closing temp file: %w", err)
	}
	if err = os.Chmod(out.Name(), executableMode); err != nil {
		return "", fmt.Errorf("marking temp file executable: %w", err)
	}
	return out.Name(), nil
}
