// SPDX-License-Identifier: MPL-2.0

package selfupdate

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// probeWritable creates and removes a uniquely named marker file in dir.
// Success means the current user may replace files there; permission bits
// are never inspected directly.
func probeWritable(dir, toolName string) error {
	marker := filepath.Join(dir, fmt.Sprintf(".%s-probe-%s", toolName, uuid.NewString()))

	f, err := os.OpenFile(marker, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("creating probe file in %s: %w", dir, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(marker)
		return fmt.Errorf("closing probe file: %w", err)
	}
	if err := os.Remove(marker); err != nil {
		return fmt.Errorf("removing probe file: %w", err)
	}
	return nil
}
