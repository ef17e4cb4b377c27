// SPDX-License-Identifier: MPL-2.0

package selfupdate

import (
	"fmt"
	"os"
	"path/filepath"
	goruntime "runtime"
	"strings"
)

const (
	// DefaultToolName is the release asset prefix and the binary name.
	DefaultToolName = "mvc"

	// DefaultReleaseRepo is the repository releases are published to.
	DefaultReleaseRepo = "https://github.com/TeamMV/mvc"

	stagingFileName = "mvc-newVersion"
)

var (
	//nolint:gochecknoglobals // Test seam for os.Executable().
	osExecutable = os.Executable

	//nolint:gochecknoglobals // Test seam for filepath.EvalSymlinks().
	evalSymlinks = filepath.EvalSymlinks
)

// Env is the immutable description of the running binary and where its
// updates come from. It is built once at startup and injected, so tests can
// fabricate any version or layout.
type Env struct {
	// Version is the version embedded in the running binary.
	Version string
	// Platform selects the release asset, e.g. "linux".
	Platform string
	// ToolName is the asset prefix: assets are named <ToolName>-<Platform>.
	ToolName string
	// InstallPath is the binary that gets replaced.
	InstallPath string
	// StagingPath is where a downloaded artifact waits to be swapped in.
	StagingPath string
	// ReleaseRepo is the repository web URL, e.g. https://github.com/TeamMV/mvc.
	ReleaseRepo string
}

// DefaultPlatform returns the asset platform for the running OS.
func DefaultPlatform() string {
	return goruntime.GOOS
}

// DefaultStagingPath returns the staging location inside the OS temp
// directory.
func DefaultStagingPath() string {
	return filepath.Join(os.TempDir(), stagingFileName)
}

// ResolveInstallPath returns the absolute, symlink-resolved path of the
// running binary.
func ResolveInstallPath() (string, error) {
	p, err := osExecutable()
	if err != nil {
		return "", fmt.Errorf("determining executable path: %w", err)
	}
	resolved, err := evalSymlinks(p)
	if err != nil {
		return "", fmt.Errorf("resolving symlinks for %s: %w", p, err)
	}
	return resolved, nil
}

// WithDefaults returns a copy of e with empty fields filled in. InstallPath
// falls back to the running executable.
func (e Env) WithDefaults() (Env, error) {
	if e.ToolName == "" {
		e.ToolName = DefaultToolName
	}
	if e.Platform == "" {
		e.Platform = DefaultPlatform()
	}
	if e.StagingPath == "" {
		e.StagingPath = DefaultStagingPath()
	}
	if e.ReleaseRepo == "" {
		e.ReleaseRepo = DefaultReleaseRepo
	}
	if e.InstallPath == "" {
		p, err := ResolveInstallPath()
		if err != nil {
			return e, err
		}
		e.InstallPath = p
	}
	return e, nil
}

// AssetName is the release asset for this platform.
func (e Env) AssetName() string {
	return e.ToolName + "-" + e.Platform
}

// DownloadURL is the conventional download location of the asset for a
// release version.
func (e Env) DownloadURL(version string) string {
	return fmt.Sprintf("%s/releases/download/%s/%s", strings.TrimRight(e.ReleaseRepo, "/"), version, e.AssetName())
}
