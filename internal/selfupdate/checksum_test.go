// SPDX-License-Identifier: MPL-2.0

package selfupdate

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseChecksums(t *testing.T) {
	t.Parallel()

	good := sha256Hex("linux")
	input := strings.Join([]string{
		good + "  mvc-linux",
		strings.ToUpper(sha256Hex("darwin")) + "  *mvc-darwin",
		"",
		"not-a-hash  mvc-windows",
		good + " single-space",
	}, "\n")

	sums, err := ParseChecksums(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseChecksums() error: %v", err)
	}
	if len(sums) != 2 {
		t.Fatalf("got %d entries, want 2: %v", len(sums), sums)
	}
	if sums["mvc-linux"] != good {
		t.Errorf("mvc-linux = %q", sums["mvc-linux"])
	}
	if sums["mvc-darwin"] != sha256Hex("darwin") {
		t.Errorf("mvc-darwin digest should be lowercased, got %q", sums["mvc-darwin"])
	}
}

func TestChecksums_Verify(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "artifact")
	if err := os.WriteFile(path, []byte("linux"), 0o644); err != nil {
		t.Fatal(err)
	}

	sums := Checksums{"mvc-linux": sha256Hex("linux"), "mvc-darwin": sha256Hex("other")}

	if err := sums.Verify(path, "mvc-linux"); err != nil {
		t.Errorf("matching digest: %v", err)
	}
	if err := sums.Verify(path, "mvc-freebsd"); err != nil {
		t.Errorf("unlisted asset should not be verified: %v", err)
	}

	err := sums.Verify(path, "mvc-darwin")
	var ce *ChecksumError
	if !errors.As(err, &ce) || !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("err = %v, want ChecksumError", err)
	}
	if ce.Got != sha256Hex("linux") {
		t.Errorf("Got = %q", ce.Got)
	}

	var none Checksums
	if err := none.Verify(path, "mvc-linux"); err != nil {
		t.Errorf("nil Checksums should verify nothing: %v", err)
	}
}

func TestEnv(t *testing.T) {
	t.Parallel()

	env := Env{ToolName: "mvc", Platform: "linux", ReleaseRepo: "https://github.com/TeamMV/mvc/"}
	if got := env.DownloadURL("v1.2.0"); got != "https://github.com/TeamMV/mvc/releases/download/v1.2.0/mvc-linux" {
		t.Errorf("DownloadURL() = %q", got)
	}

	full, err := Env{InstallPath: "/usr/bin/mvc"}.WithDefaults()
	if err != nil {
		t.Fatalf("WithDefaults() error: %v", err)
	}
	if full.ToolName != DefaultToolName || full.ReleaseRepo != DefaultReleaseRepo || full.StagingPath == "" || full.Platform == "" {
		t.Errorf("WithDefaults() = %+v", full)
	}
	if full.InstallPath != "/usr/bin/mvc" {
		t.Errorf("InstallPath overwritten: %q", full.InstallPath)
	}
}

//nolint:paralleltest // replaces package-level executable seams
func TestEnv_WithDefaultsResolvesExecutable(t *testing.T) {
	origExe, origEval := osExecutable, evalSymlinks
	t.Cleanup(func() { osExecutable, evalSymlinks = origExe, origEval })

	osExecutable = func() (string, error) { return "/usr/local/bin/mvc-link", nil }
	evalSymlinks = func(p string) (string, error) { return "/opt/mvc/bin/mvc", nil }

	env, err := Env{}.WithDefaults()
	if err != nil {
		t.Fatalf("WithDefaults() error: %v", err)
	}
	if env.InstallPath != "/opt/mvc/bin/mvc" {
		t.Errorf("InstallPath = %q", env.InstallPath)
	}

	evalSymlinks = func(string) (string, error) { return "", os.ErrNotExist }
	if _, err := (Env{}).WithDefaults(); err == nil {
		t.Error("expected error when the executable cannot be resolved")
	}
}
