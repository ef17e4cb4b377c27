// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/teammv/mvc/internal/testutil"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	testutil.MustWriteFile(t, dir, "config.cue", content)
}

func TestConfigPath(t *testing.T) {
	t.Parallel()
	c := newCLI(t, "")

	if err := c.run("config", "path"); err != nil {
		t.Fatalf("run() error: %v", err)
	}
	want := filepath.Join(c.dir, "config.cue")
	if got := strings.TrimSpace(c.stdout.String()); got != want {
		t.Errorf("config path = %q, want %q", got, want)
	}
}

func TestConfigInit(t *testing.T) {
	t.Parallel()
	c := newCLI(t, "")

	if err := c.run("config", "init"); err != nil {
		t.Fatalf("run() error: %v", err)
	}
	path := filepath.Join(c.dir, "config.cue")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config init did not create %s: %v", path, err)
	}
	if !strings.Contains(c.stdout.String(), "Created configuration") {
		t.Errorf("stdout = %q, want creation notice", c.stdout.String())
	}

	c.stdout.Reset()
	if err := c.run("config", "init"); err != nil {
		t.Fatalf("second run() error: %v", err)
	}
	if !strings.Contains(c.stdout.String(), "already exists") {
		t.Errorf("stdout = %q, want already exists notice", c.stdout.String())
	}
}

func TestConfigShow(t *testing.T) {
	t.Parallel()
	c := newCLI(t, "")
	writeConfig(t, c.dir, `ui: {
	color_scheme: "light"
}
update: {
	version_url: "https://example.test/version"
}
`)

	if err := c.run("config", "show"); err != nil {
		t.Fatalf("run() error: %v", err)
	}
	out := c.stdout.String()
	for _, want := range []string{`color_scheme: "light"`, "https://example.test/version"} {
		if !strings.Contains(out, want) {
			t.Errorf("config show output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigShow_InvalidFileFails(t *testing.T) {
	t.Parallel()
	c := newCLI(t, "")
	writeConfig(t, c.dir, `log: max_backups: -1`)

	err := c.run("config", "show")
	if got := exitCode(t, err); got != 1 {
		t.Errorf("exit code = %d, want 1", got)
	}
}

func TestConfigFlag(t *testing.T) {
	t.Parallel()
	c := newCLI(t, "")
	other := testutil.MustWriteFile(t, t.TempDir(), "alt.cue", `ui: verbose: true`)

	if err := c.run("--config", other, "config", "path"); err != nil {
		t.Fatalf("run() error: %v", err)
	}
	if got := strings.TrimSpace(c.stdout.String()); got != other {
		t.Errorf("config path = %q, want %q", got, other)
	}
}
