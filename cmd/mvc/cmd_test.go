// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/fang"

	"github.com/teammv/mvc/internal/testutil"
)

const testScripts = `scripts: [
	{name: "push", args: 1, script: "git push origin {0}", type: "shell"},
	{name: "build", args: 0, script: "go build ./...", type: "shell", description: "Build everything"},
	{name: "deploy", args: 2, script: "kubectl rollout {0} {1}", type: "sh"},
]
`

func TestHelperProcess(t *testing.T) { testutil.RunHelperProcess() }

// cli runs the command tree against a temporary configuration directory with
// process creation replaced by a recorder.
type cli struct {
	app      *App
	dir      string
	recorder *testutil.CommandRecorder
	stdout   *bytes.Buffer
	stderr   *bytes.Buffer
}

func newCLI(t *testing.T, scripts string) *cli {
	t.Helper()
	dir := t.TempDir()
	if scripts != "" {
		testutil.MustWriteFile(t, dir, "scripts.cue", scripts)
	}
	return &cli{
		dir:      dir,
		recorder: testutil.NewCommandRecorder(),
		stdout:   &bytes.Buffer{},
		stderr:   &bytes.Buffer{},
	}
}

func (c *cli) run(args ...string) error {
	c.app = NewApp(Dependencies{
		Stdin:       strings.NewReader(""),
		Stdout:      c.stdout,
		Stderr:      c.stderr,
		ConfigDir:   c.dir,
		CommandFunc: c.recorder.CommandContext,
	})
	root := NewRootCommand(c.app)
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("error %v is not an ExitError", err)
	}
	return exitErr.Code
}

func TestRoot_NoArgs(t *testing.T) {
	t.Parallel()
	c := newCLI(t, "")

	if err := c.run(); err != nil {
		t.Fatalf("run() error: %v", err)
	}
	if got := c.stdout.String(); got != noCommandMessage+"\n" {
		t.Errorf("stdout = %q, want %q", got, noCommandMessage+"\n")
	}
}

func TestAlias_RunsScript(t *testing.T) {
	t.Parallel()
	c := newCLI(t, testScripts)

	if err := c.run("push", "main"); err != nil {
		t.Fatalf("run() error: %v", err)
	}
	c.recorder.AssertInvoked(t, "git", "push", "origin", "main")
}

func TestAlias_PassesFlagsToScript(t *testing.T) {
	t.Parallel()
	c := newCLI(t, testScripts)

	if err := c.run("push", "--force"); err != nil {
		t.Fatalf("run() error: %v", err)
	}
	c.recorder.AssertInvoked(t, "git", "push", "origin", "--force")
}

//nolint:paralleltest // debug logging goes to the process-wide slog default
func TestAlias_PersistentFlagBeforeAlias(t *testing.T) {
	c := newCLI(t, "")
	team := filepath.Join(c.dir, "team")
	testutil.MustWriteFile(t, team, "scripts.cue", testScripts)
	testutil.MustWriteFile(t, team, "config.cue", `scripts_file: "`+filepath.ToSlash(filepath.Join(team, "scripts.cue"))+`"`)

	if err := c.run("--verbose", "--config", filepath.Join(team, "config.cue"), "push", "main"); err != nil {
		t.Fatalf("run() error: %v", err)
	}
	c.recorder.AssertInvoked(t, "git", "push", "origin", "main")
	if !c.app.verbose {
		t.Error("--verbose before the alias was not applied")
	}
}

//nolint:paralleltest // debug logging goes to the process-wide slog default
func TestRunCommand_PersistentFlagBeforeRun(t *testing.T) {
	c := newCLI(t, testScripts)

	if err := c.run("-v", "run", "deploy", "undo", "web"); err != nil {
		t.Fatalf("run() error: %v", err)
	}
	c.recorder.AssertInvoked(t, "kubectl", "rollout", "undo", "web")
	if !c.app.verbose {
		t.Error("-v before run was not applied")
	}
}

func TestAlias_DoubleDashPassesRootFlagToScript(t *testing.T) {
	t.Parallel()
	c := newCLI(t, testScripts)

	if err := c.run("push", "--", "-v"); err != nil {
		t.Fatalf("run() error: %v", err)
	}
	c.recorder.AssertInvoked(t, "git", "push", "origin", "-v")
}

func TestSplitRootFlags(t *testing.T) {
	t.Parallel()
	c := newCLI(t, "")
	flags := NewRootCommand(NewApp(Dependencies{ConfigDir: c.dir})).PersistentFlags()

	tests := []struct {
		name       string
		args       []string
		wantPrefix []string
		wantRest   []string
	}{
		{"none", []string{"main", "-v"}, []string{}, []string{"main", "-v"}},
		{"bool long", []string{"--verbose", "main"}, []string{"--verbose"}, []string{"main"}},
		{"bool short", []string{"-v", "main"}, []string{"-v"}, []string{"main"}},
		{"value separate", []string{"--config", "x.cue", "main"}, []string{"--config", "x.cue"}, []string{"main"}},
		{"value inline", []string{"--config=x.cue", "main"}, []string{"--config=x.cue"}, []string{"main"}},
		{"unknown flag stops", []string{"--force", "-v"}, []string{}, []string{"--force", "-v"}},
		{"double dash", []string{"-v", "--", "-v"}, []string{"-v"}, []string{"-v"}},
		{"missing value", []string{"--config"}, []string{"--config"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			prefix, rest := splitRootFlags(flags, tt.args)
			if !slices.Equal(prefix, tt.wantPrefix) {
				t.Errorf("prefix = %q, want %q", prefix, tt.wantPrefix)
			}
			if !slices.Equal(rest, tt.wantRest) {
				t.Errorf("rest = %q, want %q", rest, tt.wantRest)
			}
		})
	}
}

func TestAlias_HelpFlagPrintsPage(t *testing.T) {
	t.Parallel()
	c := newCLI(t, testScripts)

	if err := c.run("push", "--help"); err != nil {
		t.Fatalf("run() error: %v", err)
	}
	if !strings.Contains(c.stdout.String(), "push") {
		t.Errorf("stdout = %q, want the push help page", c.stdout.String())
	}
	c.recorder.AssertNotInvoked(t)
}

func TestAlias_MissingScript(t *testing.T) {
	t.Parallel()
	c := newCLI(t, testScripts)

	if err := c.run("commit", "fix"); err != nil {
		t.Fatalf("run() error: %v", err)
	}
	want := "Could not find the commit script, please create one using 'mvc script'.\n"
	if got := c.stdout.String(); got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
	c.recorder.AssertNotInvoked(t)
}

func TestCustomScript(t *testing.T) {
	t.Parallel()
	c := newCLI(t, testScripts)

	if err := c.run("deploy", "staging", "--force"); err != nil {
		t.Fatalf("run() error: %v", err)
	}
	c.recorder.AssertInvoked(t, "kubectl", "rollout", "staging", "--force")
}

func TestCustomScript_Unknown(t *testing.T) {
	t.Parallel()
	c := newCLI(t, testScripts)

	if err := c.run("nope", "x"); err != nil {
		t.Fatalf("run() error: %v", err)
	}
	if got, want := c.stdout.String(), "Unkown subcommand 'nope'.\n"; got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
}

func TestRunCommand(t *testing.T) {
	t.Parallel()
	c := newCLI(t, testScripts)

	if err := c.run("run", "build"); err != nil {
		t.Fatalf("run() error: %v", err)
	}
	c.recorder.AssertInvoked(t, "go", "build", "./...")
}

func TestRunCommand_NoNameShowsHelp(t *testing.T) {
	t.Parallel()
	c := newCLI(t, testScripts)

	if err := c.run("run"); err != nil {
		t.Fatalf("run() error: %v", err)
	}
	if !strings.Contains(c.stdout.String(), "Run any script") {
		t.Errorf("stdout = %q, want run usage", c.stdout.String())
	}
	c.recorder.AssertNotInvoked(t)
}

func TestScript_NonZeroExitPropagates(t *testing.T) {
	t.Parallel()
	c := newCLI(t, testScripts)
	c.recorder.ExitCode = 3

	err := c.run("build")
	if got := exitCode(t, err); got != 3 {
		t.Errorf("exit code = %d, want 3", got)
	}
}

func TestScript_MalformedFileFails(t *testing.T) {
	t.Parallel()
	c := newCLI(t, "scripts: [ {name: ")

	err := c.run("push", "main")
	if got := exitCode(t, err); got != 1 {
		t.Errorf("exit code = %d, want 1", got)
	}
	if !strings.Contains(c.stderr.String(), "Error") {
		t.Errorf("stderr = %q, want an error report", c.stderr.String())
	}
	c.recorder.AssertNotInvoked(t)
}

func TestBrokenConfigFallsBackToDefaults(t *testing.T) {
	t.Parallel()
	c := newCLI(t, testScripts)
	testutil.MustWriteFile(t, c.dir, "config.cue", `ui: color_scheme: "sepia"`)

	if err := c.run("push", "main"); err != nil {
		t.Fatalf("run() error: %v", err)
	}
	if !strings.Contains(c.stderr.String(), "Warning") {
		t.Errorf("stderr = %q, want a config warning", c.stderr.String())
	}
	c.recorder.AssertInvoked(t, "git", "push", "origin", "main")
}

func TestErrorHandler_SkipsExitErrors(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	errorHandler(&buf, fang.Styles{}, &ExitError{Code: 2})
	if buf.Len() != 0 {
		t.Errorf("errorHandler wrote %q for an ExitError", buf.String())
	}
}

func TestExitError(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	tests := []struct {
		err  *ExitError
		want string
	}{
		{&ExitError{Code: 4}, "exit status 4"},
		{&ExitError{Code: 1, Err: cause}, "boom"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
	if !errors.Is(&ExitError{Code: 1, Err: cause}, cause) {
		t.Error("ExitError should unwrap to its cause")
	}
}
