// SPDX-License-Identifier: MPL-2.0

package dispatch

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/teammv/mvc/internal/registry"
	"github.com/teammv/mvc/internal/runtime"
	"github.com/teammv/mvc/internal/testutil"
	"github.com/teammv/mvc/pkg/scriptfile"
)

const pushScripts = `scripts: [
	{name: "push", args: 1, script: "git push origin {0}", type: "shell"},
	{name: "commit", args: 1, script: "git commit -m {0}", type: "sh", detach: true},
	{name: "lint", args: 0, script: "golangci-lint run", type: "docker"},
]
`

func TestHelperProcess(t *testing.T) { testutil.RunHelperProcess() }

type fixture struct {
	dispatcher *Dispatcher
	recorder   *testutil.CommandRecorder
	out        *bytes.Buffer
}

func newFixture(t *testing.T, scripts string) *fixture {
	t.Helper()

	path := testutil.MustWriteFile(t, t.TempDir(), "scripts.cue", scripts)
	rec := testutil.NewCommandRecorder()
	exec := runtime.NewExecutor(
		runtime.WithStdio(strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{}),
		runtime.WithCommandFunc(rec.CommandContext),
	)
	var out bytes.Buffer
	d := New(registry.New(path), runtime.NewRegistry(runtime.NewShellBackend(exec)), WithOutput(&out))
	return &fixture{dispatcher: d, recorder: rec, out: &out}
}

func TestDispatch_PushWithArgument(t *testing.T) {
	t.Parallel()
	f := newFixture(t, pushScripts)

	got := f.dispatcher.Dispatch(context.Background(), "push", []string{"push", "main"})

	if got.Status != StatusExecuted {
		t.Fatalf("Status = %v, want executed (err: %v)", got.Status, got.Err)
	}
	if got.Command != "git push origin main" {
		t.Errorf("Command = %q, want %q", got.Command, "git push origin main")
	}
	f.recorder.AssertInvoked(t, "git", "push", "origin", "main")
}

func TestDispatch_PushWithoutArgumentPadsEmpty(t *testing.T) {
	t.Parallel()
	f := newFixture(t, pushScripts)

	got := f.dispatcher.Dispatch(context.Background(), "push", []string{"push"})

	if got.Status != StatusExecuted {
		t.Fatalf("Status = %v, want executed (err: %v)", got.Status, got.Err)
	}
	if got.Command != "git push origin " {
		t.Errorf("Command = %q, want %q", got.Command, "git push origin ")
	}
	f.recorder.AssertInvoked(t, "git", "push", "origin")
}

func TestDispatch_ExtraArgumentsIgnored(t *testing.T) {
	t.Parallel()
	f := newFixture(t, pushScripts)

	got := f.dispatcher.Dispatch(context.Background(), "push", []string{"push", "main", "--force"})

	if got.Command != "git push origin main" {
		t.Errorf("Command = %q, want %q", got.Command, "git push origin main")
	}
}

func TestDispatch_NonZeroExit(t *testing.T) {
	t.Parallel()
	f := newFixture(t, pushScripts)
	f.recorder.ExitCode = 128

	got := f.dispatcher.Dispatch(context.Background(), "push", []string{"push", "main"})

	if got.Status != StatusExecuted || got.ExitCode != 128 {
		t.Errorf("Outcome = %+v, want executed with exit 128", got)
	}
}

func TestDispatch_DetachedLegacyShellType(t *testing.T) {
	t.Parallel()
	f := newFixture(t, pushScripts)

	got := f.dispatcher.Dispatch(context.Background(), "commit", []string{"commit", "wip"})

	if got.Status != StatusDetached {
		t.Fatalf("Status = %v, want detached (err: %v)", got.Status, got.Err)
	}
	f.recorder.AssertInvoked(t, "git", "commit", "-m", "wip")
}

func TestDispatch_NotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want string
	}{
		{name: "deploy", want: "Unkown subcommand 'deploy'.\n"},
		{name: "build", want: "Could not find the build script, please create one using 'mvc script'.\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t, pushScripts)

			got := f.dispatcher.Dispatch(context.Background(), tt.name, []string{tt.name})

			if got.Status != StatusNotFound {
				t.Errorf("Status = %v, want not_found", got.Status)
			}
			if got.Err != nil {
				t.Errorf("Err = %v, want nil", got.Err)
			}
			if f.out.String() != tt.want {
				t.Errorf("output = %q, want %q", f.out.String(), tt.want)
			}
			f.recorder.AssertNotInvoked(t)
		})
	}
}

func TestDispatch_MissingScriptsFileIsNotFound(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	rec := testutil.NewCommandRecorder()
	exec := runtime.NewExecutor(runtime.WithCommandFunc(rec.CommandContext))
	d := New(registry.New(t.TempDir()+"/absent.cue"), runtime.NewDefaultRegistry(exec), WithOutput(&out))

	got := d.Dispatch(context.Background(), "push", []string{"push"})

	if got.Status != StatusNotFound {
		t.Errorf("Status = %v, want not_found", got.Status)
	}
	rec.AssertNotInvoked(t)
}

func TestDispatch_UnknownBackend(t *testing.T) {
	t.Parallel()
	f := newFixture(t, pushScripts)

	got := f.dispatcher.Dispatch(context.Background(), "lint", []string{"lint"})

	if got.Status != StatusUnknownBackend {
		t.Errorf("Status = %v, want unknown_backend", got.Status)
	}
	if !strings.Contains(f.out.String(), "unsupported type 'docker'") {
		t.Errorf("output = %q", f.out.String())
	}
	f.recorder.AssertNotInvoked(t)
}

func TestDispatch_MalformedScriptsFile(t *testing.T) {
	t.Parallel()
	f := newFixture(t, `scripts: [{name: "push", args: -1, script: "x"}]`)

	got := f.dispatcher.Dispatch(context.Background(), "push", []string{"push"})

	if got.Status != StatusFailed || got.Err == nil {
		t.Errorf("Outcome = %+v, want failed with error", got)
	}
	f.recorder.AssertNotInvoked(t)
}

type stubResolver struct{ err error }

func (s stubResolver) Resolve(context.Context, string) (*scriptfile.Definition, error) {
	return nil, s.err
}

func TestDispatch_ResolverErrorIsFailed(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	d := New(stubResolver{err: boom}, runtime.NewRegistry(), WithOutput(&bytes.Buffer{}))

	got := d.Dispatch(context.Background(), "push", []string{"push"})
	if got.Status != StatusFailed || !errors.Is(got.Err, boom) {
		t.Errorf("Outcome = %+v, want failed wrapping boom", got)
	}
}

func TestStatus_String(t *testing.T) {
	t.Parallel()

	if StatusNotFound.String() != "not_found" {
		t.Errorf("StatusNotFound.String() = %q", StatusNotFound.String())
	}
	if Status(42).String() != "Status(42)" {
		t.Errorf("Status(42).String() = %q", Status(42).String())
	}
}
