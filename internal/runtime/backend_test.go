// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/teammv/mvc/internal/testutil"
	"github.com/teammv/mvc/pkg/scriptfile"
)

func TestRegistry(t *testing.T) {
	t.Parallel()

	reg := NewDefaultRegistry(NewExecutor())

	want := []scriptfile.BackendType{scriptfile.BackendShell, scriptfile.BackendVirtual}
	if got := reg.Types(); !slices.Equal(got, want) {
		t.Errorf("Types() = %v, want %v", got, want)
	}

	b, err := reg.Get(scriptfile.BackendShell)
	if err != nil {
		t.Fatalf("Get(shell) error: %v", err)
	}
	if b.Type() != scriptfile.BackendShell {
		t.Errorf("Get(shell).Type() = %q", b.Type())
	}

	if _, err := reg.Get("docker"); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("Get(docker) err = %v, want ErrUnknownBackend", err)
	}
}

func TestShellBackend_Run(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		exitCode int
		detach   bool
		want     Result
	}{
		{name: "waited success", want: Result{}},
		{name: "waited failure", exitCode: 128, want: Result{ExitCode: 128}},
		{name: "detached", exitCode: 1, detach: true, want: Result{Detached: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := testutil.NewCommandRecorder()
			rec.ExitCode = tt.exitCode
			b := NewShellBackend(newTestExecutor(rec, &bytes.Buffer{}))

			res, err := b.Run(context.Background(), Request{Command: "git push origin main", Detach: tt.detach})
			if err != nil {
				t.Fatalf("Run() error: %v", err)
			}
			if *res != tt.want {
				t.Errorf("Run() = %+v, want %+v", *res, tt.want)
			}
			rec.AssertInvoked(t, "git", "push", "origin", "main")
		})
	}
}

func TestVirtualBackend_Run(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		command  string
		wantOut  string
		wantCode int
		wantErr  bool
	}{
		{name: "echo", command: "echo hello", wantOut: "hello\n"},
		{name: "quoting", command: `echo "a  b"`, wantOut: "a  b\n"},
		{name: "pipes and builtins", command: "echo one two | { read a b; echo $b; }", wantOut: "two\n"},
		{name: "exit status", command: "exit 4", wantCode: 4},
		{name: "parse error", command: "echo 'unterminated", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var stdout bytes.Buffer
			b := NewVirtualBackend(strings.NewReader(""), &stdout, &bytes.Buffer{}, t.TempDir())

			res, err := b.Run(context.Background(), Request{Command: tt.command})
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Run() error: %v", err)
			}
			if res.ExitCode != tt.wantCode {
				t.Errorf("ExitCode = %d, want %d", res.ExitCode, tt.wantCode)
			}
			if stdout.String() != tt.wantOut {
				t.Errorf("stdout = %q, want %q", stdout.String(), tt.wantOut)
			}
		})
	}
}
