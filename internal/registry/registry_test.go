// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/teammv/mvc/internal/issue"
	"github.com/teammv/mvc/pkg/scriptfile"
)

func writeScripts(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scripts.cue")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing scripts file: %v", err)
	}
	return path
}

func TestResolve_Found(t *testing.T) {
	t.Parallel()

	path := writeScripts(t, `scripts: [
	{name: "push", args: 1, script: "git push origin {0}", type: "shell"},
	{name: "build", script: "make"},
]`)
	r := New(path)

	def, err := r.Resolve(context.Background(), "build")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if def.Script != "make" {
		t.Errorf("Script = %q, want %q", def.Script, "make")
	}
}

func TestResolve_FirstMatchWins(t *testing.T) {
	t.Parallel()

	path := writeScripts(t, `scripts: [
	{name: "deploy", script: "echo first"},
	{name: "other", script: "echo other"},
	{name: "deploy", script: "echo second"},
]`)
	r := New(path)

	for range 3 {
		def, err := r.Resolve(context.Background(), "deploy")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if def.Script != "echo first" {
			t.Fatalf("Script = %q, want the first entry", def.Script)
		}
	}
}

func TestResolve_NotFound(t *testing.T) {
	t.Parallel()

	r := New(writeScripts(t, `scripts: [{name: "push", script: "git push"}]`))

	_, err := r.Resolve(context.Background(), "deploy")
	if !errors.Is(err, ErrScriptNotFound) {
		t.Errorf("Resolve() error = %v, want ErrScriptNotFound", err)
	}
}

func TestResolve_MissingFileIsEmptyRegistry(t *testing.T) {
	t.Parallel()

	r := New(filepath.Join(t.TempDir(), "absent.cue"))
	_, err := r.Resolve(context.Background(), "push")
	if !errors.Is(err, ErrScriptNotFound) {
		t.Errorf("Resolve() error = %v, want ErrScriptNotFound", err)
	}
}

func TestResolve_ReloadsEveryCall(t *testing.T) {
	t.Parallel()

	path := writeScripts(t, `scripts: [{name: "a", script: "one"}]`)
	r := New(path)

	if _, err := r.Resolve(context.Background(), "b"); !errors.Is(err, ErrScriptNotFound) {
		t.Fatalf("expected not found before edit, got %v", err)
	}

	if err := os.WriteFile(path, []byte(`scripts: [{name: "b", script: "two"}]`), 0o644); err != nil {
		t.Fatal(err)
	}

	def, err := r.Resolve(context.Background(), "b")
	if err != nil {
		t.Fatalf("Resolve() after edit error = %v", err)
	}
	if def.Script != "two" {
		t.Errorf("Script = %q, want %q", def.Script, "two")
	}
}

func TestLoad_MalformedFileIsActionable(t *testing.T) {
	t.Parallel()

	r := New(writeScripts(t, `scripts: [{name: 1}]`))
	_, err := r.Resolve(context.Background(), "x")
	if err == nil {
		t.Fatal("expected error")
	}
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("error %T is not an ActionableError", err)
	}
	if !ae.HasSuggestions() {
		t.Error("expected suggestions on load failure")
	}
}

func TestWithLoader(t *testing.T) {
	t.Parallel()

	calls := 0
	r := New("ignored", WithLoader(func(path string) (*scriptfile.File, error) {
		calls++
		return &scriptfile.File{Scripts: []scriptfile.Definition{{Name: "x", Script: "y", Type: scriptfile.BackendShell}}}, nil
	}))

	if _, err := r.Resolve(context.Background(), "x"); err != nil {
		t.Fatal(err)
	}
	if _, err := r.List(context.Background()); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("loader called %d times, want 2", calls)
	}
}

func TestLoad_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New("unused.cue").Load(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}
