// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
)

const helperProcessEnv = "GO_WANT_HELPER_PROCESS"

type (
	// CommandRecorder replaces process creation in tests. Every command is
	// recorded, then swapped for a re-execution of the test binary that runs
	// the package's TestHelperProcess with the configured output and exit code.
	CommandRecorder struct {
		// ExitCode is the exit status of every stub process.
		ExitCode int
		// Stdout is written to the stub's standard output.
		Stdout string

		mu          sync.Mutex
		invocations []Invocation
	}

	// Invocation is one recorded process launch.
	Invocation struct {
		Name string
		Args []string
	}
)

// String renders the invocation as a space-joined command line.
func (i Invocation) String() string {
	return strings.TrimSpace(i.Name + " " + strings.Join(i.Args, " "))
}

// NewCommandRecorder creates a recorder whose stub processes exit 0.
func NewCommandRecorder() *CommandRecorder {
	return &CommandRecorder{}
}

// CommandContext has the signature of exec.CommandContext.
func (m *CommandRecorder) CommandContext(_ context.Context, name string, args ...string) *exec.Cmd {
	m.mu.Lock()
	m.invocations = append(m.invocations, Invocation{Name: name, Args: slices.Clone(args)})
	m.mu.Unlock()

	cs := []string{"-test.run=TestHelperProcess", "--", name}
	cs = append(cs, args...)
	//nolint:gosec // re-executes the test binary
	cmd := exec.Command(os.Args[0], cs...) //nolint:noctx // the stub exits on its own
	cmd.Env = []string{
		helperProcessEnv + "=1",
		fmt.Sprintf("GO_HELPER_EXIT_CODE=%d", m.ExitCode),
		"GO_HELPER_STDOUT=" + m.Stdout,
	}
	return cmd
}

// Invocations returns a copy of the recorded launches in order.
func (m *CommandRecorder) Invocations() []Invocation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.invocations)
}

// AssertInvoked fails the test unless exactly one process was launched with
// the given program name and arguments.
func (m *CommandRecorder) AssertInvoked(t testing.TB, name string, args ...string) {
	t.Helper()
	got := m.Invocations()
	if len(got) != 1 {
		t.Fatalf("expected 1 process launch, got %d: %v", len(got), got)
	}
	if got[0].Name != name || !slices.Equal(got[0].Args, args) {
		t.Errorf("launched %q %q, want %q %q", got[0].Name, got[0].Args, name, args)
	}
}

// AssertNotInvoked fails the test if any process was launched.
func (m *CommandRecorder) AssertNotInvoked(t testing.TB) {
	t.Helper()
	if got := m.Invocations(); len(got) != 0 {
		t.Errorf("expected no process launch, got %v", got)
	}
}

// RunHelperProcess is the body of a package's TestHelperProcess. It does
// nothing unless the test binary was started by a CommandRecorder, in which
// case it writes the configured output and exits.
//
//	func TestHelperProcess(t *testing.T) { testutil.RunHelperProcess() }
func RunHelperProcess() {
	if os.Getenv(helperProcessEnv) != "1" {
		return
	}
	if stdout := os.Getenv("GO_HELPER_STDOUT"); stdout != "" {
		fmt.Fprint(os.Stdout, stdout)
	}
	code, _ := strconv.Atoi(os.Getenv("GO_HELPER_EXIT_CODE"))
	os.Exit(code)
}
