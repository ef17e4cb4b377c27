// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// ErrEmptyCommand is returned when the command text has no program name.
var ErrEmptyCommand = errors.New("empty command")

type (
	// CommandFunc builds the process for a program and its arguments.
	// exec.CommandContext satisfies it.
	CommandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

	// Executor spawns host processes from whitespace-separated command text.
	Executor struct {
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer

		command CommandFunc
	}

	// ExecutorOption configures an Executor.
	ExecutorOption func(*Executor)

	// Process is a handle on a started host process.
	Process struct {
		cmd      *exec.Cmd
		waitOnce sync.Once
		exitCode int
		err      error
	}
)

// WithStdio sets the standard streams of spawned processes.
func WithStdio(stdin io.Reader, stdout, stderr io.Writer) ExecutorOption {
	return func(e *Executor) {
		e.Stdin = stdin
		e.Stdout = stdout
		e.Stderr = stderr
	}
}

// WithCommandFunc replaces process construction, used by tests.
func WithCommandFunc(fn CommandFunc) ExecutorOption {
	return func(e *Executor) {
		e.command = fn
	}
}

// NewExecutor creates an Executor attached to the current process's stdio.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		command: exec.CommandContext,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SplitCommand splits command text into a program name and its arguments on
// runs of whitespace.
func SplitCommand(command string) (string, []string, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return "", nil, ErrEmptyCommand
	}
	return fields[0], fields[1:], nil
}

// Run starts command as one host process. With wait set, Run blocks until
// the process exits and the returned handle holds its exit status. Without
// it, Run returns as soon as the process has started; the process is not
// bound to ctx and nothing guarantees it finishes before the caller moves on.
func (e *Executor) Run(ctx context.Context, command string, wait bool) (*Process, error) {
	name, args, err := SplitCommand(command)
	if err != nil {
		return nil, err
	}

	// A detached process must outlive cancellation of the invoking command.
	procCtx := ctx
	if !wait {
		procCtx = context.WithoutCancel(ctx)
	}

	cmd := e.command(procCtx, name, args...)
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr

	slog.Debug("starting process", "program", name, "args", args, "wait", wait)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", name, err)
	}

	p := &Process{cmd: cmd}
	if wait {
		_, _ = p.Wait() // status is kept on the handle
	}
	return p, nil
}

// Pid returns the operating system process id.
func (p *Process) Pid() int {
	if p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

// Wait blocks until the process exits and returns its exit code. A process
// that ran and exited nonzero is not an error; err is reserved for failures
// to wait on it at all. Repeated calls return the first result.
func (p *Process) Wait() (int, error) {
	p.waitOnce.Do(func() {
		err := p.cmd.Wait()
		if err == nil {
			return
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			p.exitCode = exitErr.ExitCode()
			return
		}
		p.exitCode = 1
		p.err = fmt.Errorf("failed to wait for process: %w", err)
	})
	return p.exitCode, p.err
}
