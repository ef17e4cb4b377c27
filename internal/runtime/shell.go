// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"

	"github.com/teammv/mvc/pkg/scriptfile"
)

// ShellBackend hands command text to the Executor as a single host process.
type ShellBackend struct {
	exec *Executor
}

// NewShellBackend creates a ShellBackend spawning through exec.
func NewShellBackend(exec *Executor) *ShellBackend {
	return &ShellBackend{exec: exec}
}

// Type returns scriptfile.BackendShell.
func (b *ShellBackend) Type() scriptfile.BackendType {
	return scriptfile.BackendShell
}

// Run starts the command, waiting for it unless req.Detach is set.
func (b *ShellBackend) Run(ctx context.Context, req Request) (*Result, error) {
	p, err := b.exec.Run(ctx, req.Command, !req.Detach)
	if err != nil {
		return nil, err
	}
	if req.Detach {
		return &Result{Detached: true}, nil
	}

	code, err := p.Wait()
	if err != nil {
		return nil, err
	}
	return &Result{ExitCode: code}, nil
}
