// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/teammv/mvc/pkg/scriptfile"
)

// VirtualBackend interprets command text with the embedded mvdan/sh POSIX
// interpreter. Unlike the shell backend, quoting, pipes and variables work,
// and behavior does not depend on the host's shell.
type VirtualBackend struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	dir    string
}

// NewVirtualBackend creates a VirtualBackend with the given stdio and working
// directory (empty for the current directory).
func NewVirtualBackend(stdin io.Reader, stdout, stderr io.Writer, dir string) *VirtualBackend {
	return &VirtualBackend{stdin: stdin, stdout: stdout, stderr: stderr, dir: dir}
}

// Type returns scriptfile.BackendVirtual.
func (b *VirtualBackend) Type() scriptfile.BackendType {
	return scriptfile.BackendVirtual
}

// Run parses and interprets req.Command. Detach is not supported by an
// in-process interpreter; such requests run to completion.
func (b *VirtualBackend) Run(ctx context.Context, req Request) (*Result, error) {
	prog, err := syntax.NewParser().Parse(strings.NewReader(req.Command), "script")
	if err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}

	if req.Detach {
		slog.Debug("virtual backend ignores detach; running to completion")
	}

	dir := b.dir
	if dir == "" {
		if dir, err = os.Getwd(); err != nil {
			return nil, fmt.Errorf("failed to determine working directory: %w", err)
		}
	}

	runner, err := interp.New(
		interp.Dir(dir),
		interp.Env(expand.ListEnviron(os.Environ()...)),
		interp.StdIO(b.stdin, b.stdout, b.stderr),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create interpreter: %w", err)
	}

	if err := runner.Run(ctx, prog); err != nil {
		var status interp.ExitStatus
		if errors.As(err, &status) {
			return &Result{ExitCode: int(status)}, nil
		}
		return nil, fmt.Errorf("script execution failed: %w", err)
	}
	return &Result{}, nil
}
