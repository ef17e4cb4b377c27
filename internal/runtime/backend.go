// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/teammv/mvc/pkg/scriptfile"
)

// ErrUnknownBackend is returned when no backend is registered for a type.
var ErrUnknownBackend = errors.New("unknown backend type")

type (
	// Request is a fully templated command ready to run.
	Request struct {
		// Command is the command text after argument substitution.
		Command string
		// Detach starts the command without waiting for it.
		Detach bool
	}

	// Result reports how a backend run ended.
	Result struct {
		// ExitCode is the command's exit status. Meaningless when Detached.
		ExitCode int
		// Detached is true when the command was started but not awaited.
		Detached bool
	}

	// Backend is one execution mechanism for script commands.
	Backend interface {
		// Type is the scripts file value that selects this backend.
		Type() scriptfile.BackendType
		// Run executes req. Errors mean the command could not be run at all;
		// a command that ran and failed reports a nonzero ExitCode instead.
		Run(ctx context.Context, req Request) (*Result, error)
	}

	// Registry maps backend types to backends.
	Registry struct {
		backends map[scriptfile.BackendType]Backend
	}
)

// NewRegistry creates a Registry holding the given backends. Later entries
// replace earlier ones of the same type.
func NewRegistry(backends ...Backend) *Registry {
	r := &Registry{backends: make(map[scriptfile.BackendType]Backend, len(backends))}
	for _, b := range backends {
		r.Register(b)
	}
	return r
}

// NewDefaultRegistry registers the shell backend on exec and the virtual
// backend sharing exec's stdio and the current working directory.
func NewDefaultRegistry(exec *Executor) *Registry {
	return NewRegistry(
		NewShellBackend(exec),
		NewVirtualBackend(exec.Stdin, exec.Stdout, exec.Stderr, ""),
	)
}

// Register adds or replaces the backend for b.Type().
func (r *Registry) Register(b Backend) {
	r.backends[b.Type()] = b
}

// Get returns the backend registered for t.
func (r *Registry) Get(t scriptfile.BackendType) (Backend, error) {
	b, ok := r.backends[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, t)
	}
	return b, nil
}

// Types returns the registered backend types, sorted.
func (r *Registry) Types() []scriptfile.BackendType {
	types := make([]scriptfile.BackendType, 0, len(r.backends))
	for t := range r.backends {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}
