// SPDX-License-Identifier: MPL-2.0

// Package registry resolves script names against the scripts file.
//
// The registry holds no state between calls: every lookup reads the file
// again, so edits made between two invocations are always visible.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/teammv/mvc/internal/issue"
	"github.com/teammv/mvc/pkg/scriptfile"
)

// ErrScriptNotFound is returned by Resolve when no definition has the name.
var ErrScriptNotFound = errors.New("script not found")

type (
	// Loader reads the scripts file. scriptfile.Parse satisfies it.
	Loader func(path string) (*scriptfile.File, error)

	// Registry resolves names to script definitions from one scripts file.
	Registry struct {
		path string
		load Loader
	}

	// Option configures a Registry.
	Option func(*Registry)
)

// WithLoader replaces the scripts file reader.
func WithLoader(l Loader) Option {
	return func(r *Registry) {
		r.load = l
	}
}

// New creates a Registry backed by the scripts file at path.
func New(path string, opts ...Option) *Registry {
	r := &Registry{path: path, load: scriptfile.Parse}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Path returns the scripts file location.
func (r *Registry) Path() string {
	return r.path
}

// Load reads the full scripts file.
func (r *Registry) Load(ctx context.Context) (*scriptfile.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load scripts canceled: %w", err)
	}

	f, err := r.load(r.path)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("load scripts file").
			WithResource(r.path).
			WithSuggestion("Check the file syntax against the scripts schema").
			WithSuggestion("Run 'mvc script check' to list problems").
			Wrap(err).
			BuildError()
	}
	return f, nil
}

// Resolve returns the first definition named name, in file order. Duplicate
// names are not an error: later entries are simply shadowed.
func (r *Registry) Resolve(ctx context.Context, name string) (*scriptfile.Definition, error) {
	f, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range f.Scripts {
		if f.Scripts[i].Name == name {
			slog.Debug("resolved script", "name", name, "index", i, "file", r.path)
			return &f.Scripts[i], nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrScriptNotFound, name)
}

// List returns every definition in file order.
func (r *Registry) List(ctx context.Context) ([]scriptfile.Definition, error) {
	f, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}
	return f.Scripts, nil
}
