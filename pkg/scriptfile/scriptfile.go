// SPDX-License-Identifier: MPL-2.0

package scriptfile

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

const (
	// BackendShell runs the command text as a host process.
	BackendShell BackendType = "shell"
	// BackendVirtual runs the command text in the embedded mvdan/sh interpreter.
	BackendVirtual BackendType = "virtual"

	// legacyBackendShell is the spelling older scripts files use for BackendShell.
	legacyBackendShell BackendType = "sh"

	// MaxArgs is the largest accepted Definition.Args.
	MaxArgs = 255
)

var (
	// ErrInvalidBackendType is the sentinel wrapped by InvalidBackendTypeError.
	ErrInvalidBackendType = errors.New("invalid backend type")
	// ErrInvalidDefinition is the sentinel wrapped by InvalidDefinitionError.
	ErrInvalidDefinition = errors.New("invalid script definition")
)

type (
	// BackendType names the execution backend a script is routed to. The set
	// of usable values is decided by the runtime registry, not by this package,
	// so only the spelling is validated here.
	BackendType string

	// InvalidBackendTypeError is returned when a BackendType is empty or
	// contains whitespace.
	InvalidBackendTypeError struct {
		Value BackendType
	}

	// Definition is one named, parameterized script.
	Definition struct {
		// Name is the subcommand alias.
		Name string `json:"name" yaml:"name" toml:"name"`
		// Args is the number of positional values the template consumes.
		Args int `json:"args" yaml:"args" toml:"args"`
		// Script is the template; {0}, {1}, ... are replaced positionally.
		Script string `json:"script" yaml:"script" toml:"script"`
		// Type selects the execution backend.
		Type BackendType `json:"type" yaml:"type" toml:"type"`
		// Detach starts the command without waiting for it to finish.
		Detach bool `json:"detach,omitempty" yaml:"detach,omitempty" toml:"detach,omitempty"`
		// Description is shown by `mvc script list`.
		Description string `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	}

	// InvalidDefinitionError reports a structurally invalid definition.
	InvalidDefinitionError struct {
		Index  int
		Name   string
		Reason string
	}

	// File is the ordered collection of definitions loaded from one scripts file.
	File struct {
		Scripts []Definition `json:"scripts" yaml:"scripts" toml:"scripts"`

		// FilePath is the location the file was read from. Empty for files
		// that do not exist on disk.
		FilePath string `json:"-" yaml:"-" toml:"-"`
	}
)

// Error implements the error interface.
func (e *InvalidBackendTypeError) Error() string {
	return fmt.Sprintf("invalid backend type %q (must be a non-empty word such as %q)", e.Value, BackendShell)
}

// Unwrap returns ErrInvalidBackendType.
func (e *InvalidBackendTypeError) Unwrap() error { return ErrInvalidBackendType }

// String returns the string representation of the BackendType.
func (b BackendType) String() string { return string(b) }

// Validate returns nil when the backend type is a single non-empty word.
func (b BackendType) Validate() error {
	if b == "" || strings.ContainsFunc(string(b), unicode.IsSpace) {
		return &InvalidBackendTypeError{Value: b}
	}
	return nil
}

// Normalize maps legacy spellings onto their current names and defaults an
// empty type to BackendShell.
func (b BackendType) Normalize() BackendType {
	switch b {
	case "", legacyBackendShell:
		return BackendShell
	default:
		return b
	}
}

// Error implements the error interface.
func (e *InvalidDefinitionError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("scripts[%d]: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("scripts[%d] (%s): %s", e.Index, e.Name, e.Reason)
}

// Unwrap returns ErrInvalidDefinition.
func (e *InvalidDefinitionError) Unwrap() error { return ErrInvalidDefinition }

// Validate checks the fields that every backend relies on. Duplicate names
// and placeholder/argument mismatches are intentionally not rejected here.
func (d *Definition) Validate() error {
	switch {
	case d.Name == "":
		return errors.New("name must not be empty")
	case strings.ContainsFunc(d.Name, unicode.IsSpace):
		return fmt.Errorf("name %q must not contain whitespace", d.Name)
	case d.Args < 0:
		return fmt.Errorf("args must be non-negative, got %d", d.Args)
	case d.Args > MaxArgs:
		return fmt.Errorf("args must be at most %d, got %d", MaxArgs, d.Args)
	}
	return d.Type.Validate()
}

// Validate normalizes backend types in place and returns every invalid
// definition joined into one error.
func (f *File) Validate() error {
	var errs []error
	for i := range f.Scripts {
		d := &f.Scripts[i]
		d.Type = d.Type.Normalize()
		if err := d.Validate(); err != nil {
			errs = append(errs, &InvalidDefinitionError{Index: i, Name: d.Name, Reason: err.Error()})
		}
	}
	return errors.Join(errs...)
}

// Names returns the script names in file order, duplicates included.
func (f *File) Names() []string {
	names := make([]string, 0, len(f.Scripts))
	for i := range f.Scripts {
		names = append(names, f.Scripts[i].Name)
	}
	return names
}
