// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"context"
	"fmt"
	"slices"

	"github.com/teammv/mvc/internal/argtemplate"
	"github.com/teammv/mvc/pkg/scriptfile"
)

const (
	// FindingDuplicateName marks a definition shadowed by an earlier one.
	FindingDuplicateName FindingKind = "duplicate_name"
	// FindingPlaceholderOutOfRange marks a placeholder with no matching argument.
	FindingPlaceholderOutOfRange FindingKind = "placeholder_out_of_range"
	// FindingUnusedArgument marks a declared argument no placeholder consumes.
	FindingUnusedArgument FindingKind = "unused_argument"
	// FindingUnknownBackend marks a backend type no runtime is registered for.
	FindingUnknownBackend FindingKind = "unknown_backend"
)

type (
	// FindingKind classifies a consistency finding.
	FindingKind string

	// Finding is an advisory report about a definition. Findings never stop
	// a script from running; they only surface through `mvc script check`.
	Finding struct {
		Kind    FindingKind
		Index   int
		Name    string
		Message string
	}
)

// String returns "scripts[i] (name): message".
func (f Finding) String() string {
	return fmt.Sprintf("scripts[%d] (%s): %s", f.Index, f.Name, f.Message)
}

// Check loads the scripts file and reports consistency findings. knownBackends
// lists the backend types that can run; pass nil to skip that check.
func (r *Registry) Check(ctx context.Context, knownBackends []scriptfile.BackendType) ([]Finding, error) {
	f, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}
	return CheckFile(f, knownBackends), nil
}

// CheckFile reports consistency findings for an already loaded file.
func CheckFile(f *scriptfile.File, knownBackends []scriptfile.BackendType) []Finding {
	var findings []Finding
	firstIndex := make(map[string]int, len(f.Scripts))

	for i := range f.Scripts {
		d := &f.Scripts[i]

		if first, dup := firstIndex[d.Name]; dup {
			findings = append(findings, Finding{
				Kind:    FindingDuplicateName,
				Index:   i,
				Name:    d.Name,
				Message: fmt.Sprintf("shadowed by scripts[%d], which is used instead", first),
			})
		} else {
			firstIndex[d.Name] = i
		}

		used := argtemplate.Placeholders(d.Script)
		for _, idx := range used {
			if idx >= d.Args {
				findings = append(findings, Finding{
					Kind:    FindingPlaceholderOutOfRange,
					Index:   i,
					Name:    d.Name,
					Message: fmt.Sprintf("placeholder {%d} has no argument (args: %d) and is kept verbatim", idx, d.Args),
				})
			}
		}
		for idx := range min(d.Args, scriptfile.MaxArgs) {
			if !slices.Contains(used, idx) {
				findings = append(findings, Finding{
					Kind:    FindingUnusedArgument,
					Index:   i,
					Name:    d.Name,
					Message: fmt.Sprintf("argument %d is declared but {%d} does not appear in the script", idx, idx),
				})
			}
		}

		if knownBackends != nil && !slices.Contains(knownBackends, d.Type.Normalize()) {
			findings = append(findings, Finding{
				Kind:    FindingUnknownBackend,
				Index:   i,
				Name:    d.Name,
				Message: fmt.Sprintf("backend type %q is not available", d.Type),
			})
		}
	}

	return findings
}
