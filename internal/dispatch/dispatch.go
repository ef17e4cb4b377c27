// SPDX-License-Identifier: MPL-2.0

// Package dispatch turns a script name and raw CLI arguments into a run on
// the script's execution backend.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/teammv/mvc/internal/argtemplate"
	"github.com/teammv/mvc/internal/registry"
	"github.com/teammv/mvc/internal/runtime"
	"github.com/teammv/mvc/pkg/scriptfile"
)

const (
	// StatusExecuted means the command ran to completion; see ExitCode.
	StatusExecuted Status = iota
	// StatusDetached means the command was started and not awaited.
	StatusDetached
	// StatusNotFound means no script has the requested name.
	StatusNotFound
	// StatusUnknownBackend means the script names a backend nobody registered.
	StatusUnknownBackend
	// StatusFailed means the scripts file could not be read or the command
	// could not be started.
	StatusFailed
)

type (
	// Status classifies how a dispatch ended.
	Status int

	// Outcome is the result of one dispatch. Dispatch never returns an error
	// value; failures are described here.
	Outcome struct {
		Status Status
		// Command is the templated command text, empty when nothing was built.
		Command string
		// ExitCode is the child's exit status for StatusExecuted.
		ExitCode int
		// Err is set for StatusFailed.
		Err error
	}

	// Resolver finds script definitions by name. *registry.Registry satisfies it.
	Resolver interface {
		Resolve(ctx context.Context, name string) (*scriptfile.Definition, error)
	}

	// Backends looks up execution backends. *runtime.Registry satisfies it.
	Backends interface {
		Get(t scriptfile.BackendType) (runtime.Backend, error)
	}

	// Dispatcher resolves, templates and routes script invocations.
	Dispatcher struct {
		resolver Resolver
		backends Backends
		out      io.Writer
	}

	// Option configures a Dispatcher.
	Option func(*Dispatcher)
)

// builtinAliases are the script names the CLI exposes as first-class
// subcommands; a missing definition for one of them gets a hint on how to
// create it.
var builtinAliases = map[string]bool{
	"push":   true,
	"commit": true,
	"build":  true,
}

// String returns a lowercase name for the status.
func (s Status) String() string {
	switch s {
	case StatusExecuted:
		return "executed"
	case StatusDetached:
		return "detached"
	case StatusNotFound:
		return "not_found"
	case StatusUnknownBackend:
		return "unknown_backend"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// WithOutput sets where user messages are written. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(d *Dispatcher) {
		d.out = w
	}
}

// New creates a Dispatcher.
func New(resolver Resolver, backends Backends, opts ...Option) *Dispatcher {
	d := &Dispatcher{resolver: resolver, backends: backends, out: os.Stdout}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NotFoundMessage is the user message for a name with no script definition.
func NotFoundMessage(name string) string {
	if builtinAliases[name] {
		return fmt.Sprintf("Could not find the %s script, please create one using 'mvc script'.", name)
	}
	return fmt.Sprintf("Unkown subcommand '%s'.", name)
}

// Dispatch runs the script called name. cliArgs is the raw argument list
// with the subcommand name at index 0; positional values start at index 1.
// A missing script is a normal outcome reported to the output, not an error.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, cliArgs []string) Outcome {
	def, err := d.resolver.Resolve(ctx, name)
	if err != nil {
		if errors.Is(err, registry.ErrScriptNotFound) {
			fmt.Fprintln(d.out, NotFoundMessage(name))
			return Outcome{Status: StatusNotFound}
		}
		return Outcome{Status: StatusFailed, Err: err}
	}

	values := argtemplate.Positional(def.Args, cliArgs)
	command := argtemplate.Substitute(def.Script, values)

	backendType := def.Type.Normalize()
	backend, err := d.backends.Get(backendType)
	if err != nil {
		slog.Debug("no backend for script", "script", name, "type", backendType, "error", err)
		fmt.Fprintf(d.out, "Script '%s' uses unsupported type '%s'.\n", name, backendType)
		return Outcome{Status: StatusUnknownBackend, Command: command}
	}

	slog.Debug("dispatching script", "script", name, "type", backendType, "command", command, "detach", def.Detach)

	res, err := backend.Run(ctx, runtime.Request{Command: command, Detach: def.Detach})
	if err != nil {
		return Outcome{Status: StatusFailed, Command: command, Err: fmt.Errorf("failed to run script '%s': %w", name, err)}
	}
	if res.Detached {
		return Outcome{Status: StatusDetached, Command: command}
	}
	return Outcome{Status: StatusExecuted, Command: command, ExitCode: res.ExitCode}
}
