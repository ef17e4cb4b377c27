// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/teammv/mvc/internal/dispatch"
	"github.com/teammv/mvc/internal/help"
)

// newAliasCommand creates one of the built-in script aliases. Flag parsing is
// disabled so every argument reaches the script; a leading --help prints the
// alias's help page instead. Root flags written before the alias name are
// applied by the root pre-run and removed here.
func newAliasCommand(app *App, name, short string) *cobra.Command {
	return &cobra.Command{
		Use:                name + " [args...]",
		Short:              short,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, args = splitRootFlags(cmd.Root().PersistentFlags(), args)
			if len(args) > 0 && (args[0] == "--help" || args[0] == "-h") {
				return app.printHelp(help.Topic(name))
			}
			return app.runScript(cmd.Context(), name, append([]string{name}, args...))
		},
	}
}

func newRunCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "run <name> [args...]",
		Short: "Run any script by name",
		Long: `Run any script from your scripts file by name.

Arguments after the name fill the script's {0}, {1}, ... placeholders.`,
		Example: `  mvc run deploy staging
  mvc run push main`,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, args = splitRootFlags(cmd.Root().PersistentFlags(), args)
			if len(args) == 0 || args[0] == "--help" || args[0] == "-h" {
				return cmd.Help()
			}
			return app.runScript(cmd.Context(), args[0], args)
		},
	}
}

// splitRootFlags splits the arguments of a command that does not parse its own
// flags into a leading run of root persistent flags and the rest. cobra keeps
// flags given before the subcommand name in the argument list of such
// commands. A "--" ends the run and is dropped, so `mvc push -- -v` passes -v
// to the script.
func splitRootFlags(flags *pflag.FlagSet, args []string) (prefix, rest []string) {
	i := 0
	for i < len(args) {
		s := args[i]
		if s == "--" {
			return args[:i], args[i+1:]
		}
		if len(s) < 2 || s[0] != '-' {
			break
		}

		name, _, hasValue := strings.Cut(strings.TrimLeft(s, "-"), "=")
		var f *pflag.Flag
		switch {
		case strings.HasPrefix(s, "--"):
			f = flags.Lookup(name)
		case len(name) == 1:
			f = flags.ShorthandLookup(name)
		}
		if f == nil {
			break
		}

		i++
		if !hasValue && f.NoOptDefVal == "" {
			// Value is the next argument.
			i++
		}
	}
	i = min(i, len(args))
	return args[:i], args[i:]
}

// runScript dispatches name with cliArgs, whose first element is the script
// name. A missing script is reported and exits 0. A waited script that exits
// non-zero makes mvc exit with the same code.
func (a *App) runScript(ctx context.Context, name string, cliArgs []string) error {
	out := a.dispatcher().Dispatch(ctx, name, cliArgs)
	slog.Debug("dispatch finished", "script", name, "status", out.Status, "exit_code", out.ExitCode)

	switch out.Status {
	case dispatch.StatusExecuted:
		if out.ExitCode != 0 {
			return &ExitError{Code: out.ExitCode}
		}
		return nil
	case dispatch.StatusFailed:
		return a.reportError(out.Err)
	default:
		return nil
	}
}
