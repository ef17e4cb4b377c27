// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teammv/mvc/internal/dispatch"
	"github.com/teammv/mvc/internal/issue"
	"github.com/teammv/mvc/internal/registry"
)

// newScriptCommand creates the `mvc script` command tree for inspecting the
// scripts file. Editing the file is left to the user's editor.
func newScriptCommand(app *App) *cobra.Command {
	scriptCmd := &cobra.Command{
		Use:   "script",
		Short: "Inspect your scripts file",
		Long: `Inspect your scripts file.

Scripts are defined in a CUE, YAML, JSON or TOML file, by default
scripts.cue next to config.cue. Edit it with your editor of choice; run
'mvc script path' to find it.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	scriptCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List all scripts",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return app.listScripts(cmd)
			},
		},
		&cobra.Command{
			Use:   "show <name>",
			Short: "Show the definition of a script",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return app.showScript(cmd, args[0])
			},
		},
		&cobra.Command{
			Use:   "check",
			Short: "Report problems in the scripts file",
			Long: `Report problems in the scripts file.

Reported problems: duplicate names (only the first is used), placeholders
without a declared argument, declared arguments that are never used, and
backend types mvc cannot run. Exits with status 1 when anything is found.`,
			Args: cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return app.checkScripts(cmd)
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Show the scripts file path",
			Args:  cobra.NoArgs,
			Run: func(*cobra.Command, []string) {
				fmt.Fprintln(app.stdout, app.config().ScriptsFile)
			},
		},
	)

	return scriptCmd
}

func (a *App) listScripts(cmd *cobra.Command) error {
	defs, err := a.registry().List(cmd.Context())
	if err != nil {
		return a.reportError(err)
	}
	if len(defs) == 0 {
		fmt.Fprintln(a.stdout, SubtitleStyle.Render("No scripts defined in "+a.config().ScriptsFile))
		fmt.Fprintln(a.stdout, SubtitleStyle.Render("Run 'mvc help push' for an example definition."))
		return nil
	}

	width := 0
	for _, d := range defs {
		width = max(width, len(d.Name))
	}

	fmt.Fprintln(a.stdout, TitleStyle.Render("Scripts")+SubtitleStyle.Render(" ("+a.config().ScriptsFile+")"))
	seen := make(map[string]bool, len(defs))
	for _, d := range defs {
		name := TitleStyle.Render(d.Name + strings.Repeat(" ", width-len(d.Name)))
		line := fmt.Sprintf("  %s  %s", name, SubtitleStyle.Render(fmt.Sprintf("[%s, %d args]", d.Type.Normalize(), d.Args)))
		if d.Description != "" {
			line += "  " + d.Description
		}
		if seen[d.Name] {
			line += "  " + WarningStyle.Render("(shadowed)")
		}
		seen[d.Name] = true
		fmt.Fprintln(a.stdout, line)
	}
	return nil
}

func (a *App) showScript(cmd *cobra.Command, name string) error {
	def, err := a.registry().Resolve(cmd.Context(), name)
	if err != nil {
		if errors.Is(err, registry.ErrScriptNotFound) {
			fmt.Fprintln(a.stdout, dispatch.NotFoundMessage(name))
			return &ExitError{Code: 1}
		}
		return a.reportError(err)
	}

	field := func(label, value string) {
		fmt.Fprintln(a.stdout, labelStyle.Render(label)+value)
	}
	field("name", TitleStyle.Render(def.Name))
	field("args", strconv.Itoa(def.Args))
	field("type", def.Type.Normalize().String())
	field("script", CmdStyle.Render(def.Script))
	if def.Detach {
		field("detach", "true")
	}
	if def.Description != "" {
		field("description", def.Description)
	}
	return nil
}

func (a *App) checkScripts(cmd *cobra.Command) error {
	path := a.config().ScriptsFile
	findings, err := a.registry().Check(cmd.Context(), a.backends().Types())
	if err != nil {
		return a.reportError(err)
	}
	if len(findings) == 0 {
		fmt.Fprintln(a.stdout, SuccessStyle.Render("No problems found in "+path))
		return nil
	}

	for _, f := range findings {
		fmt.Fprintln(a.stdout, WarningStyle.Render("warning: ")+f.String())
	}
	fmt.Fprintf(a.stdout, "%d problem(s) found in %s\n", len(findings), path)
	return &ExitError{Code: 1}
}

// reportError prints err the way failures are shown to users and converts it
// to an ExitError so it is not printed twice.
func (a *App) reportError(err error) error {
	fmt.Fprintln(a.stderr, ErrorStyle.Render("Error: ")+issue.FormatForDisplay(err, a.verbose))
	return &ExitError{Code: 1, Err: err}
}
