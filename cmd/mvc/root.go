// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

// noCommandMessage is printed when mvc is run without arguments.
const noCommandMessage = "No command specified. Run 'mvc help' for a list of commands."

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the mvc command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mvc",
		Short: "Run your project scripts and keep the tool up to date",
		Long: TitleStyle.Render("mvc") + SubtitleStyle.Render(" - Run your project scripts and keep the tool up to date") + `

mvc runs named, parameterized scripts from your scripts file. The push,
commit and build aliases are built in; any other script runs with
'mvc run <name>' or simply 'mvc <name>'.

` + SubtitleStyle.Render("Examples:") + `
  mvc push main            Run the 'push' script with {0} = main
  mvc run deploy staging   Run the 'deploy' script
  mvc deploy staging       Same, as a custom subcommand
  mvc script list          List your scripts
  sudo mvc upgrade         Replace mvc with the latest release`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.DisableFlagParsing {
				prefix, _ := splitRootFlags(cmd.Root().PersistentFlags(), args)
				if err := cmd.Root().PersistentFlags().Parse(prefix); err != nil {
					return err
				}
			}
			app.init(cmd.Context())
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			app.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Fprintln(app.stdout, noCommandMessage)
				return nil
			}
			// Any name that is not a built-in subcommand is a custom script.
			return app.runScript(cmd.Context(), args[0], args)
		},
	}
	// Everything after a custom script name belongs to the script.
	rootCmd.Flags().SetInterspersed(false)

	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&app.cfgFile, "config", "", "config file (default is $HOME/.config/mvc/config.cue)")

	rootCmd.SetIn(app.stdin)
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	rootCmd.AddCommand(
		newAliasCommand(app, "push", "Run your push script"),
		newAliasCommand(app, "commit", "Run your commit script"),
		newAliasCommand(app, "build", "Run your build script"),
		newRunCommand(app),
		newScriptCommand(app),
		newUpgradeCommand(app),
		newVersionCommand(app),
		newConfigCommand(app),
	)
	rootCmd.SetHelpCommand(newHelpCommand(app))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute builds the command tree and runs it. It is called by main.main.
func Execute() {
	app := NewApp(Dependencies{})
	rootCmd := NewRootCommand(app)

	// fang overrides rootCmd.Version, so the version goes through WithVersion.
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(errorHandler),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// errorHandler prints errors that commands did not report themselves.
func errorHandler(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}
