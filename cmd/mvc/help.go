// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teammv/mvc/internal/help"
)

// newHelpCommand replaces cobra's help command. Topics with a help page are
// rendered as markdown; other command names fall back to cobra's usage.
func newHelpCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "help [topic]",
		Short: "Show help for mvc or one of its commands",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return app.printHelp(help.TopicMain)
			}

			if _, err := help.Markdown(help.Topic(args[0])); err == nil {
				return app.printHelp(help.Topic(args[0]))
			}

			target, _, err := cmd.Root().Find(args)
			if err != nil || target == cmd.Root() {
				fmt.Fprintf(app.stdout, "Unknown help topic %q. Run 'mvc help' for a list of commands.\n", args[0])
				return nil
			}
			return target.Help()
		},
	}
}

func (a *App) printHelp(topic help.Topic) error {
	out, err := help.Render(topic, string(a.config().UI.ColorScheme))
	if err != nil {
		return err
	}
	fmt.Fprint(a.stdout, out)
	return nil
}
