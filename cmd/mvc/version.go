// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teammv/mvc/internal/version"
)

// newVersionCommand creates the `mvc version` command. It prints the
// embedded version, then checks for a newer release. With --framework it
// prints the announced version of a framework instead.
func newVersionCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show the mvc version or a framework's latest version",
		Example: `  mvc version
  mvc version --framework java/rendering`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			framework, _ := cmd.Flags().GetString("framework")
			offline, _ := cmd.Flags().GetBool("offline")

			if framework != "" {
				lang, fw, ok := strings.Cut(framework, "/")
				if !ok || lang == "" {
					return fmt.Errorf("invalid --framework %q: want <language>/<framework>", framework)
				}
				v, err := app.versionClient().FrameworkVersion(cmd.Context(), lang, fw)
				if err != nil {
					slog.Debug("framework version lookup failed", "language", lang, "framework", fw, "error", err)
					v = version.UnknownVersion
				}
				fmt.Fprintln(app.stdout, v)
				return nil
			}

			fmt.Fprintln(app.stdout, TitleStyle.Render("mvc")+" "+getVersionString())
			if offline {
				return nil
			}

			updater, err := app.updater()
			if err != nil {
				slog.Debug("skipping version check", "error", err)
				return nil
			}
			updater.CheckVersion(cmd.Context())
			return nil
		},
	}

	cmd.Flags().String("framework", "", "print the latest version of <language>/<framework>")
	cmd.Flags().Bool("offline", false, "do not check for a new version")

	return cmd
}
