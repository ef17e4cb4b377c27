// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/teammv/mvc/internal/selfupdate"
)

// upgradeParams bundles the dependencies and flags for the upgrade command,
// so runUpgrade can be tested without a real Cobra command.
type upgradeParams struct {
	stdout  io.Writer
	updater *selfupdate.Updater
	check   bool // --check mode: report availability without installing
}

// newUpgradeCommand creates the `mvc upgrade` command, which replaces the
// installed binary with the latest release.
func newUpgradeCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Update mvc to the latest release",
		Long: `Update mvc to the latest release.

The upgrade command asks the version endpoint for the latest version,
downloads the release binary for this platform to a staging file and then
swaps it over the installed binary. A staged binary left by an earlier run
is installed without downloading again.

Replacing the binary usually needs elevated privileges, so run it with sudo.
Failures are reported but never make the command fail.`,
		Example: `  # Upgrade to the latest release
  sudo mvc upgrade

  # Only check whether a new version exists
  mvc upgrade --check`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			checkFlag, _ := cmd.Flags().GetBool("check")

			updater, err := app.updater()
			if err != nil {
				slog.Warn("cannot prepare upgrade", "error", err)
				fmt.Fprintln(app.stdout, WarningStyle.Render("Could not locate the installed mvc binary; nothing was changed."))
				return nil
			}

			runUpgrade(cmd.Context(), upgradeParams{
				stdout:  app.stdout,
				updater: updater,
				check:   checkFlag,
			})
			return nil
		},
	}

	cmd.Flags().Bool("check", false, "check for a new version without installing")

	return cmd
}

// runUpgrade is the core upgrade logic, separated from Cobra for
// testability. The updater writes its own progress messages.
func runUpgrade(ctx context.Context, p upgradeParams) {
	if p.check {
		res := p.updater.CheckVersion(ctx)
		slog.Debug("version check finished", "current", res.Current, "latest", res.Latest, "update_available", res.UpdateAvailable)
		return
	}

	res := p.updater.Upgrade(ctx)
	slog.Debug("upgrade finished", "state", res.State, "reason", res.Reason, "visited", res.Visited)
	if res.State == selfupdate.StateSwapped {
		fmt.Fprintln(p.stdout, SuccessStyle.Render("Restart mvc to use the new version."))
	}
}
