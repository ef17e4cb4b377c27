// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/teammv/mvc/internal/config"
)

// newConfigCommand creates the `mvc config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage mvc configuration",
		Long: `Manage mvc configuration.

Configuration is stored in:
  - Linux: ~/.config/mvc/config.cue
  - macOS: ~/Library/Application Support/mvc/config.cue
  - Windows: %APPDATA%\mvc\config.cue

Every setting can also be given as an environment variable, for example
MVC_UPDATE_VERSION_URL for update.version_url.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show the effective configuration as CUE",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				// Load again so a broken file is an error here, not a warning.
				cfg, _, err := config.Load(cmd.Context(), app.loadOptions())
				if err != nil {
					return app.reportError(err)
				}
				fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
				return nil
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Show the configuration file path",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				path, err := app.configFilePath()
				if err != nil {
					return err
				}
				fmt.Fprintln(app.stdout, path)
				return nil
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Create the default configuration file",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				path, err := app.configFilePath()
				if err != nil {
					return err
				}
				created, err := config.CreateDefaultConfig(path)
				if err != nil {
					return app.reportError(err)
				}
				if !created {
					fmt.Fprintln(app.stdout, WarningStyle.Render("Configuration already exists: ")+path)
					return nil
				}
				fmt.Fprintln(app.stdout, SuccessStyle.Render("Created configuration: ")+path)
				return nil
			},
		},
	)

	return cfgCmd
}

// configFilePath is the --config value, or config.cue in the configuration
// directory.
func (a *App) configFilePath() (string, error) {
	if a.cfgFile != "" {
		return a.cfgFile, nil
	}
	if a.configDir != "" {
		return filepath.Join(a.configDir, config.ConfigFileName+"."+config.ConfigFileExt), nil
	}
	return config.DefaultConfigPath()
}
