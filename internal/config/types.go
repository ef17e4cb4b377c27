// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"

	"github.com/teammv/mvc/internal/logging"
	"github.com/teammv/mvc/internal/selfupdate"
	"github.com/teammv/mvc/internal/version"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
var ErrInvalidColorScheme = errors.New("invalid color scheme")

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not
	// recognized. It wraps ErrInvalidColorScheme.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// Config is the full mvc configuration.
	Config struct {
		// ScriptsFile is the script registry location. Empty means
		// scripts.cue in the configuration directory.
		ScriptsFile string       `json:"scripts_file" mapstructure:"scripts_file"`
		UI          UIConfig     `json:"ui" mapstructure:"ui"`
		Log         LogConfig    `json:"log" mapstructure:"log"`
		Update      UpdateConfig `json:"update" mapstructure:"update"`
	}

	// UIConfig controls terminal output.
	UIConfig struct {
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables debug logging on stderr.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}

	// LogConfig controls the optional rotating log file.
	LogConfig struct {
		File       string `json:"file" mapstructure:"file"`
		MaxSizeMB  int    `json:"max_size_mb" mapstructure:"max_size_mb"`
		MaxBackups int    `json:"max_backups" mapstructure:"max_backups"`
		MaxAgeDays int    `json:"max_age_days" mapstructure:"max_age_days"`
	}

	// UpdateConfig locates version information and release assets.
	UpdateConfig struct {
		VersionURL  string `json:"version_url" mapstructure:"version_url"`
		ReleaseRepo string `json:"release_repo" mapstructure:"release_repo"`
		APIBaseURL  string `json:"api_base_url" mapstructure:"api_base_url"`
		InstallPath string `json:"install_path" mapstructure:"install_path"`
		StagingPath string `json:"staging_path" mapstructure:"staging_path"`
		Platform    string `json:"platform" mapstructure:"platform"`
	}
)

func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// Validate returns an InvalidColorSchemeError for unknown values.
func (c ColorScheme) Validate() error {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return nil
	default:
		return &InvalidColorSchemeError{Value: c}
	}
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		UI: UIConfig{ColorScheme: ColorSchemeAuto},
		Log: LogConfig{
			MaxSizeMB:  logging.DefaultMaxSizeMB,
			MaxBackups: logging.DefaultMaxBackups,
			MaxAgeDays: logging.DefaultMaxAgeDays,
		},
		Update: UpdateConfig{
			VersionURL:  version.DefaultURL,
			ReleaseRepo: selfupdate.DefaultReleaseRepo,
			APIBaseURL:  selfupdate.DefaultAPIBaseURL,
			StagingPath: selfupdate.DefaultStagingPath(),
			Platform:    selfupdate.DefaultPlatform(),
		},
	}
}

// LoggingConfig converts the log and UI settings for the logging package.
func (c *Config) LoggingConfig() logging.Config {
	return logging.Config{
		Verbose:    c.UI.Verbose,
		File:       c.Log.File,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
		MaxAgeDays: c.Log.MaxAgeDays,
	}
}
