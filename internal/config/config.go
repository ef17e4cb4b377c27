// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"github.com/teammv/mvc/internal/issue"
	"github.com/teammv/mvc/pkg/cueutil"
	"github.com/teammv/mvc/pkg/scriptfile"
)

const (
	// AppName is the application name.
	AppName = "mvc"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment overrides.
	EnvPrefix = "MVC"
)

//go:embed config_schema.cue
var configSchema []byte

// configDirOverride lets tests bypass os.UserHomeDir, which does not honor
// HOME on every platform.
var configDirOverride string

// LoadOptions defines explicit configuration loading inputs.
type LoadOptions struct {
	// ConfigFilePath forces loading from a specific config file when set.
	ConfigFilePath string
	// ConfigDirPath overrides the config directory lookup when set.
	ConfigDirPath string
}

// SetConfigDirOverride sets a custom config directory path for tests.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}

// Reset clears test overrides.
func Reset() {
	configDirOverride = ""
}

// ConfigDir returns the mvc configuration directory using platform
// conventions: %APPDATA% on Windows, ~/Library/Application Support on macOS,
// and $XDG_CONFIG_HOME (default ~/.config) elsewhere.
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("APPDATA")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		base = filepath.Join(home, "Library", "Application Support")
	default:
		base = os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			base = filepath.Join(home, ".config")
		}
	}
	return filepath.Join(base, AppName), nil
}

// Load reads the configuration and returns it with the path of the file it
// came from, empty when only defaults and environment were used. A missing
// default config file is not an error; a missing explicit one is.
func Load(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", fmt.Errorf("load config canceled: %w", err)
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfgDir := opts.ConfigDirPath
	if cfgDir == "" {
		dir, err := ConfigDir()
		if err != nil {
			return nil, "", err
		}
		cfgDir = dir
	}

	resolvedPath := ""
	switch {
	case opts.ConfigFilePath != "":
		if !fileExists(opts.ConfigFilePath) {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'mvc config init' to create a default configuration").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		resolvedPath = opts.ConfigFilePath
	case fileExists(filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)):
		resolvedPath = filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
	}

	if resolvedPath != "" {
		if err := loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("Run 'mvc config show' to see the effective configuration").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.UI.ColorScheme.Validate(); err != nil {
		return nil, "", issue.WrapWithOperation(err, "validate configuration")
	}

	if cfg.ScriptsFile == "" {
		cfg.ScriptsFile = filepath.Join(cfgDir, scriptfile.DefaultFileName)
	}
	cfg.ScriptsFile = expandHome(cfg.ScriptsFile)
	cfg.Log.File = expandHome(cfg.Log.File)

	return &cfg, resolvedPath, nil
}

// DefaultConfigPath returns where config init writes the config file.
func DefaultConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName+"."+ConfigFileExt), nil
}

// CreateDefaultConfig writes the default configuration to path unless a file
// already exists there. It reports whether a file was written.
func CreateDefaultConfig(path string) (bool, error) {
	if fileExists(path) {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return false, fmt.Errorf("failed to write config file: %w", err)
	}
	return true, nil
}

// GenerateCUE renders cfg as a config.cue document.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// mvc configuration file\n\n")

	if cfg.ScriptsFile != "" {
		fmt.Fprintf(&sb, "scripts_file: %q\n\n", cfg.ScriptsFile)
	}

	sb.WriteString("ui: {\n")
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	fmt.Fprintf(&sb, "\tverbose:      %v\n", cfg.UI.Verbose)
	sb.WriteString("}\n\n")

	sb.WriteString("log: {\n")
	if cfg.Log.File != "" {
		fmt.Fprintf(&sb, "\tfile:         %q\n", cfg.Log.File)
	}
	fmt.Fprintf(&sb, "\tmax_size_mb:  %d\n", cfg.Log.MaxSizeMB)
	fmt.Fprintf(&sb, "\tmax_backups:  %d\n", cfg.Log.MaxBackups)
	fmt.Fprintf(&sb, "\tmax_age_days: %d\n", cfg.Log.MaxAgeDays)
	sb.WriteString("}\n\n")

	sb.WriteString("update: {\n")
	fmt.Fprintf(&sb, "\tversion_url:  %q\n", cfg.Update.VersionURL)
	fmt.Fprintf(&sb, "\trelease_repo: %q\n", cfg.Update.ReleaseRepo)
	fmt.Fprintf(&sb, "\tapi_base_url: %q\n", cfg.Update.APIBaseURL)
	if cfg.Update.InstallPath != "" {
		fmt.Fprintf(&sb, "\tinstall_path: %q\n", cfg.Update.InstallPath)
	}
	fmt.Fprintf(&sb, "\tstaging_path: %q\n", cfg.Update.StagingPath)
	fmt.Fprintf(&sb, "\tplatform:     %q\n", cfg.Update.Platform)
	sb.WriteString("}\n")

	return sb.String()
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("scripts_file", d.ScriptsFile)
	v.SetDefault("ui.color_scheme", string(d.UI.ColorScheme))
	v.SetDefault("ui.verbose", d.UI.Verbose)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.max_age_days", d.Log.MaxAgeDays)
	v.SetDefault("update.version_url", d.Update.VersionURL)
	v.SetDefault("update.release_repo", d.Update.ReleaseRepo)
	v.SetDefault("update.api_base_url", d.Update.APIBaseURL)
	v.SetDefault("update.install_path", d.Update.InstallPath)
	v.SetDefault("update.staging_path", d.Update.StagingPath)
	v.SetDefault("update.platform", d.Update.Platform)
}

// loadCUEIntoViper validates a CUE file against #Config and merges it over
// the defaults already in v. Concrete(false) because every field is optional.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	result, err := cueutil.ParseAndDecode[map[string]any](configSchema, data, "#Config",
		cueutil.WithConcrete(false), cueutil.WithFilename(path))
	if err != nil {
		return err
	}

	if err := v.MergeConfigMap(*result.Value); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return false
	}
	return err == nil && !info.IsDir()
}
