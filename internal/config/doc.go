// SPDX-License-Identifier: MPL-2.0

// Package config handles mvc configuration using Viper with CUE as the file
// format.
//
// Configuration is loaded from config.cue in the user configuration
// directory ($XDG_CONFIG_HOME/mvc on Linux, ~/Library/Application Support/mvc
// on macOS, %APPDATA%\mvc on Windows), validated against the embedded
// config_schema.cue, and layered over built-in defaults. Every key can be
// overridden from the environment with the MVC_ prefix, dots replaced by
// underscores (MVC_UPDATE_VERSION_URL for update.version_url).
package config
