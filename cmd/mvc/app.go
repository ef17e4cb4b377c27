// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/teammv/mvc/internal/config"
	"github.com/teammv/mvc/internal/dispatch"
	"github.com/teammv/mvc/internal/download"
	"github.com/teammv/mvc/internal/issue"
	"github.com/teammv/mvc/internal/logging"
	"github.com/teammv/mvc/internal/registry"
	"github.com/teammv/mvc/internal/runtime"
	"github.com/teammv/mvc/internal/selfupdate"
	"github.com/teammv/mvc/internal/version"
	"github.com/teammv/mvc/pkg/scriptfile"
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer: command handlers receive an App and build their
	// services through it from the configuration loaded for the invocation.
	App struct {
		stdin       io.Reader
		stdout      io.Writer
		stderr      io.Writer
		configDir   string
		commandFunc runtime.CommandFunc
		httpClient  *http.Client

		// Set from persistent flags.
		cfgFile string
		verbose bool

		cfg       *config.Config
		cfgPath   string
		logCloser io.Closer
	}

	// Dependencies defines the injection points for building an App. Zero
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
		// ConfigDir overrides the platform configuration directory.
		ConfigDir string
		// CommandFunc replaces process construction for shell scripts.
		CommandFunc runtime.CommandFunc
		// HTTPClient is used for version, release and download requests.
		HTTPClient *http.Client
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdin == nil {
		deps.Stdin = os.Stdin
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	return &App{
		stdin:       deps.Stdin,
		stdout:      deps.Stdout,
		stderr:      deps.Stderr,
		configDir:   deps.ConfigDir,
		commandFunc: deps.CommandFunc,
		httpClient:  deps.HTTPClient,
	}
}

// init loads the configuration and installs the logger. A broken config file
// is reported as a warning and the built-in defaults are used instead, so
// scripts keep running.
func (a *App) init(ctx context.Context) {
	cfg, path, err := config.Load(ctx, a.loadOptions())
	if err != nil {
		fmt.Fprintln(a.stderr, WarningStyle.Render("Warning: ")+issue.FormatForDisplay(err, a.verbose))
		cfg = a.fallbackConfig()
		path = ""
	}
	a.cfg, a.cfgPath = cfg, path

	logCfg := cfg.LoggingConfig()
	logCfg.Verbose = logCfg.Verbose || a.verbose
	a.logCloser = logging.Setup(logCfg, a.stderr)
	slog.Debug("configuration loaded", "path", path, "scripts_file", cfg.ScriptsFile)
}

// close releases resources acquired by init.
func (a *App) close() {
	if a.logCloser != nil {
		_ = a.logCloser.Close()
		a.logCloser = nil
	}
}

func (a *App) loadOptions() config.LoadOptions {
	return config.LoadOptions{ConfigFilePath: a.cfgFile, ConfigDirPath: a.configDir}
}

func (a *App) fallbackConfig() *config.Config {
	cfg := config.DefaultConfig()
	dir := a.configDir
	if dir == "" {
		if d, err := config.ConfigDir(); err == nil {
			dir = d
		}
	}
	cfg.ScriptsFile = filepath.Join(dir, scriptfile.DefaultFileName)
	return cfg
}

// config returns the configuration loaded for this invocation.
func (a *App) config() *config.Config {
	if a.cfg == nil {
		a.cfg = a.fallbackConfig()
	}
	return a.cfg
}

func (a *App) userAgent() string {
	return selfupdate.DefaultToolName + "/" + Version
}

func (a *App) registry() *registry.Registry {
	return registry.New(a.config().ScriptsFile)
}

func (a *App) backends() *runtime.Registry {
	opts := []runtime.ExecutorOption{runtime.WithStdio(a.stdin, a.stdout, a.stderr)}
	if a.commandFunc != nil {
		opts = append(opts, runtime.WithCommandFunc(a.commandFunc))
	}
	return runtime.NewDefaultRegistry(runtime.NewExecutor(opts...))
}

func (a *App) dispatcher() *dispatch.Dispatcher {
	return dispatch.New(a.registry(), a.backends(), dispatch.WithOutput(a.stdout))
}

func (a *App) versionClient() *version.Client {
	opts := []version.Option{
		version.WithURL(a.config().Update.VersionURL),
		version.WithUserAgent(a.userAgent()),
	}
	if a.httpClient != nil {
		opts = append(opts, version.WithHTTPClient(a.httpClient))
	}
	return version.NewClient(opts...)
}

// updater builds the self-updater for the running binary. Release lookup is
// only enabled when the configured release repository names an owner and
// repository.
func (a *App) updater() (*selfupdate.Updater, error) {
	u := a.config().Update
	env, err := selfupdate.Env{
		Version:     Version,
		Platform:    u.Platform,
		InstallPath: u.InstallPath,
		StagingPath: u.StagingPath,
		ReleaseRepo: u.ReleaseRepo,
	}.WithDefaults()
	if err != nil {
		return nil, err
	}

	dlOpts := []download.Option{download.WithUserAgent(a.userAgent())}
	if a.httpClient != nil {
		dlOpts = append(dlOpts, download.WithHTTPClient(a.httpClient))
	}

	updOpts := []selfupdate.UpdaterOption{selfupdate.WithOutput(a.stdout)}
	if owner, repo, err := selfupdate.ParseRepoURL(env.ReleaseRepo); err == nil {
		ghOpts := []selfupdate.ClientOption{
			selfupdate.WithRepo(owner, repo),
			selfupdate.WithUserAgent(a.userAgent()),
		}
		if u.APIBaseURL != "" {
			ghOpts = append(ghOpts, selfupdate.WithBaseURL(u.APIBaseURL))
		}
		// A token raises the API rate limit from 60 to 5000 requests per hour.
		if token := os.Getenv("GITHUB_TOKEN"); token != "" {
			ghOpts = append(ghOpts, selfupdate.WithToken(token))
		}
		if a.httpClient != nil {
			ghOpts = append(ghOpts, selfupdate.WithHTTPClient(a.httpClient))
		}
		updOpts = append(updOpts, selfupdate.WithReleaseSource(selfupdate.NewGitHubClient(ghOpts...)))
	} else {
		slog.Debug("release lookup disabled", "release_repo", env.ReleaseRepo, "error", err)
	}

	return selfupdate.NewUpdater(env, a.versionClient(), download.New(dlOpts...), updOpts...), nil
}
