// SPDX-License-Identifier: MPL-2.0

package selfupdate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/teammv/mvc/internal/download"
)

// User-facing progress messages.
const (
	msgNeedsElevation   = "ERROR: This command needs to be ran as sudo!"
	msgCheckingLocal    = "Checking local versions..."
	msgLocalFound       = "Local version found!"
	msgNoLocal          = "No local versions found."
	msgCheckingRemote   = "Checking external version..."
	msgNewVersion       = "New version detected!"
	msgDownloading      = "Downloading new version..."
	msgDownloaded       = "Downloaded new version!"
	msgDownloadFailed   = "New version download failed."
	msgInstallFailed    = "New version install failed."
	msgNowUpToDate      = "Tool is now up to date!"
	msgUpToDate         = "Tool up to date!"
	msgCheckingForNew   = "Checking for new version..."
	msgCheckUpToDate    = "Tool is up to date!"
	msgRunUpgradeFormat = "Run 'sudo %s upgrade' to update to the new version!"
)

// Upgrade states.
const (
	StatePrivilegeCheck State = iota
	StateStagedArtifactCheck
	StateFreshDownload
	StateSwapFromStage
	StateSwapped
	StateAborted
)

// Reasons an upgrade ended in StateAborted.
const (
	ReasonNone AbortReason = iota
	ReasonNotElevated
	ReasonUpToDate
	ReasonVersionUnavailable
	ReasonDownloadFailed
	ReasonSwapFailed
)

var (
	// ErrNotElevated is returned when the install directory is not writable.
	ErrNotElevated = errors.New("insufficient permission to replace the installed binary")
	// ErrInvalidVersion indicates a version string is not valid semver.
	ErrInvalidVersion = errors.New("invalid semantic version")
)

type (
	// State is a step of the upgrade state machine.
	State int

	// AbortReason explains a StateAborted result.
	AbortReason int

	// VersionSource reports the latest released tool version.
	// *version.Client satisfies it.
	VersionSource interface {
		ToolVersion(ctx context.Context) (string, error)
	}

	// Downloader writes the contents of a URL to a destination file, creating
	// the file only once the download is complete. *download.Client satisfies it.
	Downloader interface {
		Download(ctx context.Context, url string, dest download.Destination) error
	}

	// ReleaseSource describes published releases and streams their assets.
	// *GitHubClient satisfies it.
	ReleaseSource interface {
		Latest(ctx context.Context) (*Release, error)
		Open(ctx context.Context, url string) (io.ReadCloser, error)
	}

	// Result is the outcome of Upgrade.
	Result struct {
		// State is StateSwapped or StateAborted.
		State State
		// Reason is set when State is StateAborted.
		Reason AbortReason
		// Visited lists every state entered, in order.
		Visited []State
		// Err is the underlying failure, if any. It is informational: the
		// upgrade already reported it to the user.
		Err error
	}

	// CheckResult is the outcome of CheckVersion.
	CheckResult struct {
		Current         string
		Latest          string
		UpdateAvailable bool
		// Err is the swallowed failure when the check could not complete.
		Err error
	}

	// Updater runs the upgrade and check flows for one Env.
	Updater struct {
		env        Env
		versions   VersionSource
		downloader Downloader
		releases   ReleaseSource
		out        io.Writer
	}

	// UpdaterOption configures an Updater.
	UpdaterOption func(*Updater)
)

func (s State) String() string {
	switch s {
	case StatePrivilegeCheck:
		return "PrivilegeCheck"
	case StateStagedArtifactCheck:
		return "StagedArtifactCheck"
	case StateFreshDownload:
		return "FreshDownload"
	case StateSwapFromStage:
		return "SwapFromStage"
	case StateSwapped:
		return "Swapped"
	case StateAborted:
		return "Aborted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

func (r AbortReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonNotElevated:
		return "not_elevated"
	case ReasonUpToDate:
		return "up_to_date"
	case ReasonVersionUnavailable:
		return "version_unavailable"
	case ReasonDownloadFailed:
		return "download_failed"
	case ReasonSwapFailed:
		return "swap_failed"
	default:
		return fmt.Sprintf("AbortReason(%d)", int(r))
	}
}

// WithReleaseSource enables release asset lookup. Without it the download
// URL is always built from Env.ReleaseRepo.
func WithReleaseSource(r ReleaseSource) UpdaterOption {
	return func(u *Updater) {
		u.releases = r
	}
}

// WithOutput sets where progress messages are written. Defaults to stdout.
func WithOutput(w io.Writer) UpdaterOption {
	return func(u *Updater) {
		u.out = w
	}
}

// NewUpdater creates an Updater. env must be complete; see Env.WithDefaults.
func NewUpdater(env Env, versions VersionSource, downloader Downloader, opts ...UpdaterOption) *Updater {
	u := &Updater{
		env:        env,
		versions:   versions,
		downloader: downloader,
		out:        os.Stdout,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Upgrade replaces the installed binary with the latest release. It never
// returns an error: every failure ends in StateAborted after a message has
// been written, and the cause is logged and kept in Result.Err.
func (u *Updater) Upgrade(ctx context.Context) Result {
	res := Result{}
	enter := func(s State) { res.Visited = append(res.Visited, s) }
	abort := func(reason AbortReason, err error) Result {
		enter(StateAborted)
		res.State, res.Reason, res.Err = StateAborted, reason, err
		return res
	}

	enter(StatePrivilegeCheck)
	if err := probeWritable(filepath.Dir(u.env.InstallPath), u.env.ToolName); err != nil {
		slog.Debug("privilege probe failed", "dir", filepath.Dir(u.env.InstallPath), "error", err)
		u.say(msgNeedsElevation)
		return abort(ReasonNotElevated, fmt.Errorf("%w: %w", ErrNotElevated, err))
	}

	enter(StateStagedArtifactCheck)
	u.say(msgCheckingLocal)
	if trustedStagedArtifact(u.env.StagingPath) {
		u.say(msgLocalFound)
		enter(StateSwapFromStage)
		return u.finishSwap(&res, abort)
	}
	u.say(msgNoLocal)

	enter(StateFreshDownload)
	u.say(msgCheckingRemote)
	remote, err := u.versions.ToolVersion(ctx)
	if err != nil {
		slog.Warn("version check failed; assuming up to date", "error", err)
		u.say(msgUpToDate)
		return abort(ReasonVersionUnavailable, err)
	}
	if SameVersion(u.env.Version, remote) {
		u.say(msgUpToDate)
		return abort(ReasonUpToDate, nil)
	}

	u.say(msgNewVersion)
	u.say(msgDownloading)
	if err := u.stage(ctx, remote); err != nil {
		slog.Warn("download failed", "version", remote, "error", err)
		u.say(msgDownloadFailed)
		return abort(ReasonDownloadFailed, err)
	}
	u.say(msgDownloaded)

	return u.finishSwap(&res, abort)
}

func (u *Updater) finishSwap(res *Result, abort func(AbortReason, error) Result) Result {
	if err := swapInto(u.env.StagingPath, u.env.InstallPath); err != nil {
		slog.Warn("swap failed", "staged", u.env.StagingPath, "install", u.env.InstallPath, "error", err)
		u.say(msgInstallFailed)
		return abort(ReasonSwapFailed, err)
	}
	u.say(msgNowUpToDate)
	res.Visited = append(res.Visited, StateSwapped)
	res.State = StateSwapped
	return *res
}

// stage downloads the asset for version to the staging path. When a release
// source is configured and its latest release is version, the release's own
// asset URL is used and the artifact is checked against checksums.txt if
// the release publishes one.
func (u *Updater) stage(ctx context.Context, version string) error {
	assetURL := u.env.DownloadURL(version)

	var sums Checksums
	if u.releases != nil {
		rel, err := u.releases.Latest(ctx)
		switch {
		case err != nil:
			slog.Debug("release lookup failed; using conventional download URL", "error", err)
		case !SameVersion(rel.TagName, version):
			slog.Debug("latest release does not match announced version", "release", rel.TagName, "version", version)
		default:
			if a := rel.FindAsset(u.env.AssetName()); a != nil {
				assetURL = a.BrowserDownloadURL
			}
			if a := rel.FindAsset(ChecksumsAssetName); a != nil {
				sums, err = u.fetchChecksums(ctx, a.BrowserDownloadURL)
				if err != nil {
					return err
				}
			}
		}
	}

	dest := download.Destination{
		File: filepath.Base(u.env.StagingPath),
		Dir:  filepath.Dir(u.env.StagingPath),
	}
	slog.Debug("downloading release asset", "url", redactURL(assetURL), "dest", dest.Path())
	if err := u.downloader.Download(ctx, assetURL, dest); err != nil {
		return err
	}

	if err := sums.Verify(dest.Path(), u.env.AssetName()); err != nil {
		_ = os.Remove(dest.Path())
		return err
	}
	return nil
}

func (u *Updater) fetchChecksums(ctx context.Context, url string) (Checksums, error) {
	body, err := u.releases.Open(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("downloading checksums: %w", err)
	}
	defer func() { _ = body.Close() }() // read-only response body
	return ParseChecksums(io.LimitReader(body, maxJSONResponseBytes))
}

// CheckVersion reports whether a newer version is announced, without
// downloading anything. Any failure is reported to the user as up to date.
func (u *Updater) CheckVersion(ctx context.Context) CheckResult {
	res := CheckResult{Current: u.env.Version}

	u.say(msgCheckingForNew)
	remote, err := u.versions.ToolVersion(ctx)
	if err != nil {
		slog.Debug("version check failed; assuming up to date", "error", err)
		u.say(msgCheckUpToDate)
		res.Err = err
		return res
	}
	res.Latest = remote

	if SameVersion(u.env.Version, remote) {
		u.say(msgCheckUpToDate)
		return res
	}

	res.UpdateAvailable = true
	u.say(msgNewVersion)
	u.say(fmt.Sprintf(msgRunUpgradeFormat, u.env.ToolName))
	return res
}

func (u *Updater) say(msg string) {
	fmt.Fprintln(u.out, msg)
}

// trustedStagedArtifact reports whether path holds an artifact the current
// user staged: a regular file, not a symlink, that stagedByCurrentUser
// accepts. The staging path usually lives in a shared
// temp directory, so anything else found there is removed and the upgrade
// falls through to a fresh download.
func trustedStagedArtifact(path string) bool {
	info, err := os.Lstat(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Debug("cannot stat staging path", "path", path, "error", err)
		}
		return false
	}
	if info.Mode().IsRegular() && stagedByCurrentUser(info) {
		return true
	}

	slog.Warn("ignoring untrusted staged artifact", "path", path, "mode", info.Mode().String())
	if err := os.Remove(path); err != nil {
		slog.Debug("cannot remove untrusted staged artifact", "path", path, "error", err)
	}
	return false
}

// SameVersion reports whether two version strings name the same release.
// Valid semantic versions compare with or without a "v" prefix and ignore
// build metadata; anything else compares as exact text after trimming "v".
func SameVersion(a, b string) bool {
	na, errA := normalizeVersion(a)
	nb, errB := normalizeVersion(b)
	if errA == nil && errB == nil {
		return semver.Compare(na, nb) == 0
	}
	return strings.TrimPrefix(strings.TrimSpace(a), "v") == strings.TrimPrefix(strings.TrimSpace(b), "v")
}

// normalizeVersion adds the "v" prefix the semver package requires and
// validates the result.
func normalizeVersion(v string) (string, error) {
	norm := strings.TrimSpace(v)
	if !strings.HasPrefix(norm, "v") {
		norm = "v" + norm
	}
	if !semver.IsValid(norm) {
		return "", fmt.Errorf("%w: %q", ErrInvalidVersion, v)
	}
	return norm, nil
}
