// SPDX-License-Identifier: MPL-2.0

package selfupdate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultAPIBaseURL is the GitHub REST API root.
	DefaultAPIBaseURL = "https://api.github.com"

	// maxJSONResponseBytes is the upper bound on JSON API response size (10 MB).
	maxJSONResponseBytes = 10 << 20
)

var (
	// ErrReleaseNotFound is returned when the repository has no published release.
	ErrReleaseNotFound = errors.New("release not found")
	// ErrInvalidRepoURL is returned when a release repository URL has no owner/name.
	ErrInvalidRepoURL = errors.New("invalid release repository URL")
)

type (
	// RateLimitError is returned when the GitHub API rate limit is exceeded.
	RateLimitError struct {
		Limit     int
		Remaining int
		ResetAt   time.Time
	}

	// Release is a published GitHub release.
	Release struct {
		TagName string
		Assets  []Asset
	}

	// Asset is a downloadable file attached to a release.
	Asset struct {
		Name               string
		BrowserDownloadURL string
		Size               int64
	}

	githubRelease struct {
		TagName string        `json:"tag_name"`
		Assets  []githubAsset `json:"assets"`
	}

	githubAsset struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
		Size               int64  `json:"size"`
	}

	// GitHubClient reads release metadata from the GitHub REST API.
	GitHubClient struct {
		httpClient *http.Client
		owner      string
		repo       string
		baseURL    string
		token      string
		userAgent  string
	}

	// ClientOption configures a GitHubClient.
	ClientOption func(*GitHubClient)
)

// Error formats the rate limit details.
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("GitHub API rate limit exceeded (%d remaining, resets at %s)",
		e.Remaining, e.ResetAt.UTC().Format("15:04 UTC"))
}

// FindAsset returns the asset called name, or nil.
func (r *Release) FindAsset(name string) *Asset {
	for i := range r.Assets {
		if r.Assets[i].Name == name {
			return &r.Assets[i]
		}
	}
	return nil
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(g *GitHubClient) {
		g.httpClient = c
	}
}

// WithBaseURL overrides the API base URL, primarily for test servers.
func WithBaseURL(base string) ClientOption {
	return func(g *GitHubClient) {
		g.baseURL = strings.TrimRight(base, "/")
	}
}

// WithToken sets a token for authenticated requests, which get a higher rate
// limit.
func WithToken(token string) ClientOption {
	return func(g *GitHubClient) {
		g.token = token
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(g *GitHubClient) {
		g.userAgent = ua
	}
}

// WithRepo sets the repository owner and name.
func WithRepo(owner, repo string) ClientOption {
	return func(g *GitHubClient) {
		g.owner = owner
		g.repo = repo
	}
}

// NewGitHubClient creates a client for TeamMV/mvc on api.github.com.
func NewGitHubClient(opts ...ClientOption) *GitHubClient {
	c := &GitHubClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		owner:      "TeamMV",
		repo:       "mvc",
		baseURL:    DefaultAPIBaseURL,
		userAgent:  "mvc/dev",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ParseRepoURL extracts owner and name from a repository web URL such as
// https://github.com/TeamMV/mvc.
func ParseRepoURL(repoURL string) (owner, repo string, err error) {
	u, err := url.Parse(repoURL)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrInvalidRepoURL, err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidRepoURL, repoURL)
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), nil
}

// Latest fetches the repository's latest published release.
func (c *GitHubClient) Latest(ctx context.Context) (*Release, error) {
	latestURL := fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.baseURL, c.owner, c.repo)

	resp, err := c.doRequest(ctx, latestURL)
	if err != nil {
		return nil, fmt.Errorf("getting latest release: %w", err)
	}
	defer func() { _ = resp.Body.Close() }() // read-only response body

	if err := checkRateLimit(resp); err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrReleaseNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("getting latest release: unexpected status %d", resp.StatusCode)
	}

	var gr githubRelease
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxJSONResponseBytes)).Decode(&gr); err != nil {
		return nil, fmt.Errorf("getting latest release: decoding response: %w", err)
	}

	rel := &Release{TagName: gr.TagName, Assets: make([]Asset, 0, len(gr.Assets))}
	for _, ga := range gr.Assets {
		rel.Assets = append(rel.Assets, Asset(ga))
	}
	return rel, nil
}

// Open streams the file at assetURL. The caller closes the returned reader.
func (c *GitHubClient) Open(ctx context.Context, assetURL string) (io.ReadCloser, error) {
	resp, err := c.doRequest(ctx, assetURL)
	if err != nil {
		return nil, fmt.Errorf("downloading asset %s: %w", redactURL(assetURL), err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("downloading asset %s: unexpected status %d", redactURL(assetURL), resp.StatusCode)
	}
	return resp.Body, nil
}

func (c *GitHubClient) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("User-Agent", c.userAgent)

	// Only GitHub hosts get the token; asset URLs may redirect to a CDN.
	if c.token != "" && isGitHubHost(req.URL, c.baseURL) {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	return resp, nil
}

// checkRateLimit returns a RateLimitError when X-RateLimit-Remaining is zero.
func checkRateLimit(resp *http.Response) error {
	rem, err := strconv.Atoi(resp.Header.Get("X-RateLimit-Remaining"))
	if err != nil || rem > 0 {
		return nil //nolint:nilerr // absent or malformed headers are not a rate limit
	}

	limit, _ := strconv.Atoi(resp.Header.Get("X-RateLimit-Limit"))                 //nolint:errcheck // best effort
	resetUnix, _ := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64) //nolint:errcheck // best effort
	return &RateLimitError{Limit: limit, ResetAt: time.Unix(resetUnix, 0)}
}

// isGitHubHost reports whether reqURL targets the API host, or github.com
// when the API is api.github.com.
func isGitHubHost(reqURL *url.URL, baseURL string) bool {
	base, err := url.Parse(baseURL)
	if err != nil {
		return false
	}
	if strings.EqualFold(reqURL.Host, base.Host) {
		return true
	}
	return strings.EqualFold(base.Host, "api.github.com") && strings.EqualFold(reqURL.Host, "github.com")
}

// redactURL strips query parameters and fragments for safe inclusion in
// error messages.
func redactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid-url>"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
