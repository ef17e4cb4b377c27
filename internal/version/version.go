// SPDX-License-Identifier: MPL-2.0

// Package version reads the remote version document that announces the
// current tool release and the tracked framework versions.
//
// The document is a flat JSON object. The tool's own version is stored under
// "toolVersion" (older documents use the tool name, "mvc"); every other key
// is a language whose value maps framework names to versions:
//
//	{"toolVersion": "1.2.0", "java": {"rendering": "0.4.1"}}
//
// Callers decide how to treat errors. The CLI is fail-open: a version it
// cannot fetch is treated as "no update available".
package version

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultURL is the version document endpoint.
	DefaultURL = "https://files.mvteam.dev/version"

	// UnknownVersion is returned for a framework that is not tracked.
	UnknownVersion = "-1"

	// NoFramework is the framework name meaning "none selected".
	NoFramework = "none"

	toolVersionKey = "toolVersion"
	legacyToolKey  = "mvc"

	defaultTimeout       = 10 * time.Second
	maxJSONResponseBytes = 1 << 20
)

// ErrNoToolVersion is returned when the document carries no tool version.
var ErrNoToolVersion = errors.New("version document has no tool version")

type (
	// Info is a parsed version document.
	Info struct {
		// Tool is the latest released tool version.
		Tool string
		// Frameworks maps language to framework to version.
		Frameworks map[string]map[string]string
	}

	// Client fetches the version document.
	Client struct {
		httpClient *http.Client
		url        string
		userAgent  string
	}

	// Option configures a Client.
	Option func(*Client)
)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithURL overrides the version document endpoint.
func WithURL(u string) Option {
	return func(cl *Client) {
		cl.url = u
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(cl *Client) {
		cl.userAgent = ua
	}
}

// NewClient creates a Client for DefaultURL with a 10 second timeout.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		url:        DefaultURL,
		userAgent:  "mvc/dev",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the endpoint the client reads.
func (c *Client) URL() string {
	return c.url
}

// Fetch downloads and parses the version document.
func (c *Client) Fetch(ctx context.Context) (*Info, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching version document: %w", err)
	}
	defer func() { _ = resp.Body.Close() }() // read-only response body

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching version document: unexpected status %d", resp.StatusCode)
	}

	return Parse(io.LimitReader(resp.Body, maxJSONResponseBytes))
}

// Parse decodes a version document. Keys whose value is neither a string
// nor an object of strings are ignored.
func Parse(r io.Reader) (*Info, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding version document: %w", err)
	}

	info := &Info{Frameworks: make(map[string]map[string]string)}
	for key, value := range raw {
		if key == toolVersionKey || key == legacyToolKey {
			continue
		}
		var fws map[string]string
		if json.Unmarshal(value, &fws) == nil {
			info.Frameworks[key] = fws
		}
	}

	for _, key := range []string{toolVersionKey, legacyToolKey} {
		value, ok := raw[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(value, &info.Tool); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", key, err)
		}
		break
	}
	return info, nil
}

// Framework returns the tracked version for a language and framework, or
// UnknownVersion when the framework is "none", empty, or not tracked.
func (i *Info) Framework(language, framework string) string {
	if framework == "" || strings.EqualFold(framework, NoFramework) {
		return UnknownVersion
	}
	if v, ok := i.Frameworks[language][framework]; ok && v != "" {
		return v
	}
	return UnknownVersion
}

// ToolVersion fetches the latest tool version.
func (c *Client) ToolVersion(ctx context.Context) (string, error) {
	info, err := c.Fetch(ctx)
	if err != nil {
		return "", err
	}
	if info.Tool == "" {
		return "", ErrNoToolVersion
	}
	return info.Tool, nil
}

// FrameworkVersion fetches the tracked version of a framework. An untracked
// pair yields UnknownVersion and a nil error: it is a defined answer, not a
// failure. A "none" framework returns UnknownVersion without a request.
func (c *Client) FrameworkVersion(ctx context.Context, language, framework string) (string, error) {
	if framework == "" || strings.EqualFold(framework, NoFramework) {
		return UnknownVersion, nil
	}
	info, err := c.Fetch(ctx)
	if err != nil {
		return "", err
	}
	return info.Framework(language, framework), nil
}
