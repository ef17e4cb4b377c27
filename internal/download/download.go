// SPDX-License-Identifier: MPL-2.0

// Package download fetches a URL into a file.
//
// The destination file only ever appears complete: the body is streamed into
// a temporary file in the destination directory, which is renamed onto the
// final name once fully written. A failed or interrupted download leaves no
// file at the destination.
package download

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

const (
	// maxBodyBytes caps a single download (500 MB).
	maxBodyBytes = 500 << 20

	defaultTimeout = 5 * time.Minute
)

type (
	// Destination names where a download is written.
	Destination struct {
		// File is the file name inside Dir.
		File string
		// Dir is created if it does not exist.
		Dir string
	}

	// Client downloads over HTTP.
	Client struct {
		httpClient *http.Client
		userAgent  string
	}

	// Option configures a Client.
	Option func(*Client)
)

// Path returns the full destination path.
func (d Destination) Path() string {
	return filepath.Join(d.Dir, d.File)
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(cl *Client) {
		cl.userAgent = ua
	}
}

// New creates a Client. Redirects are followed, which release hosts rely on.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		userAgent:  "mvc/dev",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Download fetches rawURL into dest.
func (c *Client) Download(ctx context.Context, rawURL string, dest Destination) (err error) {
	if dest.File == "" {
		return fmt.Errorf("download destination has no file name")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", redactURL(rawURL), err)
	}
	defer func() { _ = resp.Body.Close() }() // read-only response body

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("downloading %s: unexpected status %d", redactURL(rawURL), resp.StatusCode)
	}

	if err := os.MkdirAll(dest.Dir, 0o755); err != nil {
		return fmt.Errorf("creating download directory: %w", err)
	}

	tmp, err := os.CreateTemp(dest.Dir, "."+dest.File+"-*.part")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	renamed := false
	defer func() {
		if !renamed {
			_ = os.Remove(tmp.Name())
		}
	}()

	n, err := io.Copy(tmp, io.LimitReader(resp.Body, maxBodyBytes+1))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", dest.Path(), err)
	}
	if n > maxBodyBytes {
		return fmt.Errorf("downloading %s: body exceeds %d bytes", redactURL(rawURL), maxBodyBytes)
	}

	if err := os.Rename(tmp.Name(), dest.Path()); err != nil {
		return fmt.Errorf("moving download into place: %w", err)
	}
	renamed = true

	slog.Debug("download complete", "url", redactURL(rawURL), "path", dest.Path(), "bytes", n)
	return nil
}

// redactURL strips query parameters and fragments for safe inclusion in
// messages.
func redactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid-url>"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
