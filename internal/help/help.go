// SPDX-License-Identifier: MPL-2.0

// Package help holds the static help pages printed by `mvc help` and by
// `--help` on the script alias commands.
package help

import (
	"embed"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
)

const (
	// TopicMain is the overview page.
	TopicMain Topic = "main"
	// TopicPush documents the push alias.
	TopicPush Topic = "push"
	// TopicCommit documents the commit alias.
	TopicCommit Topic = "commit"
	// TopicBuild documents the build alias.
	TopicBuild Topic = "build"

	// defaultWidth is the word wrap width for rendered pages.
	defaultWidth = 80
)

// ErrUnknownTopic is returned for a topic with no page.
var ErrUnknownTopic = errors.New("unknown help topic")

var (
	//go:embed pages/*.md
	pages embed.FS

	// render turns markdown into terminal output. Replaced in tests.
	render = renderMarkdown
)

// Topic names one help page.
type Topic string

// Topics returns every topic with a page, sorted.
func Topics() []Topic {
	entries, err := pages.ReadDir("pages")
	if err != nil {
		return nil
	}
	topics := make([]Topic, 0, len(entries))
	for _, e := range entries {
		topics = append(topics, Topic(strings.TrimSuffix(e.Name(), ".md")))
	}
	slices.Sort(topics)
	return topics
}

// Markdown returns the raw page for topic.
func Markdown(topic Topic) (string, error) {
	data, err := pages.ReadFile("pages/" + string(topic) + ".md")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownTopic, topic)
	}
	return string(data), nil
}

// Render returns the page for topic styled for the terminal. scheme is a
// glamour standard style name ("dark", "light", "notty") or "auto"/"" to
// detect the terminal background. If styling fails the raw markdown is
// returned, so help is always printable.
func Render(topic Topic, scheme string) (string, error) {
	md, err := Markdown(topic)
	if err != nil {
		return "", err
	}
	out, err := render(md, scheme)
	if err != nil {
		return md, nil //nolint:nilerr // raw markdown is an acceptable fallback
	}
	return out, nil
}

func renderMarkdown(in, scheme string) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(defaultWidth)}
	if _, ok := styles.DefaultStyles[scheme]; ok {
		opts = append(opts, glamour.WithStandardStyle(scheme))
	} else {
		opts = append(opts, glamour.WithAutoStyle())
	}

	renderer, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", err
	}
	return renderer.Render(in)
}
