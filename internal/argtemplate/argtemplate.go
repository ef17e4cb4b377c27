// SPDX-License-Identifier: MPL-2.0

// Package argtemplate substitutes positional values into script templates.
//
// A template refers to its values with {0}, {1}, ... . Substitution is a
// single left-to-right pass: text produced by a substitution is never scanned
// again, so a value containing "{1}" is inserted literally. A placeholder whose
// index has no value is left untouched, and values with no placeholder are
// ignored. Keeping a definition's argument count consistent with the
// placeholders in its template is the script author's job; Placeholders lets
// tooling report mismatches without rejecting them.
package argtemplate

import (
	"strconv"
	"strings"
)

// Positional returns exactly argCount values taken from cliArgs[1:]. Index 0
// of cliArgs is the subcommand name. Positions the user did not supply are
// padded with the empty string and surplus arguments are dropped, so a script
// with optional trailing parameters never fails for missing input.
func Positional(argCount int, cliArgs []string) []string {
	if argCount <= 0 {
		return []string{}
	}

	values := make([]string, argCount)
	for i := range values {
		if i+1 < len(cliArgs) {
			values[i] = cliArgs[i+1]
		}
	}
	return values
}

// Substitute replaces each {i} placeholder in template with values[i].
func Substitute(template string, values []string) string {
	if len(values) == 0 || !strings.Contains(template, "{") {
		return template
	}

	var b strings.Builder
	b.Grow(len(template))

	rest := template
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:open])

		idx, width, ok := parsePlaceholder(rest[open:])
		if ok && idx < len(values) {
			b.WriteString(values[idx])
			rest = rest[open+width:]
			continue
		}

		b.WriteByte('{')
		rest = rest[open+1:]
	}

	return b.String()
}

// Placeholders returns the distinct placeholder indices used by template in
// order of first appearance.
func Placeholders(template string) []int {
	var (
		found []int
		seen  = map[int]bool{}
	)

	rest := template
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			return found
		}
		idx, width, ok := parsePlaceholder(rest[open:])
		if !ok {
			rest = rest[open+1:]
			continue
		}
		if !seen[idx] {
			seen[idx] = true
			found = append(found, idx)
		}
		rest = rest[open+width:]
	}
}

// parsePlaceholder reports whether s starts with {N} and returns N together
// with the length of the placeholder text.
func parsePlaceholder(s string) (index, width int, ok bool) {
	end := strings.IndexByte(s, '}')
	if end < 2 {
		return 0, 0, false
	}

	digits := s[1:end]
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0, 0, false
		}
	}

	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, 0, false
	}
	return n, end + 1, true
}
