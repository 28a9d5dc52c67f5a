// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package markdown

import (
	"strings"
)

// inlineSpecials are backslash-escaped wherever they occur in plain text.
// '&' is included so text such as "&amp;" is not read as an entity.
const inlineSpecials = "\\*_[]`<~&"

// Escape backslash-escapes the characters that would otherwise start
// emphasis, links, code spans, autolinks, strikethrough, or entity
// references. Removing every escaping backslash from the result gives
// back s.
func Escape(s string) string {
	if !strings.ContainsAny(s, inlineSpecials) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		if strings.ContainsRune(inlineSpecials, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Unescape removes backslash escapes from s. It is the inverse of Escape
// for any input and is used to check the round-trip property.
func Unescape(s string) string {
	if !strings.Contains(s, "\\") {
		return s
	}
	var b strings.Builder
	escaped := false
	for _, r := range s {
		if r == '\\' && !escaped {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(r)
	}
	return b.String()
}

// escapeHeading additionally escapes '#', so a trailing run of hashes is not
// read as a closing sequence.
func escapeHeading(s string) string {
	return strings.ReplaceAll(s, "#", "\\#")
}

// escapeLeading escapes a block-level marker at the start of a line's
// content (heading, quote, list bullet, ordered-list number) so a topic or
// note reading "1. step" stays text instead of opening a nested list.
func escapeLeading(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '#', '>', '-', '+', '=', '|':
		return "\\" + s
	}

	digits := 0
	for digits < len(s) && digits < 9 && s[digits] >= '0' && s[digits] <= '9' {
		digits++
	}
	if digits > 0 && digits < len(s) && (s[digits] == '.' || s[digits] == ')') {
		return s[:digits] + "\\" + s[digits:]
	}
	return s
}

// linkDestination renders a URL for use inside (...). Destinations with
// spaces, parentheses, or angle brackets use the <...> form.
func linkDestination(url string) string {
	if !strings.ContainsAny(url, " \t()<>") {
		return url
	}
	r := strings.NewReplacer("<", "\\<", ">", "\\>")
	return "<" + r.Replace(url) + ">"
}

// collapseNewlines folds line breaks into single spaces.
func collapseNewlines(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' {
			return ' '
		}
		return r
	}, s)
}
