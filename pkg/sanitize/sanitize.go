// Package sanitize normalizes arbitrary text so it can be embedded in
// generated feed XML.
package sanitize

import (
	"html"
	"strings"
	"unicode"
)

// Code points that render as nothing (or as odd spacing) and have no place in
// feed text: soft hyphen, zero-width characters, word joiner, BOM and the
// Unicode line/paragraph separators. Members of the Zs category are handled
// separately via unicode.Is.
var invisibles = map[rune]bool{
	'\u00ad': true, // soft hyphen
	'\u200b': true, // zero width space
	'\u200c': true, // zero width non-joiner
	'\u200d': true, // zero width joiner
	'\u2028': true, // line separator
	'\u2029': true, // paragraph separator
	'\u2060': true, // word joiner
	'\ufeff': true, // BOM
}

// Clean trims the input, replaces control and invisible characters with
// spaces, collapses whitespace runs and normalizes HTML entities down to a
// single XML-escaped form. Clean is idempotent: applying it twice yields the
// same string as applying it once.
func Clean(s string) string {
	if s == "" {
		return ""
	}

	s = decodeEntities(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r <= 0x1f || (r >= 0x7f && r <= 0x9f):
			// C0 controls, DEL and C1 controls
			b.WriteByte(' ')
		case invisibles[r] || unicode.Is(unicode.Zs, r):
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}

	// Collapse whitespace runs and trim the ends in one pass.
	s = strings.Join(strings.Fields(b.String()), " ")

	return html.EscapeString(s)
}

// decodeEntities resolves HTML entities until the string stops changing, so
// double-escaped input ("&amp;lt;" and worse) collapses to plain text before
// the final escape pass. Without the loop Clean would not be idempotent.
// Each decode pass strictly shrinks any remaining nested escape, so the loop
// terminates.
func decodeEntities(s string) string {
	for {
		decoded := html.UnescapeString(s)
		if decoded == s {
			return s
		}
		s = decoded
	}
}
