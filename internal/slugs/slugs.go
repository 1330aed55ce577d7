// Package slugs provides the slugification helpers used across labnotes.
//
// There are two strategies:
//   - Directory slugs (Slug): the on-disk name of a project, idea, or experiment
//     directory. These keep Unicode word characters and must never produce a
//     path separator or a parent reference.
//   - Anchor slugs (AnchorSlug): fragment IDs for Markdown headings in generated
//     reports, built on gosimple/slug.
package slugs

import (
	"strings"
	"unicode"
	"unicode/utf8"

	goslug "github.com/gosimple/slug"
)

// DefaultMaxLength is the maximum length of a directory slug.
const DefaultMaxLength = 100

// Untitled is returned when a title has no usable characters left. It is cut
// to the maximum length like any other slug.
const Untitled = "untitled"

// Slug converts text to a filesystem-safe directory name.
//
// The result is lowercase, dash-separated, at most maxLength runes long, and
// never empty. Applying Slug to its own output returns the same value.
func Slug(text string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}

	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(text) {
		switch {
		case isWordRune(r):
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		case r == '-' || unicode.IsSpace(r):
			pendingDash = true
		}
		// Everything else is dropped without acting as a separator.
	}

	s := b.String()

	// Word runes never include these, but keep the guarantee explicit.
	s = strings.ReplaceAll(s, "..", "")
	s = strings.ReplaceAll(s, "/", "")
	s = strings.ReplaceAll(s, `\`, "")

	if utf8.RuneCountInString(s) > maxLength {
		s = string([]rune(s)[:maxLength])
		if i := strings.LastIndexByte(s, '-'); i >= 0 {
			s = s[:i]
		}
		s = strings.Trim(s, "-")
	}

	if s == "" {
		if maxLength < len(Untitled) {
			return Untitled[:maxLength]
		}
		return Untitled
	}
	return s
}

// Default slugs text with DefaultMaxLength.
func Default(text string) string {
	return Slug(text, DefaultMaxLength)
}

// AnchorSlug converts a heading text to a Markdown fragment ID.
func AnchorSlug(text string) string {
	s := goslug.Make(text)
	if s == "" {
		return Default(text)
	}
	return s
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
