// Package dates provides canonical timestamp formatting and parsing.
//
// Every front-matter timestamp written by labnotes uses TimestampLayout. Reads
// are more tolerant because files are hand-edited and older notes may carry
// zone-less or date-only values.
package dates

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	// DateLayout is YYYY-MM-DD.
	DateLayout = "2006-01-02"

	// TimestampLayout is ISO-8601 with microseconds and a zone offset.
	TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"
)

var dateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// zone-less layouts are interpreted in the local zone.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Format renders t with TimestampLayout.
func Format(t time.Time) string {
	return t.Format(TimestampLayout)
}

// IsValidDate checks if a string is a valid YYYY-MM-DD date.
func IsValidDate(s string) bool {
	if !dateRegex.MatchString(s) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// ParseTimestamp parses a front-matter timestamp.
//
// Accepted formats:
//   - RFC3339 with optional fractional seconds (2025-01-01T10:30:00Z, ...+05:00)
//   - YYYY-MM-DDTHH:MM[:SS[.fraction]] without a zone (local time)
//   - YYYY-MM-DD (local midnight)
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	if s == "" {
		return time.Time{}, fmt.Errorf("invalid timestamp: empty")
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	// Lowercase zone marker, as some editors write it.
	if strings.HasSuffix(s, "z") {
		if t, err := time.Parse(time.RFC3339Nano, strings.TrimSuffix(s, "z")+"Z"); err == nil {
			return t, nil
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	if IsValidDate(s) {
		return time.ParseInLocation(DateLayout, s, time.Local)
	}
	return time.Time{}, fmt.Errorf("invalid timestamp: %q", s)
}
