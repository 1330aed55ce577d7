package model

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/aidanlsb/labnotes/internal/slugs"
)

// DefaultTitleMaxLength is the longest title accepted, in characters.
const DefaultTitleMaxLength = 200

// ValidationError is returned when user input is rejected before any write.
type ValidationError struct {
	Field   string
	Value   string
	Reason  string
	Allowed []string
}

func (e *ValidationError) Error() string {
	msg := e.Reason
	if e.Value != "" {
		msg = fmt.Sprintf("%s: %q", e.Reason, e.Value)
	}
	if len(e.Allowed) > 0 {
		msg += fmt.Sprintf(" (valid %s values: %s)", e.Field, strings.Join(e.Allowed, ", "))
	}
	return msg
}

// ValidateTitle checks that title is safe to turn into a directory name.
// On failure reason describes the problem; on success it is empty.
func ValidateTitle(title string, maxLength int) (ok bool, reason string) {
	if strings.TrimSpace(title) == "" {
		return false, "Title cannot be empty"
	}
	if utf8.RuneCountInString(title) > maxLength {
		return false, fmt.Sprintf("Title too long (max %d characters)", maxLength)
	}
	if strings.Contains(title, "..") || strings.ContainsAny(title, `/\`) {
		return false, "Title cannot contain path separators or '..'"
	}
	if slugs.Default(title) == slugs.Untitled {
		return false, "Title must contain at least some alphanumeric characters"
	}
	return true, ""
}

// CheckTitle is ValidateTitle with the default length, as an error.
func CheckTitle(title string) error {
	if ok, reason := ValidateTitle(title, DefaultTitleMaxLength); !ok {
		return &ValidationError{Field: "title", Value: title, Reason: reason}
	}
	return nil
}

// CheckPriority validates a priority, returning the default for "".
func CheckPriority(p string) (string, error) {
	if p == "" {
		return DefaultPriority, nil
	}
	if !ValidPriority(p) {
		return "", &ValidationError{Field: "priority", Value: p, Reason: "invalid priority", Allowed: Priorities}
	}
	return strings.ToLower(strings.TrimSpace(p)), nil
}

// CheckProjectType validates a project type, returning the default for "".
func CheckProjectType(t string) (string, error) {
	if t == "" {
		return DefaultProjectType, nil
	}
	if !ValidProjectType(t) {
		return "", &ValidationError{Field: "type", Value: t, Reason: "invalid project type", Allowed: ProjectTypes}
	}
	return strings.ToLower(strings.TrimSpace(t)), nil
}

// SplitTags parses a comma-separated tag list, dropping empty entries.
func SplitTags(raw string) []string {
	tags := []string{}
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
