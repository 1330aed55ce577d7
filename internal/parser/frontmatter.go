// Package parser handles note front-matter and Markdown structure.
package parser

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aidanlsb/labnotes/internal/dates"
)

// Delimiter opens and closes a front-matter block.
const Delimiter = "---"

var (
	// ErrNoFrontmatter indicates the content does not start with a delimiter line.
	ErrNoFrontmatter = errors.New("no frontmatter found")
	// ErrUnclosedFrontmatter indicates the closing delimiter is missing.
	ErrUnclosedFrontmatter = errors.New("unclosed frontmatter")
)

// Metadata is decoded front-matter.
//
// Values are normalized: sequences are []string, scalars are string, YAML
// null is nil, and nested mappings are map[string]any.
type Metadata map[string]any

// TagValue is the tags field as found on disk. Older notes sometimes carry
// tags as a single string instead of a list.
type TagValue struct {
	List   []string
	Raw    string
	IsList bool
}

// Has reports whether key is present, even if its value is null.
func (m Metadata) Has(key string) bool {
	_, ok := m[key]
	return ok
}

// String returns the value of key as text. Lists are joined with ", ".
// Missing and null values return "".
func (m Metadata) String(key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case []string:
		return strings.Join(v, ", ")
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// Tags returns the tags field.
func (m Metadata) Tags() TagValue {
	switch v := m["tags"].(type) {
	case []string:
		return TagValue{List: v, IsList: true}
	case string:
		return TagValue{Raw: v}
	default:
		return TagValue{}
	}
}

// FrontmatterBounds returns the opening and closing frontmatter line indices.
// It only detects frontmatter when the first line is '---'.
// If frontmatter is present but unclosed, endLine is -1.
func FrontmatterBounds(lines []string) (startLine int, endLine int, ok bool) {
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != Delimiter {
		return 0, -1, false
	}

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == Delimiter {
			return 0, i, true
		}
	}

	return 0, -1, true
}

// ParseFrontmatter extracts front-matter from Markdown content.
//
// It never fails: missing, unclosed, or undecodable front-matter all yield an
// empty Metadata. Use DecodeFrontmatter when the caller needs to report why.
func ParseFrontmatter(content string) Metadata {
	meta, err := DecodeFrontmatter(content)
	if err != nil {
		return Metadata{}
	}
	return meta
}

// DecodeFrontmatter is the strict form of ParseFrontmatter.
func DecodeFrontmatter(content string) (Metadata, error) {
	lines := strings.Split(content, "\n")

	_, endLine, ok := FrontmatterBounds(lines)
	if !ok {
		return Metadata{}, ErrNoFrontmatter
	}
	if endLine == -1 {
		return Metadata{}, ErrUnclosedFrontmatter
	}

	block := strings.Join(lines[1:endLine], "\n")

	var raw any
	if err := yaml.Unmarshal([]byte(block), &raw); err != nil {
		return Metadata{}, fmt.Errorf("failed to parse frontmatter as YAML: %w", err)
	}

	switch data := raw.(type) {
	case nil:
		// Empty block or comments only.
		return Metadata{}, nil
	case map[string]any:
		meta := make(Metadata, len(data))
		for key, value := range data {
			meta[key] = normalizeValue(value)
		}
		return meta, nil
	default:
		return Metadata{}, fmt.Errorf("frontmatter is a %T, not a mapping", raw)
	}
}

// Body returns the content after the front-matter block, or the whole content
// when there is none.
func Body(content string) string {
	lines := strings.Split(content, "\n")
	_, endLine, ok := FrontmatterBounds(lines)
	if !ok || endLine == -1 {
		return content
	}
	return strings.Join(lines[endLine+1:], "\n")
}

func normalizeValue(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		return v
	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			items = append(items, scalarString(item))
		}
		return items
	case map[string]any:
		nested := make(map[string]any, len(v))
		for key, item := range v {
			nested[key] = normalizeValue(item)
		}
		return nested
	default:
		return scalarString(v)
	}
}

func scalarString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case time.Time:
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 && v.Nanosecond() == 0 {
			return v.Format(dates.DateLayout)
		}
		return dates.Format(v)
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+"="+scalarString(v[k]))
		}
		return strings.Join(parts, " ")
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, scalarString(item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(v)
	}
}
