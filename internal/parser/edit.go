package parser

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aidanlsb/labnotes/internal/dates"
)

// Field is a single front-matter assignment for SetFields.
type Field struct {
	Key   string
	Value any
}

// SetFields rewrites the named top-level front-matter keys in place.
//
// Only the lines belonging to each key are replaced; every other byte of the
// document is preserved. Keys that are not present are appended just before
// the closing delimiter. The rewritten block must still decode as YAML.
func SetFields(content string, fields ...Field) (string, error) {
	lines := strings.Split(content, "\n")

	_, endLine, ok := FrontmatterBounds(lines)
	if !ok {
		return "", ErrNoFrontmatter
	}
	if endLine == -1 {
		return "", ErrUnclosedFrontmatter
	}

	for _, f := range fields {
		rendered, err := FormatValue(f.Value)
		if err != nil {
			return "", fmt.Errorf("field %q: %w", f.Key, err)
		}
		newLine := f.Key + ": " + rendered

		start, stop := keyLines(lines, 1, endLine, f.Key)
		if start == -1 {
			if strings.HasSuffix(lines[endLine], "\r") {
				newLine += "\r"
			}
			lines = append(lines[:endLine], append([]string{newLine}, lines[endLine:]...)...)
			endLine++
			continue
		}

		if strings.HasSuffix(lines[start], "\r") {
			newLine += "\r"
		}
		replaced := append([]string{}, lines[:start]...)
		replaced = append(replaced, newLine)
		replaced = append(replaced, lines[stop:]...)
		endLine -= (stop - start) - 1
		lines = replaced
	}

	var probe any
	if err := yaml.Unmarshal([]byte(strings.Join(lines[1:endLine], "\n")), &probe); err != nil {
		return "", fmt.Errorf("rewritten frontmatter does not parse: %w", err)
	}

	return strings.Join(lines, "\n"), nil
}

// keyLines finds the [start, stop) line range of a top-level key between
// lines[from] and lines[to]. Continuation lines of block values (indented
// lines and column-zero sequence items) belong to the key.
func keyLines(lines []string, from, to int, key string) (int, int) {
	prefix := key + ":"
	for i := from; i < to; i++ {
		line := strings.TrimRight(lines[i], "\r")
		if !strings.HasPrefix(line, prefix) {
			continue
		}
		rest := line[len(prefix):]
		if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
			continue
		}

		stop := i + 1
		for stop < to {
			next := lines[stop]
			if next == "" || strings.TrimSpace(next) == "" {
				break
			}
			if next[0] == ' ' || next[0] == '\t' || strings.HasPrefix(next, "- ") || strings.TrimRight(next, "\r") == "-" {
				stop++
				continue
			}
			break
		}
		return i, stop
	}
	return -1, -1
}

// FormatValue renders a value as a single-line YAML scalar or flow sequence.
//
// Supported values: nil (null), time.Time (dates.TimestampLayout), string,
// []string, bool, and integers.
func FormatValue(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "null", nil
	case time.Time:
		return dates.Format(v), nil
	case string:
		return encodeScalar(v)
	case []string:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, item := range v {
			seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: item})
		}
		return encodeNode(seq)
	case bool, int, int64:
		return fmt.Sprint(v), nil
	default:
		return "", fmt.Errorf("unsupported frontmatter value type %T", value)
	}
}

func encodeScalar(s string) (string, error) {
	out, err := encodeNode(&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s})
	if err != nil {
		return "", err
	}
	if !strings.Contains(out, "\n") {
		return out, nil
	}
	return encodeNode(&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s, Style: yaml.DoubleQuotedStyle})
}

func encodeNode(n *yaml.Node) (string, error) {
	out, err := yaml.Marshal(n)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(string(out), "\n"), nil
}
