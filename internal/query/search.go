package query

import (
	"os"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/aidanlsb/labnotes/internal/model"
	"github.com/aidanlsb/labnotes/internal/vault"
)

const (
	// MaxLinesPerFile is how many matching lines are kept per file.
	MaxLinesPerFile = 3
	// LineWidth is the display width matching lines are truncated to.
	LineWidth = 80
)

// Search scans the metadata files of ideas and experiments for lines
// containing q (case-insensitive). Projects are not searchable.
func Search(v *vault.Vault, q string, scope model.Scope) (*Result, error) {
	scope, err := checkScope(scope)
	if err != nil {
		return nil, err
	}
	if scope == model.ScopeProjects {
		return nil, &model.ValidationError{
			Field:   "scope",
			Value:   string(scope),
			Reason:  "search does not cover projects",
			Allowed: []string{string(model.ScopeIdeas), string(model.ScopeExperiments), string(model.ScopeAll)},
		}
	}
	needle := strings.ToLower(q)
	if strings.TrimSpace(needle) == "" {
		return nil, &model.ValidationError{Field: "query", Reason: "search query cannot be empty"}
	}

	res := &Result{}
	err = v.Walk(scope, func(e *vault.Entity) error {
		if e.Kind == model.KindProject {
			return nil
		}
		content, err := os.ReadFile(e.MetaPath)
		if err != nil {
			v.Logger().Warn("skipping unreadable file", zap.String("path", e.MetaPath), zap.Error(err))
			return nil
		}

		m := Match{Entity: e}
		for i, line := range strings.Split(string(content), "\n") {
			if !strings.Contains(strings.ToLower(line), needle) {
				continue
			}
			m.LineCount++
			if len(m.Lines) < MaxLinesPerFile {
				m.Lines = append(m.Lines, LineMatch{Line: i + 1, Text: Truncate(strings.TrimSpace(line), LineWidth)})
			}
		}
		if m.LineCount > 0 {
			res.Matches = append(res.Matches, m)
			res.Total += m.LineCount
		}
		return nil
	})
	return res, err
}

// Truncate shortens s to at most width runes.
func Truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	return string([]rune(s)[:width])
}
