// Package query filters the entity tree by status, tag, text, and recency.
//
// Every query walks the tree and re-reads each metadata file; there is no
// persistent index behind these functions.
package query

import (
	"strings"
	"time"

	"github.com/aidanlsb/labnotes/internal/model"
	"github.com/aidanlsb/labnotes/internal/vault"
)

// Match is one entity selected by a query.
type Match struct {
	Entity *vault.Entity

	// Lines holds up to MaxLinesPerFile matching lines (Search only).
	Lines []LineMatch
	// LineCount is the number of matching lines in the file (Search only).
	LineCount int
	// Updated is the parsed updated timestamp (Recent only).
	Updated time.Time
}

// LineMatch is a matching line of a searched file.
type LineMatch struct {
	Line int // 1-indexed
	Text string
}

// Skip records a kind that was in scope but not queried.
type Skip struct {
	Kind   model.Kind
	Reason string
}

// Result is the outcome of a query.
type Result struct {
	Matches []Match
	Skipped []Skip
	// Total is the number of matches, or for Search the number of matching lines.
	Total int
}

func (r *Result) add(m Match) {
	r.Matches = append(r.Matches, m)
	r.Total++
}

func checkScope(scope model.Scope) (model.Scope, error) {
	if scope == "" {
		return model.ScopeAll, nil
	}
	return model.ParseScope(string(scope))
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
