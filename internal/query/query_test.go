package query

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aidanlsb/labnotes/internal/model"
	"github.com/aidanlsb/labnotes/internal/testutil"
	"github.com/aidanlsb/labnotes/internal/vault"
)

var now = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func sampleVault(t *testing.T) *vault.Vault {
	t.Helper()
	root := testutil.NewTestRoot(t).
		WithProject("alpha", `title: Alpha
type: engineering
status: active
tags: ["3d-vision", "NeRF"]
updated: 2026-10-18T12:00:00.000000Z
`).
		WithProject("legacy", `title: Legacy
status: completed
tags: nerf-experiments, optimization
updated: 2026-01-01T00:00:00
`).
		WithIdea("alpha", "beta", `title: Beta
project: Alpha
status: planned
tags: [speed]
updated: 2026-10-19T11:00:00Z
`).
		WithIdea("alpha", "delta", `title: Delta
project: Alpha
status: Validated
tags: []
updated: not-a-date
`).
		WithExperiment("alpha", "beta", "gamma", `title: Gamma
idea: Beta
project: Alpha
status: planned
tags: [nerf]
updated: 2026-10-17T12:00:00.000000+00:00
`).
		Build()
	return vault.New(root.Path, nil)
}

func titles(res *Result) []string {
	var out []string
	for _, m := range res.Matches {
		out = append(out, m.Entity.Title())
	}
	return out
}

func TestByStatus(t *testing.T) {
	v := sampleVault(t)

	tests := []struct {
		status  string
		scope   model.Scope
		want    []string
		skipped int
	}{
		{"planned", model.ScopeExperiments, []string{"Gamma"}, 0},
		{"planned", model.ScopeAll, []string{"Beta", "Gamma"}, 1},
		{"PLANNED", model.ScopeIdeas, []string{"Beta"}, 0},
		{"validated", model.ScopeIdeas, []string{"Delta"}, 0},
		{"active", model.ScopeAll, []string{"Alpha"}, 2},
		{"validated", model.ScopeProjects, nil, 1},
	}
	for _, tt := range tests {
		t.Run(tt.status+"/"+string(tt.scope), func(t *testing.T) {
			res, err := ByStatus(v, tt.status, tt.scope)
			if err != nil {
				t.Fatalf("ByStatus: %v", err)
			}
			if got := titles(res); strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Fatalf("matches = %v, want %v", got, tt.want)
			}
			if res.Total != len(tt.want) {
				t.Fatalf("Total = %d", res.Total)
			}
			if len(res.Skipped) != tt.skipped {
				t.Fatalf("Skipped = %+v, want %d", res.Skipped, tt.skipped)
			}
		})
	}
}

func TestByStatusSkipNotice(t *testing.T) {
	v := sampleVault(t)
	res, err := ByStatus(v, "validated", model.ScopeProjects)
	if err != nil {
		t.Fatalf("ByStatus must not fail for an out-of-vocabulary status: %v", err)
	}
	if len(res.Matches) != 0 || len(res.Skipped) != 1 || res.Skipped[0].Kind != model.KindProject {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !strings.Contains(res.Skipped[0].Reason, "active, on-hold, completed") {
		t.Fatalf("skip reason should list valid statuses: %q", res.Skipped[0].Reason)
	}
}

func TestByStatusParentContext(t *testing.T) {
	v := sampleVault(t)
	res, err := ByStatus(v, "planned", model.ScopeExperiments)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Matches) != 1 {
		t.Fatalf("expected one match, got %d", len(res.Matches))
	}
	if loc := res.Matches[0].Entity.Location(); loc != "Alpha / Beta / Gamma" {
		t.Fatalf("Location = %q", loc)
	}
}

func TestByStatusRejectsBadInput(t *testing.T) {
	v := sampleVault(t)
	var ve *model.ValidationError
	if _, err := ByStatus(v, "planned", model.Scope("papers")); !errors.As(err, &ve) {
		t.Fatalf("expected scope validation error, got %v", err)
	}
	if _, err := ByStatus(v, "  ", model.ScopeAll); !errors.As(err, &ve) {
		t.Fatalf("expected empty status error, got %v", err)
	}
}

func TestByTag(t *testing.T) {
	v := sampleVault(t)

	tests := []struct {
		tag   string
		scope model.Scope
		want  []string
	}{
		{"nerf", model.ScopeAll, []string{"Alpha", "Gamma", "Legacy"}},
		{"#NeRF", model.ScopeProjects, []string{"Alpha", "Legacy"}},
		{"optim", model.ScopeAll, []string{"Legacy"}},
		{"vision", model.ScopeAll, nil},
		{"speed", model.ScopeExperiments, nil},
		{"speed", model.ScopeIdeas, []string{"Beta"}},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			res, err := ByTag(v, tt.tag, tt.scope)
			if err != nil {
				t.Fatalf("ByTag: %v", err)
			}
			if got := titles(res); strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Fatalf("matches = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := ByTag(v, "", model.ScopeAll); err == nil {
		t.Fatal("expected error for empty tag")
	}
}

func TestSearch(t *testing.T) {
	root := testutil.NewTestRoot(t).
		WithProject("alpha", "title: Alpha\nsummary: gaussian in project\n").
		WithIdea("alpha", "beta", "title: Beta Gaussian\nproject: Alpha\n").
		WithFile("projects/alpha/ideas/beta/idea.md", testutil.Note("title: Beta Gaussian\nproject: Alpha\n",
			"gaussian one\ngaussian two\nGAUSSIAN three\n"+strings.Repeat("x", 100)+" gaussian\n")).
		WithExperiment("alpha", "beta", "gamma", "title: Gamma\nnote: splatting\n").
		Build()
	v := vault.New(root.Path, nil)

	res, err := Search(v, "gaussian", model.ScopeAll)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res.Matches) != 1 {
		t.Fatalf("expected only the idea to match, got %v", titles(res))
	}
	m := res.Matches[0]
	if m.LineCount != 5 || res.Total != 5 {
		t.Fatalf("LineCount = %d Total = %d, want 5", m.LineCount, res.Total)
	}
	if len(m.Lines) != MaxLinesPerFile {
		t.Fatalf("kept %d lines, want %d", len(m.Lines), MaxLinesPerFile)
	}
	if m.Lines[0].Line != 2 || m.Lines[0].Text != "title: Beta Gaussian" {
		t.Fatalf("first line = %+v", m.Lines[0])
	}

	res, err = Search(v, "gaussian", model.ScopeExperiments)
	if err != nil || len(res.Matches) != 0 {
		t.Fatalf("experiments scope = %v, %v", titles(res), err)
	}

	res, err = Search(v, "SPLAT", model.ScopeExperiments)
	if err != nil || len(res.Matches) != 1 || res.Matches[0].Entity.IdeaTitle != "Beta Gaussian" {
		t.Fatalf("experiment search = %+v, %v", res, err)
	}

	var ve *model.ValidationError
	if _, err := Search(v, "gaussian", model.ScopeProjects); !errors.As(err, &ve) || ve.Field != "scope" {
		t.Fatalf("projects scope should be rejected, got %v", err)
	}
	if _, err := Search(v, " ", model.ScopeAll); !errors.As(err, &ve) {
		t.Fatalf("empty query should be rejected, got %v", err)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate(strings.Repeat("é", 81), 80); got != strings.Repeat("é", 80) {
		t.Fatalf("Truncate should count runes, got %d runes", len([]rune(got)))
	}
	if got := Truncate("short", 80); got != "short" {
		t.Fatalf("Truncate(short) = %q", got)
	}
}

func TestRecent(t *testing.T) {
	v := sampleVault(t)

	res, err := Recent(v, 7, now)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if got := strings.Join(titles(res), ","); got != "Beta,Alpha,Gamma" {
		t.Fatalf("Recent(7) = %s, want newest first", got)
	}

	res, err = Recent(v, 1, now)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(titles(res), ","); got != "Beta" {
		t.Fatalf("Recent(1) = %s, the entity exactly one day old is excluded", got)
	}
}

func TestRecentZeroDaysIsEmpty(t *testing.T) {
	v := sampleVault(t)
	res, err := Recent(v, 0, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Matches) != 0 {
		t.Fatalf("Recent(0) = %v, want nothing", titles(res))
	}
}

func TestRecentBoundaryIsExclusive(t *testing.T) {
	root := testutil.NewTestRoot(t).
		WithProject("edge", "title: Edge\nupdated: 2026-10-12T12:00:00Z\n").
		WithProject("untitled", "updated: 2026-10-19T11:00:00Z\n").
		Build()
	v := vault.New(root.Path, nil)

	res, err := Recent(v, 7, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Matches) != 0 {
		t.Fatalf("expected the exact cutoff and untitled entities to be excluded, got %v", titles(res))
	}

	if _, err := Recent(v, -1, now); err == nil {
		t.Fatal("expected error for negative days")
	}
}

func TestRecentLargeWindow(t *testing.T) {
	root := testutil.NewTestRoot(t).
		WithProject("old", "title: Old\nupdated: 2020-01-01T00:00:00Z\n").
		Build()
	v := vault.New(root.Path, nil)

	for _, days := range []int{3650, 200000, 1000000} {
		if c := Cutoff(days, now); !c.Before(now) {
			t.Fatalf("Cutoff(%d) = %s, want a time before now", days, c)
		}
		res, err := Recent(v, days, now)
		if err != nil {
			t.Fatal(err)
		}
		if got := strings.Join(titles(res), ","); got != "Old" {
			t.Fatalf("Recent(%d) = %q, want Old", days, got)
		}
	}
}
