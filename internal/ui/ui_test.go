package ui

import (
	"strings"
	"testing"
)

func TestRenderMarkdownNormalizesTrailingNewline(t *testing.T) {
	out, err := RenderMarkdown("# Validation Report\n\n| Metric | Count |\n|---|---|\n| Total Ideas | 3 |\n", 80)
	if err != nil {
		t.Fatalf("RenderMarkdown() error = %v", err)
	}
	if !strings.HasSuffix(out, "\n") || strings.HasSuffix(out, "\n\n") {
		t.Fatalf("expected a single trailing newline, got %q", out)
	}
	if !strings.Contains(out, "Total Ideas") {
		t.Fatalf("table cell missing from output: %q", out)
	}
}

func TestRenderMarkdownDefaultsWidthWhenNonPositive(t *testing.T) {
	out, err := RenderMarkdown("hello", 0)
	if err != nil {
		t.Fatalf("RenderMarkdown() error = %v", err)
	}
	if strings.TrimSpace(out) == "" {
		t.Fatal("expected non-empty rendered output")
	}
}

func TestTableAlignsColumns(t *testing.T) {
	tbl := NewTable(3)
	if tbl.String() != "" {
		t.Fatal("empty table should render nothing")
	}
	tbl.SetHeader("TITLE", "STATUS", "IDEAS")
	tbl.AddRow("Neural Rendering", "active", "2")
	tbl.AddRow("X", "on-hold", "10")

	lines := strings.Split(strings.TrimRight(tbl.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %q", lines)
	}
	col := strings.Index(lines[1], "active")
	if strings.Index(lines[0], "STATUS") != col || strings.Index(lines[2], "on-hold") != col {
		t.Fatalf("columns not aligned:\n%s", tbl.String())
	}
}

func TestList(t *testing.T) {
	l := NewList()
	l.Add("first")
	l.Add("second")
	if got := l.String(); got != "  • first\n  • second\n" {
		t.Fatalf("List = %q", got)
	}
}

func TestTruncateWithEllipsis(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"Depth priors for sparse views", 20, "Depth priors for..."},
		{"ééééééé", 5, "éé..."},
		{"abcdef", 3, "abc"},
	}
	for _, tt := range tests {
		if got := TruncateWithEllipsis(tt.in, tt.max); got != tt.want {
			t.Errorf("TruncateWithEllipsis(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestResultsTableWidths(t *testing.T) {
	rt := NewResultsTable(NewDisplayContextWithWidth(100), QueryLayout)
	if rt.Render() != "" {
		t.Fatal("empty results table should render nothing")
	}
	if w := rt.ContentWidth("title"); w < ColTitle.MinWidth || w > ColTitle.MaxWidth {
		t.Fatalf("title width %d outside [%d, %d]", w, ColTitle.MinWidth, ColTitle.MaxWidth)
	}
	rt.AddRow(ResultRow{Cells: []string{" 1", "Depth Priors", "planned · Alpha", "projects/alpha/ideas/depth-priors"}})
	if out := rt.Render(); !strings.Contains(out, "Depth Priors") {
		t.Fatalf("rendered table missing title: %q", out)
	}
}

func TestRule(t *testing.T) {
	d := NewDisplayContextWithWidth(200)
	rule := d.Rule("Ideas")
	if !strings.Contains(rule, "Ideas") {
		t.Fatalf("Rule = %q", rule)
	}
	if w := len([]rune(rule)); w > 80 {
		t.Fatalf("rule should be capped at 80 columns, got %d", w)
	}
}

func TestConfigureMarkdownCodeTheme(t *testing.T) {
	orig := markdownCodeTheme
	t.Cleanup(func() { markdownCodeTheme = orig })

	ConfigureMarkdownCodeTheme(" DrAcUlA ")
	if got := reportStyle().CodeBlock.Theme; got != "dracula" {
		t.Fatalf("code theme = %q, want dracula", got)
	}
}
