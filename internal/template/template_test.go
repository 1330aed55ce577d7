package template

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestApply(t *testing.T) {
	vars := &Variables{
		Title:   "Gamma",
		Slug:    "gamma",
		Kind:    "experiment",
		Project: "Alpha",
		Idea:    "Beta",
		Type:    "engineering",
		Date:    "2026-01-05",
		Created: "2026-01-05T14:30:00.000000Z",
		Year:    "2026",
	}

	tests := []struct {
		name     string
		template string
		expected string
	}{
		{"title", "# {{title}}", "# Gamma"},
		{"parents", "{{project}} / {{idea}} / {{title}}", "Alpha / Beta / Gamma"},
		{"slug and kind", "{{kind}}:{{slug}}", "experiment:gamma"},
		{"timestamps", "{{created}} {{updated}}", "2026-01-05T14:30:00.000000Z 2026-01-05T14:30:00.000000Z"},
		{"date parts", "{{date}} ({{year}})", "2026-01-05 (2026)"},
		{"unknown preserved", "{{unknown}}", "{{unknown}}"},
		{"escaped braces", `\{{title}}`, "{{title}}"},
		{"no variables", "plain text", "plain text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Apply(tt.template, vars); got != tt.expected {
				t.Fatalf("Apply(%q) = %q, want %q", tt.template, got, tt.expected)
			}
		})
	}

	if got := Apply("{{title}}", nil); got != "{{title}}" {
		t.Fatalf("Apply with nil vars = %q", got)
	}
}

func TestNewVariables(t *testing.T) {
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	vars := NewVariables("Alpha", "project", "alpha", now)
	if vars.Date != "2026-03-04" || vars.Year != "2026" || vars.Created != "2026-03-04T05:06:07.000000Z" {
		t.Fatalf("unexpected variables: %#v", vars)
	}
}

func TestBodyUsesBuiltinWhenNoOverride(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{Project, Idea, Experiment, Validation, Results} {
		body, err := Body(root, name)
		if err != nil {
			t.Fatalf("Body(%s): %v", name, err)
		}
		if body != builtinBodies[name] {
			t.Fatalf("Body(%s) did not return the built-in body", name)
		}
	}

	body, err := Body(root, Validation)
	if err != nil || !strings.HasPrefix(body, "## Validation Summary\n") {
		t.Fatalf("validation body = %q, %v", body, err)
	}

	if _, err := Body(root, "paper"); err == nil {
		t.Fatal("expected unknown template error")
	}
}

func TestBodyOverrideStripsFrontmatter(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "templates"), 0o755); err != nil {
		t.Fatal(err)
	}
	override := "---\ntitle: {{title}}\n---\n\n## Custom for {{title}}\n"
	if err := os.WriteFile(Path(root, Idea), []byte(override), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Render(root, Idea, &Variables{Title: "Beta"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "## Custom for Beta\n" {
		t.Fatalf("Render = %q", got)
	}
}

func TestStarter(t *testing.T) {
	for _, name := range Overridable {
		starter := Starter(name)
		if !strings.HasPrefix(starter, "---\ntitle: {{title}}\n") {
			t.Fatalf("Starter(%s) missing front-matter: %q", name, starter[:40])
		}
		if !strings.HasSuffix(starter, builtinBodies[name]) {
			t.Fatalf("Starter(%s) should end with the built-in body", name)
		}
	}
}
