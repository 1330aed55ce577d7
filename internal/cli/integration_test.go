//go:build integration

package cli_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aidanlsb/labnotes/internal/testutil"
)

// newRoot runs `lab init` into a temp dir and returns a TestRoot for it.
func newRoot(t *testing.T, config string) *testutil.TestRoot {
	t.Helper()
	root := testutil.NewTestRoot(t).Build()
	testutil.RunCLIInDir(t, root.Path, "init", root.Path).MustSucceed(t)
	if config != "" {
		writeConfig(t, root, config)
	}
	return root
}

func writeConfig(t *testing.T, root *testutil.TestRoot, config string) {
	t.Helper()
	if err := os.WriteFile(root.Abs("config.yaml"), []byte(config), 0o644); err != nil {
		t.Fatal(err)
	}
}

func entity(t *testing.T, r *testutil.CLIResult) map[string]interface{} {
	t.Helper()
	e, ok := r.DataMap()["entity"].(map[string]interface{})
	if !ok {
		t.Fatalf("no entity in %s", r.RawJSON)
	}
	return e
}

func matchTitles(r *testutil.CLIResult) []string {
	var titles []string
	for _, m := range r.DataList("matches") {
		titles = append(titles, m.(map[string]interface{})["title"].(string))
	}
	return titles
}

func TestIntegration_InitLayout(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "notes")
	r := testutil.RunCLI(t, "init", dir).MustSucceed(t)
	if got := len(r.DataList("created")); got != 6 {
		t.Fatalf("created %d files: %s", got, r.RawJSON)
	}

	again := testutil.RunCLI(t, "init", dir).MustSucceed(t)
	if got := len(again.DataList("kept")); got != 6 {
		t.Fatalf("second init should keep every file, got %s", again.RawJSON)
	}
}

func TestIntegration_CreateTreeAndQuery(t *testing.T) {
	root := newRoot(t, "")

	p := root.RunCLI("project", "new", "Neural Radiance Fields", "--type", "academic", "--tags", "nerf, 3d", "--priority", "high").MustSucceed(t)
	if got := entity(t, p)["path"]; got != "projects/neural-radiance-fields/project.md" {
		t.Fatalf("project path = %v", got)
	}
	root.AssertFileContains("index.md", "Neural Radiance Fields")

	root.RunCLI("idea", "new", "Neural Radiance Fields", "Sparse Voxels", "--tags", "speed").MustSucceed(t)
	root.RunCLI("idea", "new", "Neural Radiance Fields", "Hash Grids").MustSucceed(t)
	e := root.RunCLI("experiment", "new", "Neural Radiance Fields", "Sparse Voxels", "Baseline").MustSucceed(t)
	if got := entity(t, e)["idea"]; got != "Sparse Voxels" {
		t.Fatalf("experiment idea = %v", got)
	}
	root.AssertFileExists("projects/neural-radiance-fields/ideas/sparse-voxels/validation.md")
	root.AssertFileExists("projects/neural-radiance-fields/ideas/sparse-voxels/experiments/baseline/results.md")

	s := root.RunCLI("status", "Neural Radiance Fields", "Sparse Voxels", "--set", "validated").MustSucceed(t)
	if s.DataString("previous") != "unverified" || s.DataString("status") != "validated" {
		t.Fatalf("status result = %s", s.RawJSON)
	}
	root.AssertFileNotContains("projects/neural-radiance-fields/ideas/sparse-voxels/validation.md", "validated: null")

	t.Run("by-status skips kinds without the status", func(t *testing.T) {
		r := root.RunCLI("by-status", "validated").MustSucceed(t)
		if got := matchTitles(r); len(got) != 1 || got[0] != "Sparse Voxels" {
			t.Fatalf("matches = %v", got)
		}
		if !r.HasWarning("KIND_SKIPPED") {
			t.Fatalf("expected KIND_SKIPPED warnings, got %+v", r.Warnings)
		}
	})

	t.Run("by-tag", func(t *testing.T) {
		r := root.RunCLI("by-tag", "NERF", "--scope", "projects").MustSucceed(t)
		if got := matchTitles(r); len(got) != 1 || got[0] != "Neural Radiance Fields" {
			t.Fatalf("matches = %v", got)
		}
	})

	t.Run("search", func(t *testing.T) {
		r := root.RunCLI("search", "baseline", "--scope", "experiments").MustSucceed(t)
		if got := matchTitles(r); len(got) != 1 || got[0] != "Baseline" {
			t.Fatalf("matches = %v", got)
		}
		root.RunCLI("search", "x", "--scope", "projects").MustFail(t, "VALIDATION_FAILED")
	})

	t.Run("recent", func(t *testing.T) {
		r := root.RunCLI("recent").MustSucceed(t)
		if r.Meta == nil || r.Meta.Count != 4 {
			t.Fatalf("recent = %s", r.RawJSON)
		}
	})

	t.Run("project list", func(t *testing.T) {
		r := root.RunCLI("project", "list").MustSucceed(t)
		list := r.DataList("")
		if len(list) != 1 {
			t.Fatalf("projects = %s", r.RawJSON)
		}
		p := list[0].(map[string]interface{})
		if p["ideas"].(float64) != 2 || p["experiments"].(float64) != 1 {
			t.Fatalf("counts = %v", p)
		}
	})

	t.Run("report", func(t *testing.T) {
		r := root.RunCLI("report", "Neural Radiance Fields").MustSucceed(t)
		if r.DataString("path") != "validation-report-neural-radiance-fields.md" {
			t.Fatalf("report path = %s", r.RawJSON)
		}
		if rate := r.DataMap()["rate"].(float64); rate != 50 {
			t.Fatalf("rate = %v", rate)
		}
		root.AssertFileContains("validation-report-neural-radiance-fields.md", "Sparse Voxels")
	})
}

func TestIntegration_Errors(t *testing.T) {
	root := newRoot(t, "")
	root.RunCLI("project", "new", "Alpha").MustSucceed(t)

	tests := []struct {
		name string
		args []string
		code string
	}{
		{"unknown project", []string{"idea", "new", "Beta", "Idea"}, "OBJECT_NOT_FOUND"},
		{"duplicate project", []string{"project", "new", "alpha"}, "OBJECT_EXISTS"},
		{"bad priority flag", []string{"project", "new", "Gamma", "--priority", "urgent"}, "VALIDATION_FAILED"},
		{"bad scope", []string{"by-tag", "x", "--scope", "everything"}, "VALIDATION_FAILED"},
		{"bad status", []string{"status", "Alpha", "--set", "validated"}, "VALIDATION_FAILED"},
		{"missing args", []string{"idea", "new", "Alpha"}, "VALIDATION_FAILED"},
		{"empty title", []string{"project", "new", "  "}, "VALIDATION_FAILED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root.RunCLI(tt.args...).MustFail(t, tt.code)
		})
	}

	r := root.RunCLI("idea", "new", "Beta", "Idea").MustFail(t, "OBJECT_NOT_FOUND")
	if !strings.Contains(r.Error.Suggestion, "Alpha") {
		t.Fatalf("suggestion should list the existing project, got %q", r.Error.Suggestion)
	}
	root.AssertFileNotExists("projects/gamma")
}

func TestIntegration_RootNotFound(t *testing.T) {
	r := testutil.RunCLIInDir(t, t.TempDir(), "recent").MustFail(t, "ROOT_NOT_FOUND")
	if r.Error.Suggestion == "" {
		t.Fatal("expected a suggestion")
	}
}

func TestIntegration_IndexMirror(t *testing.T) {
	root := newRoot(t, "database:\n  enabled: true\n  auto_backup: true\n  backup_interval: 3600\n")

	root.RunCLI("project", "new", "Alpha").MustSucceed(t)
	root.RunCLI("idea", "new", "Alpha", "Beta").MustSucceed(t)
	root.AssertFileExists(".research-notes.db")

	stats := root.RunCLI("index", "stats").MustSucceed(t)
	if stats.Meta.Count != 2 {
		t.Fatalf("stats = %s", stats.RawJSON)
	}

	r := root.RunCLI("reindex").MustSucceed(t)
	if r.DataMap()["indexed"].(float64) != 2 || r.DataMap()["backed_up"] != true {
		t.Fatalf("reindex = %s", r.RawJSON)
	}
	root.AssertFileExists(".research-notes.db.bak")
}

func TestIntegration_GitAutoCommit(t *testing.T) {
	root := newRoot(t, "git:\n  auto_commit: true\n  commit_message_prefix: '[notes]'\n")

	// Not a repository yet: the write succeeds with a warning.
	r := root.RunCLI("project", "new", "Alpha").MustSucceed(t)
	if !r.HasWarning("COMMIT_FAILED") {
		t.Fatalf("expected COMMIT_FAILED, got %+v", r.Warnings)
	}

	root.RunCLI("git", "init").MustSucceed(t)
	root.RunCLI("git", "init").MustFail(t, "GIT_ERROR")
	root.RunCLI("project", "new", "Beta").MustSucceed(t)

	clean := root.RunCLI("git", "commit", "-m", "again").MustSucceed(t)
	if clean.DataMap()["clean"] != true {
		t.Fatalf("auto-commit should have left a clean tree: %s", clean.RawJSON)
	}
}

func TestIntegration_Sync(t *testing.T) {
	root := newRoot(t, "")
	root.RunCLI("project", "new", "Alpha").MustSucceed(t)
	root.RunCLI("sync").MustFail(t, "CONFIG_INVALID")

	writeConfig(t, root, "notion:\n  enabled: true\n  token: secret\n  database_id: db123\n")
	r := root.RunCLI("sync", "--project", "Alpha").MustSucceed(t)
	if r.DataString("database_id") != "db123" || len(r.DataList("records")) != 1 {
		t.Fatalf("sync = %s", r.RawJSON)
	}
}

func TestIntegration_Version(t *testing.T) {
	r := testutil.RunCLIInDir(t, t.TempDir(), "version").MustSucceed(t)
	if r.DataString("version") == "" {
		t.Fatalf("version = %s", r.RawJSON)
	}
}
