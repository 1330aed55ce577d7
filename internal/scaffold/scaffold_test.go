package scaffold

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aidanlsb/labnotes/internal/config"
	"github.com/aidanlsb/labnotes/internal/writer"
)

var now = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

func TestInitCreatesLayout(t *testing.T) {
	root := filepath.Join(t.TempDir(), "notes")
	res, err := Init(root, Options{Now: now})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if res.Existing() {
		t.Fatal("fresh root reported as existing")
	}

	want := []string{"index.md", "tags.md", "config.yaml",
		"templates/project-template.md", "templates/idea-template.md", "templates/experiment-template.md"}
	if strings.Join(res.Created, ",") != strings.Join(want, ",") {
		t.Fatalf("Created = %v, want %v", res.Created, want)
	}
	if st, err := os.Stat(filepath.Join(root, "projects")); err != nil || !st.IsDir() {
		t.Fatal("projects/ not created")
	}

	if !config.IsMarker(filepath.Join(root, "config.yaml")) {
		t.Fatal("config.yaml should mark the root")
	}
	cfg, err := config.LoadWorkspace(root)
	if err != nil {
		t.Fatalf("LoadWorkspace: %v", err)
	}
	if cfg.Database.Path != ".research-notes.db" || cfg.Git.CommitMessagePrefix != "[Research Notes]" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}

	index, _ := os.ReadFile(filepath.Join(root, "index.md"))
	if !strings.Contains(string(index), writer.ProjectsHeading) {
		t.Fatal("index.md lacks the projects heading writers insert under")
	}
	if !strings.Contains(string(index), "Last updated: 2026-10-19T09:30:00.000000Z") {
		t.Fatalf("index.md timestamp missing:\n%s", index)
	}
}

func TestInitKeepsExistingFiles(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "tags.md"), []byte("mine\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := Init(root, Options{Now: now})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Existing() || len(res.Kept) != 1 || res.Kept[0] != "tags.md" {
		t.Fatalf("Kept = %v", res.Kept)
	}
	data, _ := os.ReadFile(filepath.Join(root, "tags.md"))
	if string(data) != "mine\n" {
		t.Fatal("existing tags.md was overwritten")
	}

	res, err = Init(root, Options{Now: now, Force: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Kept) != 0 || len(res.Created) != 6 {
		t.Fatalf("forced Init = %+v", res)
	}
	data, _ = os.ReadFile(filepath.Join(root, "tags.md"))
	if string(data) != TagsContent {
		t.Fatal("--force should rewrite tags.md")
	}
}
