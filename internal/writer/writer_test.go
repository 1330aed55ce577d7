package writer

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/aidanlsb/labnotes/internal/config"
	"github.com/aidanlsb/labnotes/internal/dates"
	"github.com/aidanlsb/labnotes/internal/model"
	"github.com/aidanlsb/labnotes/internal/testutil"
	"github.com/aidanlsb/labnotes/internal/vault"
)

// stepClock returns a clock that advances one minute per call.
func stepClock() func() time.Time {
	t := time.Date(2026, 10, 19, 9, 30, 0, 123456000, time.UTC)
	return func() time.Time {
		now := t
		t = t.Add(time.Minute)
		return now
	}
}

func stamp(minutes int) string {
	return dates.Format(time.Date(2026, 10, 19, 9, 30+minutes, 0, 123456000, time.UTC))
}

func newWriter(t *testing.T, root *testutil.TestRoot, opts ...Option) *Writer {
	t.Helper()
	opts = append([]Option{WithClock(stepClock())}, opts...)
	return New(vault.New(root.Path, nil), opts...)
}

func TestCreateTreeEndToEnd(t *testing.T) {
	root := testutil.NewTestRoot(t).WithConfig("").Build()
	w := newWriter(t, root)

	project, err := w.CreateProject("Alpha", ProjectOptions{Type: "engineering", Tags: []string{"nerf", " 3d "}})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if project.Entity.RelPath != "projects/alpha/project.md" {
		t.Fatalf("project RelPath = %q", project.Entity.RelPath)
	}
	root.AssertField("projects/alpha/project.md", "title", "Alpha")
	root.AssertField("projects/alpha/project.md", "type", "engineering")
	root.AssertField("projects/alpha/project.md", "status", "active")
	root.AssertField("projects/alpha/project.md", "priority", "medium")
	root.AssertField("projects/alpha/project.md", "tags", []string{"nerf", "3d"})
	root.AssertField("projects/alpha/project.md", "created", stamp(0))
	root.AssertFileContains("projects/alpha/project.md", "## Project Overview")
	for _, dir := range []string{"ideas", "papers", "engineering"} {
		root.AssertDirExists("projects/alpha/" + dir)
	}

	idea, err := w.CreateIdea("alpha", "Beta", IdeaOptions{Priority: "HIGH"})
	if err != nil {
		t.Fatalf("CreateIdea: %v", err)
	}
	ideaPath := "projects/alpha/ideas/beta/idea.md"
	root.AssertField(ideaPath, "project", "Alpha")
	root.AssertField(ideaPath, "status", "unverified")
	root.AssertField(ideaPath, "priority", "high")
	root.AssertField(ideaPath, "tags", []string{})
	root.AssertField("projects/alpha/ideas/beta/validation.md", "idea", "Beta")
	root.AssertField("projects/alpha/ideas/beta/validation.md", "validated", nil)
	root.AssertFileContains("projects/alpha/ideas/beta/validation.md", "## Validation Summary")
	root.AssertDirExists("projects/alpha/ideas/beta/experiments")
	root.AssertField("projects/alpha/project.md", "updated", stamp(1))
	if !reflect.DeepEqual(idea.Touched, []string{root.Abs("projects/alpha/project.md")}) {
		t.Fatalf("idea Touched = %v", idea.Touched)
	}

	exp, err := w.CreateExperiment("ALPHA", "beta", "Gamma", ExperimentOptions{Tags: []string{"ablation"}})
	if err != nil {
		t.Fatalf("CreateExperiment: %v", err)
	}
	expPath := "projects/alpha/ideas/beta/experiments/gamma/experiment.md"
	root.AssertField(expPath, "idea", "Beta")
	root.AssertField(expPath, "project", "Alpha")
	root.AssertField(expPath, "status", "planned")
	root.AssertField(expPath, "tags", []string{"ablation"})
	root.AssertFileContains("projects/alpha/ideas/beta/experiments/gamma/results.md", "# Experiment Results")
	root.AssertDirExists("projects/alpha/ideas/beta/experiments/gamma/artifacts")
	root.AssertField(ideaPath, "updated", stamp(2))
	// Only the immediate parent is bumped.
	root.AssertField("projects/alpha/project.md", "updated", stamp(1))

	if exp.Entity.Location() != "Alpha / Beta / Gamma" {
		t.Fatalf("Location = %q", exp.Entity.Location())
	}
}

func TestCreateRejectsBeforeWriting(t *testing.T) {
	root := testutil.NewTestRoot(t).
		WithProject("alpha", "title: Alpha\nstatus: active\n").
		Build()
	w := newWriter(t, root)

	tests := []struct {
		name string
		run  func() error
	}{
		{"empty title", func() error { _, err := w.CreateProject("   ", ProjectOptions{}); return err }},
		{"path separator", func() error { _, err := w.CreateProject("a/b", ProjectOptions{}); return err }},
		{"dot dot", func() error { _, err := w.CreateIdea("Alpha", "x..y", IdeaOptions{}); return err }},
		{"no alphanumerics", func() error { _, err := w.CreateProject("!!!", ProjectOptions{}); return err }},
		{"bad type", func() error { _, err := w.CreateProject("Omega", ProjectOptions{Type: "hobby"}); return err }},
		{"bad priority", func() error { _, err := w.CreateIdea("Alpha", "Beta", IdeaOptions{Priority: "urgent"}); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ve *model.ValidationError
			if err := tt.run(); !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}

	entries, err := os.ReadDir(root.Abs("projects"))
	if err != nil || len(entries) != 1 {
		t.Fatalf("projects dir changed: %v, %v", entries, err)
	}
	entries, err = os.ReadDir(root.Abs("projects/alpha/ideas"))
	if err != nil || len(entries) != 0 {
		t.Fatalf("ideas dir changed: %v, %v", entries, err)
	}
}

func TestCreateParentNotFound(t *testing.T) {
	root := testutil.NewTestRoot(t).
		WithProject("alpha", "title: Alpha\n").
		Build()
	w := newWriter(t, root)

	var nf *vault.NotFoundError
	if _, err := w.CreateIdea("Omega", "Beta", IdeaOptions{}); !errors.As(err, &nf) || nf.Kind != model.KindProject {
		t.Fatalf("expected project NotFoundError, got %v", err)
	}
	if _, err := w.CreateExperiment("Alpha", "Nope", "Gamma", ExperimentOptions{}); !errors.As(err, &nf) || nf.Kind != model.KindIdea {
		t.Fatalf("expected idea NotFoundError, got %v", err)
	}
	if !reflect.DeepEqual(nf.Alternatives, []string(nil)) {
		t.Fatalf("Alternatives = %v", nf.Alternatives)
	}
}

func TestCreateCollisions(t *testing.T) {
	original := testutil.Note("title: Alpha\nstatus: active\nupdated: 2020-01-01T00:00:00\n", "keep me\n")
	root := testutil.NewTestRoot(t).
		WithFile("projects/alpha/project.md", original).
		WithDir("projects/alpha/ideas").
		WithFile("projects/renamed/project.md", testutil.Note("title: Old Name\n", "")).
		WithIdea("alpha", "beta", "title: Beta\nproject: Alpha\n").
		Build()
	w := newWriter(t, root)

	tests := []struct {
		name string
		run  func() error
		kind model.Kind
		dir  string
	}{
		{"same title other case", func() error { _, err := w.CreateProject("ALPHA", ProjectOptions{}); return err }, model.KindProject, "alpha"},
		{"slug taken by other title", func() error { _, err := w.CreateProject("Renamed", ProjectOptions{}); return err }, model.KindProject, "renamed"},
		{"idea title", func() error { _, err := w.CreateIdea("Alpha", "beta", IdeaOptions{}); return err }, model.KindIdea, "beta"},
		{"idea slug", func() error { _, err := w.CreateIdea("Alpha", "Beta!", IdeaOptions{}); return err }, model.KindIdea, "beta"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			var ce *CollisionError
			if !errors.As(err, &ce) {
				t.Fatalf("expected CollisionError, got %v", err)
			}
			if ce.Kind != tt.kind || filepath.Base(ce.Path) != tt.dir {
				t.Fatalf("CollisionError = %+v", ce)
			}
		})
	}

	if got := root.ReadFile("projects/alpha/project.md"); got != original {
		t.Fatalf("collision modified the existing project:\n%s", got)
	}
}

func TestCreateIdeaSameTitleInOtherProject(t *testing.T) {
	root := testutil.NewTestRoot(t).
		WithProject("alpha", "title: Alpha\n").
		WithProject("second", "title: Second\n").
		WithIdea("alpha", "beta", "title: Beta\n").
		Build()
	w := newWriter(t, root)

	if _, err := w.CreateIdea("Second", "Beta", IdeaOptions{}); err != nil {
		t.Fatalf("idea titles are scoped to their project: %v", err)
	}
	root.AssertFileExists("projects/second/ideas/beta/idea.md")
}

func TestCreateProjectUpdatesIndex(t *testing.T) {
	index := "# Research Notes\n\n## Projects\n\n- [Old](projects/old/project.md) - academic - 2026-01-01\n\n## Recent Activity\n"
	root := testutil.NewTestRoot(t).
		WithFile("index.md", index).
		Build()
	w := newWriter(t, root)

	res, err := w.CreateProject("New Thing", ProjectOptions{})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	want := "# Research Notes\n\n## Projects\n\n" +
		"- [New Thing](projects/new-thing/project.md) - academic - " + stamp(0) + "\n" +
		"- [Old](projects/old/project.md) - academic - 2026-01-01\n\n## Recent Activity\n"
	if got := root.ReadFile("index.md"); got != want {
		t.Fatalf("index.md =\n%s\nwant\n%s", got, want)
	}
	if len(res.Touched) != 1 || res.Touched[0] != root.Abs("index.md") {
		t.Fatalf("Touched = %v", res.Touched)
	}
}

func TestCreateProjectWithoutIndex(t *testing.T) {
	root := testutil.NewTestRoot(t).
		WithFile("index.md", "# Notes\n").
		Build()
	w := newWriter(t, root)

	res, err := w.CreateProject("Solo", ProjectOptions{})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if len(res.Touched) != 0 {
		t.Fatalf("index without a projects heading should be left alone, Touched = %v", res.Touched)
	}
	if got := root.ReadFile("index.md"); got != "# Notes\n" {
		t.Fatalf("index.md changed: %q", got)
	}
}

func TestCreateUsesTemplateOverride(t *testing.T) {
	root := testutil.NewTestRoot(t).
		WithProject("alpha", "title: Alpha\n").
		WithFile("templates/idea-template.md", "---\ntitle: {{title}}\n---\n\n# {{title}} in {{project}}\n\nEscaped \\{{title}}\n").
		Build()
	w := newWriter(t, root)

	if _, err := w.CreateIdea("Alpha", "Beta", IdeaOptions{}); err != nil {
		t.Fatalf("CreateIdea: %v", err)
	}
	content := root.ReadFile("projects/alpha/ideas/beta/idea.md")
	if !strings.HasSuffix(content, "---\n\n# Beta in Alpha\n\nEscaped {{title}}\n") {
		t.Fatalf("template body not applied:\n%s", content)
	}
	root.AssertField("projects/alpha/ideas/beta/idea.md", "status", "unverified")
}

func TestUpdateStatusIdeaMirrorsValidation(t *testing.T) {
	root := testutil.NewTestRoot(t).
		WithProject("alpha", "title: Alpha\n").
		Build()
	w := newWriter(t, root)
	if _, err := w.CreateIdea("Alpha", "Beta", IdeaOptions{}); err != nil {
		t.Fatal(err)
	}
	before := root.ReadFile("projects/alpha/ideas/beta/idea.md")

	res, err := w.UpdateStatus(Ref{Project: "alpha", Idea: "BETA"}, "Validated")
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if res.Previous != "unverified" || res.Status != "validated" || !res.Validated {
		t.Fatalf("result = %+v", res)
	}
	root.AssertField("projects/alpha/ideas/beta/idea.md", "status", "validated")
	root.AssertField("projects/alpha/ideas/beta/idea.md", "updated", stamp(1))
	root.AssertField("projects/alpha/ideas/beta/validation.md", "status", "validated")
	root.AssertField("projects/alpha/ideas/beta/validation.md", "validated", stamp(1))

	// Everything but the two rewritten lines is preserved.
	after := root.ReadFile("projects/alpha/ideas/beta/idea.md")
	beforeLines, afterLines := strings.Split(before, "\n"), strings.Split(after, "\n")
	if len(beforeLines) != len(afterLines) {
		t.Fatalf("line count changed: %d -> %d", len(beforeLines), len(afterLines))
	}
	changed := 0
	for i := range beforeLines {
		if beforeLines[i] != afterLines[i] {
			changed++
		}
	}
	if changed != 2 {
		t.Fatalf("expected 2 changed lines, got %d", changed)
	}

	if _, err := w.UpdateStatus(Ref{Project: "Alpha", Idea: "Beta"}, "planned"); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	root.AssertField("projects/alpha/ideas/beta/validation.md", "status", "planned")
	root.AssertField("projects/alpha/ideas/beta/validation.md", "validated", nil)

	if _, err := w.UpdateStatus(Ref{Project: "Alpha", Idea: "Beta"}, "rejected"); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	root.AssertField("projects/alpha/ideas/beta/validation.md", "validated", stamp(3))
}

func TestUpdateStatusRecreatesValidation(t *testing.T) {
	root := testutil.NewTestRoot(t).
		WithProject("alpha", "title: Alpha\n").
		WithIdea("alpha", "beta", "title: Beta\nproject: Alpha\nstatus: unverified\n").
		Build()
	w := newWriter(t, root)

	res, err := w.UpdateStatus(Ref{Project: "Alpha", Idea: "Beta"}, "in-progress")
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if len(res.Created) != 1 || filepath.Base(res.Created[0]) != "validation.md" {
		t.Fatalf("Created = %v", res.Created)
	}
	root.AssertField("projects/alpha/ideas/beta/validation.md", "status", "in-progress")
	root.AssertField("projects/alpha/ideas/beta/validation.md", "validated", nil)
	root.AssertFileContains("projects/alpha/ideas/beta/validation.md", "## Validation Summary")
}

func TestUpdateStatusOtherKinds(t *testing.T) {
	root := testutil.NewTestRoot(t).
		WithProject("alpha", "title: Alpha\nstatus: active\n").
		WithIdea("alpha", "beta", "title: Beta\n").
		WithExperiment("alpha", "beta", "gamma", "title: Gamma\nstatus: planned\n").
		Build()
	w := newWriter(t, root)

	if _, err := w.UpdateStatus(Ref{Project: "Alpha", Idea: "Beta", Experiment: "Gamma"}, "completed"); err != nil {
		t.Fatalf("experiment: %v", err)
	}
	root.AssertField("projects/alpha/ideas/beta/experiments/gamma/experiment.md", "status", "completed")
	root.AssertFileNotExists("projects/alpha/ideas/beta/validation.md")

	if _, err := w.UpdateStatus(Ref{Project: "Alpha"}, "on-hold"); err != nil {
		t.Fatalf("project: %v", err)
	}
	root.AssertField("projects/alpha/project.md", "status", "on-hold")

	var ve *model.ValidationError
	if _, err := w.UpdateStatus(Ref{Project: "Alpha"}, "validated"); !errors.As(err, &ve) {
		t.Fatalf("validated is not a project status, got %v", err)
	}
	if !reflect.DeepEqual(ve.Allowed, model.Statuses(model.KindProject)) {
		t.Fatalf("Allowed = %v", ve.Allowed)
	}

	var nf *vault.NotFoundError
	if _, err := w.UpdateStatus(Ref{Project: "Alpha", Idea: "Beta", Experiment: "Delta"}, "failed"); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestAttachArtifact(t *testing.T) {
	root := testutil.NewTestRoot(t).
		WithProject("alpha", "title: Alpha\n").
		WithIdea("alpha", "beta", "title: Beta\n").
		WithExperiment("alpha", "beta", "gamma", "title: Gamma\n").
		WithFile("outside/loss.csv", "step,loss\n1,0.5\n").
		Build()
	ref := Ref{Project: "Alpha", Idea: "Beta", Experiment: "Gamma"}

	w := newWriter(t, root)
	art, err := w.AttachArtifact(ref, root.Abs("outside/loss.csv"))
	if err != nil {
		t.Fatalf("AttachArtifact: %v", err)
	}
	if art.Linked {
		t.Fatal("small files should be copied")
	}
	root.AssertFileContains("projects/alpha/ideas/beta/experiments/gamma/artifacts/loss.csv", "1,0.5")

	if _, err := w.AttachArtifact(ref, root.Abs("outside/loss.csv")); !errors.Is(err, os.ErrExist) {
		t.Fatalf("expected ErrExist for a second attach, got %v", err)
	}
	if _, err := w.AttachArtifact(Ref{Project: "Alpha", Idea: "Beta"}, root.Abs("outside/loss.csv")); err == nil {
		t.Fatal("artifacts need an experiment reference")
	}
}

func TestAttachArtifactSymlinksLargeFiles(t *testing.T) {
	root := testutil.NewTestRoot(t).
		WithProject("alpha", "title: Alpha\n").
		WithIdea("alpha", "beta", "title: Beta\n").
		WithExperiment("alpha", "beta", "gamma", "title: Gamma\n").
		WithFile("outside/weights.bin", "0123456789").
		WithDir("external").
		Build()
	ref := Ref{Project: "Alpha", Idea: "Beta", Experiment: "Gamma"}

	storage := config.StorageConfig{SymlinkLargeFiles: true, SymlinkThreshold: 0, ExternalStorage: root.Abs("external")}
	w := newWriter(t, root, WithStorage(storage))

	art, err := w.AttachArtifact(ref, root.Abs("outside/weights.bin"))
	if err != nil {
		t.Fatalf("AttachArtifact: %v", err)
	}
	wantTarget := root.Abs("external/alpha/ideas/beta/experiments/gamma/weights.bin")
	if !art.Linked || art.Target != wantTarget {
		t.Fatalf("artifact = %+v, want link to %s", art, wantTarget)
	}
	link, err := os.Readlink(art.Path)
	if err != nil || link != wantTarget {
		t.Fatalf("Readlink = %q, %v", link, err)
	}
	root.AssertFileContains("projects/alpha/ideas/beta/experiments/gamma/artifacts/weights.bin", "0123456789")
}
