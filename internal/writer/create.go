package writer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/aidanlsb/labnotes/internal/atomicfile"
	"github.com/aidanlsb/labnotes/internal/model"
	"github.com/aidanlsb/labnotes/internal/parser"
	"github.com/aidanlsb/labnotes/internal/paths"
	"github.com/aidanlsb/labnotes/internal/slugs"
	"github.com/aidanlsb/labnotes/internal/template"
	"github.com/aidanlsb/labnotes/internal/vault"
)

// ProjectOptions configures CreateProject. Zero values select the defaults.
type ProjectOptions struct {
	Type     string
	Tags     []string
	Priority string
}

// IdeaOptions configures CreateIdea.
type IdeaOptions struct {
	Tags     []string
	Priority string
}

// ExperimentOptions configures CreateExperiment.
type ExperimentOptions struct {
	Tags []string
}

// CreateProject creates projects/<slug>/ with project.md and its ideas/,
// papers/, and engineering/ directories. When index.md exists the project is
// listed under its "## Projects" heading.
func (w *Writer) CreateProject(title string, opts ProjectOptions) (*Result, error) {
	if err := model.CheckTitle(title); err != nil {
		return nil, err
	}
	projectType, err := model.CheckProjectType(opts.Type)
	if err != nil {
		return nil, err
	}
	priority, err := model.CheckPriority(opts.Priority)
	if err != nil {
		return nil, err
	}

	projectsDir := w.vault.ProjectsDir()
	dir, err := w.checkFree(model.KindProject, title, projectsDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(projectsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create projects directory: %w", err)
	}

	now := w.now()
	vars := template.NewVariables(title, string(model.KindProject), filepath.Base(dir), now)
	vars.Type = projectType

	fm := []parser.Field{
		{Key: "title", Value: title},
		{Key: "type", Value: projectType},
		{Key: "created", Value: now},
		{Key: "updated", Value: now},
		{Key: "status", Value: model.InitialStatus(model.KindProject)},
		{Key: "tags", Value: tagList(opts.Tags)},
		{Key: "priority", Value: priority},
	}

	res, err := w.create(model.KindProject, dir, fm, vars, nil, paths.IdeasDir, paths.PapersDir, paths.EngineeringDir)
	if err != nil {
		return nil, err
	}
	res.Timestamp = now

	indexPath := filepath.Join(w.vault.Root, paths.IndexFile)
	if added, err := addToIndex(indexPath, title, filepath.Base(dir), projectType, now); err != nil {
		w.log().Warn("could not update index.md", zap.String("path", indexPath), zap.Error(err))
	} else if added {
		res.Touched = append(res.Touched, indexPath)
	}
	return res, nil
}

// CreateIdea creates an idea under the project titled projectTitle, together
// with validation.md and experiments/, and bumps the project's updated field.
func (w *Writer) CreateIdea(projectTitle, title string, opts IdeaOptions) (*Result, error) {
	if err := model.CheckTitle(title); err != nil {
		return nil, err
	}
	priority, err := model.CheckPriority(opts.Priority)
	if err != nil {
		return nil, err
	}

	project, err := w.vault.Project(projectTitle)
	if err != nil {
		return nil, err
	}
	dir, err := w.checkFree(model.KindIdea, title, paths.ChildDir(project.Dir, model.KindProject))
	if err != nil {
		return nil, err
	}

	now := w.now()
	vars := template.NewVariables(title, string(model.KindIdea), filepath.Base(dir), now)
	vars.Project = project.Title()

	fm := []parser.Field{
		{Key: "title", Value: title},
		{Key: "project", Value: project.Title()},
		{Key: "created", Value: now},
		{Key: "updated", Value: now},
		{Key: "status", Value: model.InitialStatus(model.KindIdea)},
		{Key: "tags", Value: tagList(opts.Tags)},
		{Key: "priority", Value: priority},
	}

	aux := func(dir string) (string, error) {
		path := filepath.Join(dir, paths.ValidationFile)
		return path, w.writeValidation(path, title, model.InitialStatus(model.KindIdea), vars)
	}

	res, err := w.create(model.KindIdea, dir, fm, vars, aux, paths.ExperimentsDir)
	if err != nil {
		return nil, err
	}
	res.Timestamp = now
	if w.bumpUpdated(project.MetaPath, now) {
		res.Touched = append(res.Touched, project.MetaPath)
	}
	return res, nil
}

// CreateExperiment creates an experiment under an idea, together with
// results.md and artifacts/, and bumps the idea's updated field.
func (w *Writer) CreateExperiment(projectTitle, ideaTitle, title string, opts ExperimentOptions) (*Result, error) {
	if err := model.CheckTitle(title); err != nil {
		return nil, err
	}

	idea, err := w.vault.Idea(projectTitle, ideaTitle)
	if err != nil {
		return nil, err
	}
	dir, err := w.checkFree(model.KindExperiment, title, paths.ChildDir(idea.Dir, model.KindIdea))
	if err != nil {
		return nil, err
	}

	now := w.now()
	vars := template.NewVariables(title, string(model.KindExperiment), filepath.Base(dir), now)
	vars.Project = idea.ProjectTitle
	vars.Idea = idea.Title()

	fm := []parser.Field{
		{Key: "title", Value: title},
		{Key: "idea", Value: idea.Title()},
		{Key: "project", Value: idea.ProjectTitle},
		{Key: "created", Value: now},
		{Key: "updated", Value: now},
		{Key: "status", Value: model.InitialStatus(model.KindExperiment)},
		{Key: "tags", Value: tagList(opts.Tags)},
	}

	aux := func(dir string) (string, error) {
		path := filepath.Join(dir, paths.ResultsFile)
		body, err := template.Render(w.vault.Root, template.Results, vars)
		if err != nil {
			return path, err
		}
		return path, atomicfile.WriteFile(path, []byte(body), 0o644)
	}

	res, err := w.create(model.KindExperiment, dir, fm, vars, aux, paths.ArtifactsDir)
	if err != nil {
		return nil, err
	}
	res.Timestamp = now
	if w.bumpUpdated(idea.MetaPath, now) {
		res.Touched = append(res.Touched, idea.MetaPath)
	}
	return res, nil
}

// checkFree returns the directory a new entity would occupy in container,
// or a CollisionError when the title or the slug is already taken there.
func (w *Writer) checkFree(kind model.Kind, title, container string) (string, error) {
	var existing string
	var found bool
	switch kind {
	case model.KindProject:
		existing, found = vault.FindProjectByTitle(container, title, w.log())
	case model.KindIdea:
		existing, found = vault.FindIdeaByTitle(filepath.Dir(container), title, w.log())
	case model.KindExperiment:
		existing, found = vault.FindExperimentByTitle(filepath.Dir(container), title, w.log())
	}
	if found {
		return "", &CollisionError{Kind: kind, Title: title, Path: existing}
	}

	dir := filepath.Join(container, slugs.Default(title))
	if _, err := os.Lstat(dir); err == nil {
		return "", &CollisionError{Kind: kind, Title: title, Path: dir}
	}
	return dir, nil
}

// create makes dir, writes the metadata file and the optional auxiliary
// file, and creates the child directories. If anything after the Mkdir
// fails, dir is removed again.
func (w *Writer) create(
	kind model.Kind,
	dir string,
	fm []parser.Field,
	vars *template.Variables,
	aux func(dir string) (string, error),
	children ...string,
) (res *Result, err error) {
	if err := os.Mkdir(dir, 0o755); err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, &CollisionError{Kind: kind, Title: vars.Title, Path: dir}
		}
		return nil, fmt.Errorf("create %s directory: %w", kind, err)
	}
	defer func() {
		if err != nil {
			_ = os.RemoveAll(dir)
		}
	}()

	body, err := template.Render(w.vault.Root, string(kind), vars)
	if err != nil {
		return nil, err
	}
	content, err := renderNote(fm, body)
	if err != nil {
		return nil, err
	}

	metaPath := paths.MetaPath(dir, kind)
	if err := atomicfile.WriteFile(metaPath, []byte(content), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", filepath.Base(metaPath), err)
	}
	created := []string{metaPath}

	if aux != nil {
		path, err := aux(dir)
		if err != nil {
			return nil, fmt.Errorf("write %s: %w", filepath.Base(path), err)
		}
		created = append(created, path)
	}

	for _, child := range children {
		if err := os.Mkdir(filepath.Join(dir, child), 0o755); err != nil {
			return nil, fmt.Errorf("create %s/: %w", child, err)
		}
	}

	return &Result{Entity: w.vault.Load(kind, dir), Created: created}, nil
}

func (w *Writer) writeValidation(path, ideaTitle, status string, vars *template.Variables) error {
	body, err := template.Render(w.vault.Root, template.Validation, vars)
	if err != nil {
		return err
	}
	content, err := renderNote([]parser.Field{
		{Key: "idea", Value: ideaTitle},
		{Key: "status", Value: status},
		{Key: "validated", Value: nil},
	}, body)
	if err != nil {
		return err
	}
	return atomicfile.WriteFile(path, []byte(content), 0o644)
}

// renderNote builds "---\n<fields>---\n\n<body>".
func renderNote(fields []parser.Field, body string) (string, error) {
	var b strings.Builder
	b.WriteString(parser.Delimiter + "\n")
	for _, f := range fields {
		v, err := parser.FormatValue(f.Value)
		if err != nil {
			return "", fmt.Errorf("field %q: %w", f.Key, err)
		}
		b.WriteString(f.Key + ": " + v + "\n")
	}
	b.WriteString(parser.Delimiter + "\n\n")
	b.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		b.WriteString("\n")
	}
	return b.String(), nil
}

func tagList(tags []string) []string {
	out := []string{}
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
