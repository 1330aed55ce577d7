// Package paths centralizes the on-disk layout of a notes root:
// - where projects, ideas, and experiments live
// - which metadata file identifies each kind
// - root-relative path normalization for display and the index
//
// Keeping this in one place lets the writers, the walker, the watcher, and
// the index agree on what a path means.
package paths

import (
	"path/filepath"
	"strings"

	"github.com/aidanlsb/labnotes/internal/model"
)

// Fixed directory and file names.
const (
	ProjectsDir    = "projects"
	IdeasDir       = "ideas"
	PapersDir      = "papers"
	EngineeringDir = "engineering"
	ExperimentsDir = "experiments"
	ArtifactsDir   = "artifacts"
	TemplatesDir   = "templates"

	ValidationFile = "validation.md"
	ResultsFile    = "results.md"
	ConfigFile     = "config.yaml"
	IndexFile      = "index.md"
	TagsFile       = "tags.md"

	ReportPrefix = "validation-report-"
)

// Projects returns the projects directory under root.
func Projects(root string) string {
	return filepath.Join(root, ProjectsDir)
}

// ChildDir returns the directory holding children of a parent entity:
// ideas/ under a project, experiments/ under an idea.
func ChildDir(parentDir string, parentKind model.Kind) string {
	switch parentKind {
	case model.KindProject:
		return filepath.Join(parentDir, IdeasDir)
	case model.KindIdea:
		return filepath.Join(parentDir, ExperimentsDir)
	default:
		return ""
	}
}

// MetaPath returns the metadata file of the entity in dir.
func MetaPath(dir string, kind model.Kind) string {
	return filepath.Join(dir, kind.MetaFile())
}

// Report returns the path of the validation report for a project slug.
func Report(root, projectSlug string) string {
	return filepath.Join(root, ReportPrefix+projectSlug+".md")
}

// KindForFile returns the kind whose metadata file has the given base name.
func KindForFile(name string) (model.Kind, bool) {
	for _, k := range model.Kinds {
		if name == k.MetaFile() {
			return k, true
		}
	}
	return "", false
}

// normalizeRelPath normalizes a root-relative path-like value:
// - converts OS separators to '/'
// - trims leading "./" and leading "/"
// - collapses repeated '/'
func normalizeRelPath(p string) string {
	p = filepath.ToSlash(p)
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimPrefix(p, "/")
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	return p
}

// Rel returns path relative to root using forward slashes. Paths outside
// root are returned normalized but otherwise unchanged.
func Rel(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return normalizeRelPath(path)
	}
	return normalizeRelPath(rel)
}

// EntityFromRel classifies a root-relative metadata path by shape:
// projects/<p>/project.md, projects/<p>/ideas/<i>/idea.md, or
// projects/<p>/ideas/<i>/experiments/<e>/experiment.md.
func EntityFromRel(rel string) (model.Kind, bool) {
	parts := strings.Split(normalizeRelPath(rel), "/")
	if len(parts) < 3 || parts[0] != ProjectsDir {
		return "", false
	}
	switch len(parts) {
	case 3:
		return model.KindProject, parts[2] == model.KindProject.MetaFile()
	case 5:
		return model.KindIdea, parts[2] == IdeasDir && parts[4] == model.KindIdea.MetaFile()
	case 7:
		ok := parts[2] == IdeasDir && parts[4] == ExperimentsDir && parts[6] == model.KindExperiment.MetaFile()
		return model.KindExperiment, ok
	default:
		return "", false
	}
}
