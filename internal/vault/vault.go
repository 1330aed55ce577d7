// Package vault locates and enumerates entities in a notes root.
//
// The directory tree is the database: every lookup re-reads the metadata
// files it touches. A metadata file that cannot be read or decoded is logged
// as a warning and treated as empty; it never aborts a search or a walk.
package vault

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/aidanlsb/labnotes/internal/logging"
	"github.com/aidanlsb/labnotes/internal/model"
	"github.com/aidanlsb/labnotes/internal/parser"
	"github.com/aidanlsb/labnotes/internal/paths"
)

// Vault is a handle on a notes root.
type Vault struct {
	Root string
	log  *zap.Logger
}

// New returns a Vault for root. A nil logger discards warnings.
func New(root string, logger *zap.Logger) *Vault {
	return &Vault{Root: root, log: logging.OrNop(logger)}
}

// Logger returns the logger warnings are written to.
func (v *Vault) Logger() *zap.Logger { return v.log }

// ProjectsDir returns <root>/projects.
func (v *Vault) ProjectsDir() string {
	return paths.Projects(v.Root)
}

// Entity is one project, idea, or experiment on disk.
type Entity struct {
	Kind     model.Kind
	Dir      string
	RelPath  string // root-relative path of the metadata file
	Slug     string
	MetaPath string
	Meta     parser.Metadata

	// Parent context. Empty for the levels above the entity.
	ProjectTitle string
	IdeaTitle    string
}

// Title returns the entity's title, falling back to its directory name.
func (e *Entity) Title() string {
	if t := strings.TrimSpace(e.Meta.String("title")); t != "" {
		return t
	}
	return e.Slug
}

// Status returns the entity's status as written.
func (e *Entity) Status() string {
	return e.Meta.String("status")
}

// Location names the entity together with its parents, e.g. "Alpha / Beta / Gamma".
func (e *Entity) Location() string {
	parts := make([]string, 0, 3)
	if e.ProjectTitle != "" {
		parts = append(parts, e.ProjectTitle)
	}
	if e.IdeaTitle != "" {
		parts = append(parts, e.IdeaTitle)
	}
	parts = append(parts, e.Title())
	return strings.Join(parts, " / ")
}

// NotFoundError is returned when no entity matches a title.
type NotFoundError struct {
	Kind   model.Kind
	Title  string
	Parent string // title of the searched parent; empty for projects
	// Alternatives are the titles that do exist in the searched parent.
	Alternatives []string
}

func (e *NotFoundError) Error() string {
	switch e.Kind {
	case model.KindIdea:
		return fmt.Sprintf("idea '%s' not found in project '%s'", e.Title, e.Parent)
	case model.KindExperiment:
		return fmt.Sprintf("experiment '%s' not found in idea '%s'", e.Title, e.Parent)
	default:
		return fmt.Sprintf("project '%s' not found", e.Title)
	}
}

// Project finds a project by title.
func (v *Vault) Project(title string) (*Entity, error) {
	dir, ok := FindProjectByTitle(v.ProjectsDir(), title, v.log)
	if !ok {
		return nil, &NotFoundError{
			Kind:         model.KindProject,
			Title:        title,
			Alternatives: v.titles(v.ProjectsDir(), model.KindProject),
		}
	}
	return v.load(model.KindProject, dir, "", ""), nil
}

// Idea finds an idea by title within a project.
func (v *Vault) Idea(projectTitle, ideaTitle string) (*Entity, error) {
	project, err := v.Project(projectTitle)
	if err != nil {
		return nil, err
	}
	dir, ok := FindIdeaByTitle(project.Dir, ideaTitle, v.log)
	if !ok {
		return nil, &NotFoundError{
			Kind:         model.KindIdea,
			Title:        ideaTitle,
			Parent:       project.Title(),
			Alternatives: v.titles(paths.ChildDir(project.Dir, model.KindProject), model.KindIdea),
		}
	}
	return v.load(model.KindIdea, dir, project.Title(), ""), nil
}

// Experiment finds an experiment by title within an idea.
func (v *Vault) Experiment(projectTitle, ideaTitle, experimentTitle string) (*Entity, error) {
	idea, err := v.Idea(projectTitle, ideaTitle)
	if err != nil {
		return nil, err
	}
	dir, ok := FindExperimentByTitle(idea.Dir, experimentTitle, v.log)
	if !ok {
		return nil, &NotFoundError{
			Kind:         model.KindExperiment,
			Title:        experimentTitle,
			Parent:       idea.Title(),
			Alternatives: v.titles(paths.ChildDir(idea.Dir, model.KindIdea), model.KindExperiment),
		}
	}
	return v.load(model.KindExperiment, dir, idea.ProjectTitle, idea.Title()), nil
}

// Load reads the entity of kind stored in dir. Parent titles are taken from
// the directories above it.
func (v *Vault) Load(kind model.Kind, dir string) *Entity {
	var projectTitle, ideaTitle string
	switch kind {
	case model.KindIdea:
		projectDir := filepath.Dir(filepath.Dir(dir))
		projectTitle = v.load(model.KindProject, projectDir, "", "").Title()
	case model.KindExperiment:
		ideaDir := filepath.Dir(filepath.Dir(dir))
		idea := v.Load(model.KindIdea, ideaDir)
		projectTitle, ideaTitle = idea.ProjectTitle, idea.Title()
	}
	return v.load(kind, dir, projectTitle, ideaTitle)
}

func (v *Vault) load(kind model.Kind, dir, projectTitle, ideaTitle string) *Entity {
	metaPath := paths.MetaPath(dir, kind)
	return &Entity{
		Kind:         kind,
		Dir:          dir,
		RelPath:      paths.Rel(v.Root, metaPath),
		Slug:         filepath.Base(dir),
		MetaPath:     metaPath,
		Meta:         ReadMeta(metaPath, v.log),
		ProjectTitle: projectTitle,
		IdeaTitle:    ideaTitle,
	}
}

// Children returns the ideas of a project or the experiments of an idea.
func (v *Vault) Children(parent *Entity) []*Entity {
	var kind model.Kind
	var projectTitle, ideaTitle string
	switch parent.Kind {
	case model.KindProject:
		kind, projectTitle = model.KindIdea, parent.Title()
	case model.KindIdea:
		kind, projectTitle, ideaTitle = model.KindExperiment, parent.ProjectTitle, parent.Title()
	default:
		return nil
	}

	dirs := candidateDirs(paths.ChildDir(parent.Dir, parent.Kind), kind)
	out := make([]*Entity, 0, len(dirs))
	for _, dir := range dirs {
		out = append(out, v.load(kind, dir, projectTitle, ideaTitle))
	}
	return out
}

// Projects returns every project under the root.
func (v *Vault) Projects() []*Entity {
	dirs := candidateDirs(v.ProjectsDir(), model.KindProject)
	out := make([]*Entity, 0, len(dirs))
	for _, dir := range dirs {
		out = append(out, v.load(model.KindProject, dir, "", ""))
	}
	return out
}

func (v *Vault) titles(containerDir string, kind model.Kind) []string {
	var out []string
	for _, dir := range candidateDirs(containerDir, kind) {
		meta := ReadMeta(paths.MetaPath(dir, kind), zap.NewNop())
		if t := strings.TrimSpace(meta.String("title")); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// ReadMeta reads the front-matter of a metadata file. Unreadable or
// malformed files are logged and yield empty metadata.
func ReadMeta(path string, log *zap.Logger) parser.Metadata {
	meta, err := readMeta(path)
	if err != nil {
		logging.OrNop(log).Warn("skipping unreadable metadata", zap.String("path", path), zap.Error(err))
		return parser.Metadata{}
	}
	return meta
}

func readMeta(path string) (parser.Metadata, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return parser.Metadata{}, err
	}
	return parser.DecodeFrontmatter(string(content))
}
