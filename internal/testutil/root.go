// Package testutil provides reusable test utilities for labnotes tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// TestRoot represents a temporary notes root for testing.
type TestRoot struct {
	Path  string
	t     *testing.T
	files map[string]string
	dirs  []string
}

// NewTestRoot creates a new test root builder.
// Call Build() to create the actual directory.
func NewTestRoot(t *testing.T) *TestRoot {
	t.Helper()
	return &TestRoot{
		t:     t,
		files: make(map[string]string),
	}
}

// WithFile adds a file to the root.
// The path is relative to the root and uses forward slashes.
func (r *TestRoot) WithFile(path, content string) *TestRoot {
	r.files[path] = content
	return r
}

// WithDir adds an empty directory to the root.
func (r *TestRoot) WithDir(path string) *TestRoot {
	r.dirs = append(r.dirs, path)
	return r
}

// WithConfig sets the config.yaml content. Pass "" for the minimal marker.
func (r *TestRoot) WithConfig(yaml string) *TestRoot {
	if yaml == "" {
		yaml = MinimalConfig()
	}
	r.files["config.yaml"] = yaml
	return r
}

// WithProject writes projects/<slug>/project.md with the given front-matter
// lines (without delimiters) and creates the ideas/ directory.
func (r *TestRoot) WithProject(slug, frontmatter string) *TestRoot {
	r.dirs = append(r.dirs, "projects/"+slug+"/ideas")
	return r.WithFile("projects/"+slug+"/project.md", Note(frontmatter, "## Project Overview\n"))
}

// WithIdea writes projects/<project>/ideas/<slug>/idea.md and creates the
// experiments/ directory.
func (r *TestRoot) WithIdea(projectSlug, slug, frontmatter string) *TestRoot {
	base := "projects/" + projectSlug + "/ideas/" + slug
	r.dirs = append(r.dirs, base+"/experiments")
	return r.WithFile(base+"/idea.md", Note(frontmatter, "## Idea Description\n"))
}

// WithExperiment writes the experiment.md of an experiment under an idea.
func (r *TestRoot) WithExperiment(projectSlug, ideaSlug, slug, frontmatter string) *TestRoot {
	base := "projects/" + projectSlug + "/ideas/" + ideaSlug + "/experiments/" + slug
	r.dirs = append(r.dirs, base+"/artifacts")
	return r.WithFile(base+"/experiment.md", Note(frontmatter, "## Experiment Setup\n"))
}

// Build creates the root directory and all configured files.
// Returns the TestRoot for method chaining.
func (r *TestRoot) Build() *TestRoot {
	r.t.Helper()

	r.Path = r.t.TempDir()

	for _, dir := range r.dirs {
		full := filepath.Join(r.Path, filepath.FromSlash(dir))
		if err := os.MkdirAll(full, 0o755); err != nil {
			r.t.Fatalf("failed to create directory %s: %v", full, err)
		}
	}
	for path, content := range r.files {
		r.writeFile(path, content)
	}

	return r
}

// writeFile writes a file to the root, creating directories as needed.
func (r *TestRoot) writeFile(relPath, content string) {
	r.t.Helper()
	fullPath := filepath.Join(r.Path, filepath.FromSlash(relPath))

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		r.t.Fatalf("failed to create directory %s: %v", dir, err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0o644); err != nil {
		r.t.Fatalf("failed to write file %s: %v", fullPath, err)
	}
}

// Abs returns the absolute path of a root-relative path.
func (r *TestRoot) Abs(relPath string) string {
	return filepath.Join(r.Path, filepath.FromSlash(relPath))
}

// ReadFile reads a file from the root.
func (r *TestRoot) ReadFile(relPath string) string {
	r.t.Helper()
	content, err := os.ReadFile(r.Abs(relPath))
	if err != nil {
		r.t.Fatalf("failed to read file %s: %v", relPath, err)
	}
	return string(content)
}

// FileExists checks if a file exists in the root.
func (r *TestRoot) FileExists(relPath string) bool {
	r.t.Helper()
	_, err := os.Stat(r.Abs(relPath))
	return err == nil
}

// Note assembles a Markdown note from front-matter lines and a body.
func Note(frontmatter, body string) string {
	return "---\n" + frontmatter + "---\n\n" + body
}

// MinimalConfig returns a config.yaml that marks a directory as a notes root.
func MinimalConfig() string {
	return `notion:
  enabled: false
database:
  enabled: false
`
}
