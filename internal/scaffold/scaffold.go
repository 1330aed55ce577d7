// Package scaffold creates a new notes root.
package scaffold

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aidanlsb/labnotes/internal/atomicfile"
	"github.com/aidanlsb/labnotes/internal/config"
	"github.com/aidanlsb/labnotes/internal/dates"
	"github.com/aidanlsb/labnotes/internal/paths"
	"github.com/aidanlsb/labnotes/internal/template"
)

// Options controls Init.
type Options struct {
	// Force rewrites the generated files of an existing root. Projects are
	// never touched.
	Force bool
	Now   time.Time
}

// Result lists what Init did, as root-relative paths.
type Result struct {
	Root    string   `json:"root"`
	Created []string `json:"created"`
	Kept    []string `json:"kept"`
}

// Existing reports whether root already looked like a notes root.
func (r *Result) Existing() bool {
	return len(r.Kept) > 0
}

// Init lays out root: projects/, index.md, tags.md, config.yaml and the
// overridable templates. Files that already exist are kept unless
// opts.Force is set.
func Init(root string, opts Options) (*Result, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	for _, dir := range []string{abs, paths.Projects(abs), filepath.Join(abs, paths.TemplatesDir)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	res := &Result{Root: abs, Created: []string{}, Kept: []string{}}
	files := []generated{
		{filepath.Join(abs, paths.IndexFile), writeString(IndexContent(opts.Now))},
		{filepath.Join(abs, paths.TagsFile), writeString(TagsContent)},
		{filepath.Join(abs, paths.ConfigFile), func(string) error {
			return config.WriteWorkspace(abs, config.DefaultWorkspace())
		}},
	}
	for _, name := range template.Overridable {
		files = append(files, generated{template.Path(abs, name), writeString(template.Starter(name))})
	}

	for _, f := range files {
		rel := paths.Rel(abs, f.path)
		if !opts.Force {
			if _, err := os.Stat(f.path); err == nil {
				res.Kept = append(res.Kept, rel)
				continue
			} else if !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
		}
		if err := f.write(f.path); err != nil {
			return nil, err
		}
		res.Created = append(res.Created, rel)
	}
	return res, nil
}

type generated struct {
	path  string
	write func(path string) error
}

func writeString(content string) func(path string) error {
	return func(path string) error {
		if err := atomicfile.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
		}
		return nil
	}
}

// IndexContent is the index.md written by Init. New projects are listed
// under its "## Projects" heading.
func IndexContent(now time.Time) string {
	return `# Research Notes Index

Last updated: ` + dates.Format(now) + `

## Projects

[Projects will be listed here automatically]

## Tags

[Tags will be listed here automatically]

## Quick Stats

- Total Projects: 0
- Total Ideas: 0
- Total Experiments: 0
`
}

// TagsContent is the tags.md written by Init.
const TagsContent = "# Research Notes Tags\n" +
	"\n" +
	"Use tags to organize your research across projects.\n" +
	"\n" +
	"## Common Tags\n" +
	"\n" +
	"- #3d-vision - 3D computer vision\n" +
	"- #deep-learning - Deep learning techniques\n" +
	"- #optimization - Performance optimization\n" +
	"- #reconstruction - 3D reconstruction\n" +
	"- #neural-rendering - Neural rendering\n" +
	"- #real-time - Real-time systems\n" +
	"\n" +
	"## Tag Usage\n" +
	"\n" +
	"Add tags to any project, idea, or experiment:\n" +
	"\n" +
	"```yaml\n" +
	"tags: [3d-vision, nerf, optimization]\n" +
	"```\n"
