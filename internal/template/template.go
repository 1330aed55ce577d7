// Package template provides note body templates and variable substitution.
//
// Every entity file is written as generated front-matter followed by a body.
// The body comes from <root>/templates/<name>-template.md when that file
// exists, otherwise from the built-in default for the name.
package template

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aidanlsb/labnotes/internal/dates"
	"github.com/aidanlsb/labnotes/internal/parser"
	"github.com/aidanlsb/labnotes/internal/paths"
)

// Variables holds the available template variables for substitution.
type Variables struct {
	// Title is the title of the entity being created
	Title string
	// Slug is the directory name derived from the title
	Slug string
	// Kind is the entity kind (project, idea, experiment)
	Kind string
	// Project is the owning project title, if any
	Project string
	// Idea is the owning idea title, if any
	Idea string
	// Type is the project type
	Type string
	// Date is the creation date (YYYY-MM-DD)
	Date string
	// Created is the full creation timestamp
	Created string
	// Year is the creation year
	Year string
}

// NewVariables creates Variables for an entity created at now.
func NewVariables(title, kind, slug string, now time.Time) *Variables {
	return &Variables{
		Title:   title,
		Slug:    slug,
		Kind:    kind,
		Date:    now.Format(dates.DateLayout),
		Created: dates.Format(now),
		Year:    now.Format("2006"),
	}
}

// Path returns where the override template for name lives under root.
func Path(root, name string) string {
	return filepath.Join(root, paths.TemplatesDir, name+"-template.md")
}

// Body returns the body template for name: the user's override under root
// with any front-matter stripped, or the built-in default.
func Body(root, name string) (string, error) {
	builtin, ok := builtinBodies[name]
	if !ok {
		return "", fmt.Errorf("unknown template %q", name)
	}
	if root == "" {
		return builtin, nil
	}

	content, err := os.ReadFile(Path(root, name))
	if err != nil {
		if os.IsNotExist(err) {
			return builtin, nil
		}
		return "", fmt.Errorf("read template %s: %w", name, err)
	}
	return strings.TrimLeft(parser.Body(string(content)), "\r\n"), nil
}

// Render loads the body template for name and applies vars to it.
func Render(root, name string, vars *Variables) (string, error) {
	body, err := Body(root, name)
	if err != nil {
		return "", err
	}
	return Apply(body, vars), nil
}

// Apply substitutes template variables in the content.
// Variables use {{name}} syntax. Unknown variables are left as-is.
// Escaped variables \{{name}} are converted to literal {{name}}.
func Apply(content string, vars *Variables) string {
	if content == "" || vars == nil {
		return content
	}

	// Use placeholder strings instead of null bytes to avoid editor issues.
	content = strings.ReplaceAll(content, "\\{{", "«LAB_ESC_OPEN»")
	content = strings.ReplaceAll(content, "\\}}", "«LAB_ESC_CLOSE»")

	replacer := strings.NewReplacer(
		"{{title}}", vars.Title,
		"{{slug}}", vars.Slug,
		"{{kind}}", vars.Kind,
		"{{project}}", vars.Project,
		"{{idea}}", vars.Idea,
		"{{type}}", vars.Type,
		"{{date}}", vars.Date,
		"{{created}}", vars.Created,
		"{{updated}}", vars.Created,
		"{{year}}", vars.Year,
	)
	content = replacer.Replace(content)

	content = strings.ReplaceAll(content, "«LAB_ESC_OPEN»", "{{")
	content = strings.ReplaceAll(content, "«LAB_ESC_CLOSE»", "}}")

	return content
}
