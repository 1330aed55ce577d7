// Package report builds the per-project validation report: idea status
// tallies, the validation rate, and each idea's validation summary.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aidanlsb/labnotes/internal/atomicfile"
	"github.com/aidanlsb/labnotes/internal/dates"
	"github.com/aidanlsb/labnotes/internal/parser"
	"github.com/aidanlsb/labnotes/internal/paths"
	"github.com/aidanlsb/labnotes/internal/slugs"
	"github.com/aidanlsb/labnotes/internal/vault"
)

// SummaryHeading is the validation.md section copied into the report.
const SummaryHeading = "Validation Summary"

// Counts tallies the ideas of a project by status.
type Counts struct {
	Total      int `json:"total"`
	Validated  int `json:"validated"`
	Rejected   int `json:"rejected"`
	InProgress int `json:"in_progress"`
	Planned    int `json:"planned"`
}

// Rate is the share of validated ideas as a percentage; 0 without ideas.
func (c Counts) Rate() float64 {
	if c.Total == 0 {
		return 0
	}
	return float64(c.Validated) / float64(c.Total) * 100
}

// IdeaDetail is the report block of one idea.
type IdeaDetail struct {
	Title       string `json:"title"`
	Status      string `json:"status"`
	Location    string `json:"location"`
	Experiments int    `json:"experiments"`
	// Summary is the verbatim body of the Validation Summary section.
	Summary string `json:"summary"`
	// HasValidation is false when validation.md is missing or has no
	// Validation Summary section.
	HasValidation bool `json:"has_validation"`
}

// Report is the validation report of one project.
type Report struct {
	ProjectTitle string       `json:"project"`
	ProjectType  string       `json:"type"`
	ProjectSlug  string       `json:"-"`
	Generated    time.Time    `json:"generated"`
	Counts       Counts       `json:"counts"`
	Ideas        []IdeaDetail `json:"ideas"`
}

// Build collects the report for the project titled projectTitle.
// Ideas without a title are left out, as they are everywhere else.
func Build(v *vault.Vault, projectTitle string, now time.Time) (*Report, error) {
	project, err := v.Project(projectTitle)
	if err != nil {
		return nil, err
	}

	r := &Report{
		ProjectTitle: project.Title(),
		ProjectType:  orUnknown(project.Meta.String("type")),
		ProjectSlug:  slugs.Default(project.Title()),
		Generated:    now,
	}

	for _, idea := range v.Children(project) {
		title := strings.TrimSpace(idea.Meta.String("title"))
		if title == "" {
			continue
		}
		status := idea.Status()
		r.Counts.add(status)

		detail := IdeaDetail{
			Title:       title,
			Status:      status,
			Location:    paths.IdeasDir + "/" + idea.Slug + "/",
			Experiments: len(v.Children(idea)),
		}
		detail.Summary, detail.HasValidation = validationSummary(idea.Dir, v.Logger())
		r.Ideas = append(r.Ideas, detail)
	}
	return r, nil
}

func (c *Counts) add(status string) {
	c.Total++
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "validated":
		c.Validated++
	case "rejected":
		c.Rejected++
	case "in-progress":
		c.InProgress++
	case "planned":
		c.Planned++
	}
}

func validationSummary(ideaDir string, log *zap.Logger) (string, bool) {
	path := filepath.Join(ideaDir, paths.ValidationFile)
	content, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("skipping unreadable validation file", zap.String("path", path), zap.Error(err))
		}
		return "", false
	}
	return parser.Section(string(content), SummaryHeading)
}

// Path returns where Export writes the report under root.
func (r *Report) Path(root string) string {
	return paths.Report(root, r.ProjectSlug)
}

// Markdown renders the report.
func (r *Report) Markdown() string {
	var b strings.Builder

	b.WriteString("# Validation Report\n\n")
	fmt.Fprintf(&b, "**Project:** %s  \n", r.ProjectTitle)
	fmt.Fprintf(&b, "**Type:** %s  \n", r.ProjectType)
	fmt.Fprintf(&b, "**Generated:** %s\n\n", dates.Format(r.Generated))
	b.WriteString("---\n\n")

	anchors := newAnchorSet()
	b.WriteString("## Contents\n\n")
	anchors.add("Contents")
	fmt.Fprintf(&b, "- [Summary](#%s)\n", anchors.add("Summary"))
	ideaAnchors := make([]string, len(r.Ideas))
	for i, idea := range r.Ideas {
		ideaAnchors[i] = anchors.add(idea.Title)
		fmt.Fprintf(&b, "- [%s](#%s)\n", idea.Title, ideaAnchors[i])
	}
	b.WriteString("\n")

	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Count |\n")
	b.WriteString("|--------|-------|\n")
	fmt.Fprintf(&b, "| Total Ideas | %d |\n", r.Counts.Total)
	fmt.Fprintf(&b, "| Validated | %d |\n", r.Counts.Validated)
	fmt.Fprintf(&b, "| Rejected | %d |\n", r.Counts.Rejected)
	fmt.Fprintf(&b, "| In Progress | %d |\n", r.Counts.InProgress)
	fmt.Fprintf(&b, "| Planned | %d |\n", r.Counts.Planned)
	fmt.Fprintf(&b, "| Validation Rate | %.1f%% |\n\n", r.Counts.Rate())
	b.WriteString("---\n")

	for _, idea := range r.Ideas {
		fmt.Fprintf(&b, "\n## %s\n\n", idea.Title)
		fmt.Fprintf(&b, "**Status:** %s  \n", orUnknown(idea.Status))
		fmt.Fprintf(&b, "**Location:** `%s`  \n", idea.Location)
		fmt.Fprintf(&b, "**Experiments:** %d\n\n", idea.Experiments)
		b.WriteString("### " + SummaryHeading + "\n")
		if idea.HasValidation {
			// The rule needs a blank line above it or it turns the last
			// summary line into a setext heading.
			b.WriteString(idea.Summary)
			switch {
			case strings.HasSuffix(idea.Summary, "\n\n"):
			case strings.HasSuffix(idea.Summary, "\n"):
				b.WriteString("\n")
			default:
				b.WriteString("\n\n")
			}
		} else {
			b.WriteString("\n_No validation summary recorded._\n\n")
		}
		b.WriteString("---\n")
	}
	return b.String()
}

// Export builds the report and writes it to <root>/validation-report-<slug>.md,
// returning the report and the path written.
func Export(v *vault.Vault, projectTitle string, now time.Time) (*Report, string, error) {
	r, err := Build(v, projectTitle, now)
	if err != nil {
		return nil, "", err
	}
	path := r.Path(v.Root)
	if err := atomicfile.WriteFile(path, []byte(r.Markdown()), 0o644); err != nil {
		return nil, "", fmt.Errorf("write report: %w", err)
	}
	return r, path, nil
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}

// anchorSet hands out heading anchors, suffixing repeats with -1, -2, ...
// the way Markdown renderers disambiguate them.
type anchorSet map[string]int

func newAnchorSet() anchorSet { return anchorSet{} }

func (a anchorSet) add(heading string) string {
	base := slugs.AnchorSlug(heading)
	n := a[base]
	a[base] = n + 1
	if n == 0 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, n)
}
