package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/labnotes/internal/model"
	"github.com/aidanlsb/labnotes/internal/paths"
	"github.com/aidanlsb/labnotes/internal/shellquote"
	"github.com/aidanlsb/labnotes/internal/ui"
	"github.com/aidanlsb/labnotes/internal/writer"
)

var (
	projectType     = newProjectTypeFlag()
	projectPriority = newPriorityFlag()
	projectTags     string
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Create and list projects",
}

var projectNewCmd = &cobra.Command{
	Use:   "new <title>",
	Short: "Create a project",
	Long: `Creates projects/<slug>/ with project.md and an empty ideas/ directory.

When index.md exists at the root, a line for the project is added under its
"## Projects" heading.

Examples:
  lab project new "Neural Radiance Fields" --type academic --tags nerf,3d
  lab project new "Paper Reproduction" --priority high --json`,
	Args: exactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := args[0]
		res, err := newWriter().CreateProject(title, writer.ProjectOptions{
			Type:     projectType.Value(),
			Tags:     model.SplitTags(projectTags),
			Priority: projectPriority.Value(),
		})
		if err != nil {
			return err
		}
		warnings := afterWrite("Add project: "+res.Entity.Title(), resultFiles(res)...)

		finish(createdJSON(res), warnings, &Meta{Count: 1}, func() {
			fmt.Fprintln(stdout, ui.Successf("Created project %s", res.Entity.Title()))
			fmt.Fprintln(stdout, "  "+ui.FilePath(paths.Rel(sess.root, res.Entity.Dir)))
			if len(res.Touched) > 0 {
				fmt.Fprintln(stdout, "  "+ui.Hint("added to index.md"))
			}
			fmt.Fprintln(stdout, ui.Hint("Next: "+shellquote.Command("lab idea new", res.Entity.Title())+" <title>"))
		})
		return nil
	},
}

type projectSummary struct {
	entityJSON
	Ideas       int `json:"ideas"`
	Experiments int `json:"experiments"`
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects with their idea and experiment counts",
	Args:  exactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		v := sess.vault
		out := []projectSummary{}
		for _, p := range v.Projects() {
			if p.Meta.String("title") == "" {
				continue
			}
			s := projectSummary{entityJSON: toEntityJSON(p)}
			for _, idea := range v.Children(p) {
				s.Ideas++
				s.Experiments += len(v.Children(idea))
			}
			out = append(out, s)
		}

		finish(out, nil, &Meta{Count: len(out)}, func() {
			if len(out) == 0 {
				fmt.Fprintln(stdout, ui.Hint("No projects yet. Create one with 'lab project new <title>'."))
				return
			}
			t := ui.NewTable(6)
			t.SetHeader("TITLE", "TYPE", "STATUS", "PRIORITY", "IDEAS", "EXPERIMENTS")
			for _, s := range out {
				t.AddRow(s.Title, s.entityType(), s.Status, s.Priority, strconv.Itoa(s.Ideas), strconv.Itoa(s.Experiments))
			}
			fmt.Fprint(stdout, t.String())
			fmt.Fprintln(stdout, ui.Hint(ui.Count(len(out), "project", "projects")))
		})
		return nil
	},
}

func (s projectSummary) entityType() string {
	if s.Type == "" {
		return "-"
	}
	return s.Type
}

// createdJSON is the data of a create command.
func createdJSON(res *writer.Result) map[string]interface{} {
	return map[string]interface{}{
		"entity":  toEntityJSON(res.Entity),
		"created": relAll(res.Created),
		"touched": relAll(res.Touched),
	}
}

func relAll(files []string) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, paths.Rel(sess.root, f))
	}
	return out
}

func init() {
	projectNewCmd.Flags().Var(projectType, "type", "Project type ("+joinAllowed(model.ProjectTypes)+")")
	projectNewCmd.Flags().Var(projectPriority, "priority", "Priority ("+joinAllowed(model.Priorities)+")")
	projectNewCmd.Flags().StringVar(&projectTags, "tags", "", "Comma-separated tags")

	projectCmd.AddCommand(projectNewCmd)
	projectCmd.AddCommand(projectListCmd)
	rootCmd.AddCommand(projectCmd)
}
