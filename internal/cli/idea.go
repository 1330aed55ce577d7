package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/labnotes/internal/model"
	"github.com/aidanlsb/labnotes/internal/paths"
	"github.com/aidanlsb/labnotes/internal/shellquote"
	"github.com/aidanlsb/labnotes/internal/ui"
	"github.com/aidanlsb/labnotes/internal/writer"
)

var (
	ideaPriority = newPriorityFlag()
	ideaTags     string
)

var ideaCmd = &cobra.Command{
	Use:   "idea",
	Short: "Create ideas",
}

var ideaNewCmd = &cobra.Command{
	Use:   "new <project> <title>",
	Short: "Create an idea inside a project",
	Long: `Creates projects/<project>/ideas/<slug>/ with idea.md, validation.md and
an empty experiments/ directory, and bumps the project's updated timestamp.

Examples:
  lab idea new "Neural Radiance Fields" "Sparse voxel grids" --priority high`,
	Args: exactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := newWriter().CreateIdea(args[0], args[1], writer.IdeaOptions{
			Tags:     model.SplitTags(ideaTags),
			Priority: ideaPriority.Value(),
		})
		if err != nil {
			return err
		}
		warnings := afterWrite("Add idea: "+res.Entity.Location(), resultFiles(res)...)

		finish(createdJSON(res), warnings, &Meta{Count: 1}, func() {
			fmt.Fprintln(stdout, ui.Successf("Created idea %s", res.Entity.Title()))
			fmt.Fprintln(stdout, "  "+ui.Hint("in "+parentContext(res.Entity)))
			fmt.Fprintln(stdout, "  "+ui.FilePath(paths.Rel(sess.root, res.Entity.Dir)))
			fmt.Fprintln(stdout, ui.Hint("Next: "+shellquote.Command("lab experiment new", res.Entity.ProjectTitle, res.Entity.Title())+" <title>"))
		})
		return nil
	},
}

func init() {
	ideaNewCmd.Flags().Var(ideaPriority, "priority", "Priority ("+joinAllowed(model.Priorities)+")")
	ideaNewCmd.Flags().StringVar(&ideaTags, "tags", "", "Comma-separated tags")

	ideaCmd.AddCommand(ideaNewCmd)
	rootCmd.AddCommand(ideaCmd)
}
