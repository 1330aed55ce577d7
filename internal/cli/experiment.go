package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/labnotes/internal/model"
	"github.com/aidanlsb/labnotes/internal/paths"
	"github.com/aidanlsb/labnotes/internal/ui"
	"github.com/aidanlsb/labnotes/internal/writer"
)

var experimentTags string

var experimentCmd = &cobra.Command{
	Use:   "experiment",
	Short: "Create experiments and attach artifacts",
}

var experimentNewCmd = &cobra.Command{
	Use:   "new <project> <idea> <title>",
	Short: "Create an experiment inside an idea",
	Long: `Creates .../ideas/<idea>/experiments/<slug>/ with experiment.md,
results.md and an empty artifacts/ directory, and bumps the idea's updated
timestamp.`,
	Args: exactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := newWriter().CreateExperiment(args[0], args[1], args[2], writer.ExperimentOptions{
			Tags: model.SplitTags(experimentTags),
		})
		if err != nil {
			return err
		}
		warnings := afterWrite("Add experiment: "+res.Entity.Location(), resultFiles(res)...)

		finish(createdJSON(res), warnings, &Meta{Count: 1}, func() {
			fmt.Fprintln(stdout, ui.Successf("Created experiment %s", res.Entity.Title()))
			fmt.Fprintln(stdout, "  "+ui.Hint("in "+parentContext(res.Entity)))
			fmt.Fprintln(stdout, "  "+ui.FilePath(paths.Rel(sess.root, res.Entity.Dir)))
		})
		return nil
	},
}

type artifactJSON struct {
	Experiment entityJSON `json:"experiment"`
	Path       string     `json:"path"`
	Linked     bool       `json:"linked"`
	Target     string     `json:"target,omitempty"`
	Size       int64      `json:"size"`
}

var experimentAttachCmd = &cobra.Command{
	Use:   "attach <project> <idea> <experiment> <file>",
	Short: "Copy a file into an experiment's artifacts/ directory",
	Long: `Copies a file into the experiment's artifacts/ directory.

With storage.symlink_large_files set in config.yaml, files larger than
storage.symlink_threshold megabytes are symlinked instead: to a copy under
storage.external_storage when it is set, otherwise to the original file.`,
	Args: exactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref := writer.Ref{Project: args[0], Idea: args[1], Experiment: args[2]}
		w := newWriter()
		art, err := w.AttachArtifact(ref, args[3])
		if err != nil {
			return err
		}
		exp, err := w.Resolve(ref)
		if err != nil {
			return err
		}
		warnings := afterWrite("Attach "+filepath.Base(art.Path)+" to "+ref.String(), art.Path)

		out := artifactJSON{
			Experiment: toEntityJSON(exp),
			Path:       paths.Rel(sess.root, art.Path),
			Linked:     art.Linked,
			Target:     art.Target,
			Size:       art.Size,
		}
		finish(out, warnings, &Meta{Count: 1}, func() {
			if art.Linked {
				fmt.Fprintln(stdout, ui.Successf("Linked %s -> %s", ui.FilePath(out.Path), art.Target))
				return
			}
			fmt.Fprintln(stdout, ui.Successf("Copied %s", ui.FilePath(out.Path)))
		})
		return nil
	},
}

func init() {
	experimentNewCmd.Flags().StringVar(&experimentTags, "tags", "", "Comma-separated tags")

	experimentCmd.AddCommand(experimentNewCmd)
	experimentCmd.AddCommand(experimentAttachCmd)
	rootCmd.AddCommand(experimentCmd)
}
