package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/labnotes/internal/model"
	"github.com/aidanlsb/labnotes/internal/ui"
	"github.com/aidanlsb/labnotes/internal/writer"
)

var statusSet string

type statusJSON struct {
	Entity    entityJSON `json:"entity"`
	Previous  string     `json:"previous,omitempty"`
	Status    string     `json:"status"`
	Allowed   []string   `json:"allowed"`
	Changed   bool       `json:"changed"`
	Validated bool       `json:"validated,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status <project> [idea] [experiment]",
	Short: "Show or update the status of a project, idea or experiment",
	Long: `Shows the status of the referenced entity, or sets it with --set.

The number of titles picks the level: one names a project, two an idea, three
an experiment. Setting an idea's status also updates validation.md: its
validated timestamp is set for validated and rejected and cleared otherwise.

Allowed statuses:
  project:     ` + joinAllowed(model.Statuses(model.KindProject)) + `
  idea:        ` + joinAllowed(model.Statuses(model.KindIdea)) + `
  experiment:  ` + joinAllowed(model.Statuses(model.KindExperiment)) + `

Examples:
  lab status "Neural Radiance Fields" --set on-hold
  lab status "Neural Radiance Fields" "Sparse voxel grids" --set validated`,
	Args: rangeArgs(1, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref := writer.Ref{Project: args[0]}
		if len(args) > 1 {
			ref.Idea = args[1]
		}
		if len(args) > 2 {
			ref.Experiment = args[2]
		}
		w := newWriter()

		if strings.TrimSpace(statusSet) == "" {
			e, err := w.Resolve(ref)
			if err != nil {
				return err
			}
			out := statusJSON{
				Entity:  toEntityJSON(e),
				Status:  e.Status(),
				Allowed: model.Statuses(e.Kind),
			}
			finish(out, nil, &Meta{Count: 1}, func() {
				fmt.Fprintf(stdout, "%s: %s\n", e.Location(), orDash(out.Status))
				fmt.Fprintln(stdout, ui.Hint("allowed: "+joinAllowed(out.Allowed)))
			})
			return nil
		}

		res, err := w.UpdateStatus(ref, statusSet)
		if err != nil {
			return err
		}
		msg := fmt.Sprintf("Set %s status to %s", res.Entity.Location(), res.Status)
		warnings := afterWrite(msg, resultFiles(&res.Result)...)

		out := statusJSON{
			Entity:    toEntityJSON(res.Entity),
			Previous:  res.Previous,
			Status:    res.Status,
			Allowed:   model.Statuses(res.Entity.Kind),
			Changed:   true,
			Validated: res.Validated,
		}
		finish(out, warnings, &Meta{Count: 1}, func() {
			fmt.Fprintln(stdout, ui.Successf("%s: %s -> %s", res.Entity.Location(), orDash(res.Previous), res.Status))
			if res.Entity.Kind == model.KindIdea {
				fmt.Fprintln(stdout, "  "+ui.Hint("validation.md updated"))
			}
		})
		return nil
	},
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	statusCmd.Flags().StringVar(&statusSet, "set", "", "New status")
	rootCmd.AddCommand(statusCmd)
}
