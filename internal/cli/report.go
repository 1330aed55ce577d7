package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aidanlsb/labnotes/internal/paths"
	"github.com/aidanlsb/labnotes/internal/report"
	"github.com/aidanlsb/labnotes/internal/ui"
)

var reportPrint bool

type reportJSON struct {
	*report.Report
	Rate float64 `json:"rate"`
	Path string  `json:"path"`
}

var reportCmd = &cobra.Command{
	Use:   "report <project>",
	Short: "Export the validation report of a project",
	Long: `Tallies the project's ideas by status, computes the validation rate and
collects the Validation Summary of every idea. The report is written to
validation-report-<project>.md at the root.

With --print the report is also shown, rendered when stdout is a terminal.`,
	Args: exactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rep, path, err := report.Export(sess.vault, args[0], now())
		if err != nil {
			return err
		}
		warnings := afterWrite("Export report: "+rep.ProjectTitle, path)

		out := reportJSON{Report: rep, Rate: rep.Counts.Rate(), Path: paths.Rel(sess.root, path)}
		finish(out, warnings, &Meta{Count: rep.Counts.Total}, func() {
			if reportPrint {
				printReport(rep)
			}
			fmt.Fprintln(stdout, ui.Successf("Report written to %s", ui.FilePath(out.Path)))
			c := rep.Counts
			fmt.Fprintln(stdout, "  "+ui.Hint(fmt.Sprintf("%d ideas: %d validated, %d rejected, %d in progress, %d planned (%.1f%% validated)",
				c.Total, c.Validated, c.Rejected, c.InProgress, c.Planned, c.Rate())))
		})
		return nil
	},
}

func printReport(rep *report.Report) {
	md := rep.Markdown()
	display := ui.NewDisplayContext()
	if !display.IsTTY {
		fmt.Fprintln(stdout, md)
		return
	}
	rendered, err := ui.RenderMarkdown(md, display.TermWidth)
	if err != nil {
		sess.log.Debug("markdown rendering failed", zap.Error(err))
		fmt.Fprintln(stdout, md)
		return
	}
	fmt.Fprint(stdout, rendered)
}

func init() {
	reportCmd.Flags().BoolVar(&reportPrint, "print", false, "Also print the report")
	rootCmd.AddCommand(reportCmd)
}
