package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/labnotes/internal/notion"
	"github.com/aidanlsb/labnotes/internal/ui"
)

var syncProject string

type syncJSON struct {
	DatabaseID string          `json:"database_id"`
	Properties []string        `json:"properties"`
	Records    []notion.Record `json:"records"`
	Planned    int             `json:"planned"`
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Show the records a Notion sync would push",
	Long: `Builds one Notion record per project, idea and experiment and prints the
sync plan. Nothing is sent over the network.

Requires notion.enabled, notion.token and notion.database_id in config.yaml.`,
	Args: exactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := sess.workspace.Notion
		if err := notion.CheckConfig(cfg); err != nil {
			return err
		}
		records, err := notion.Collect(sess.vault, strings.TrimSpace(syncProject))
		if err != nil {
			return err
		}
		if records == nil {
			records = []notion.Record{}
		}

		var client notion.Client = &notion.PlanPrinter{Out: stdout}
		if jsonOutput {
			client = &notion.PlanPrinter{Out: io.Discard}
		}
		n, err := client.Push(cmd.Context(), cfg.DatabaseID, records)
		if err != nil {
			return err
		}

		out := syncJSON{DatabaseID: cfg.DatabaseID, Properties: notion.Properties, Records: records, Planned: n}
		finish(out, nil, &Meta{Count: n}, func() {
			fmt.Fprintln(stdout, ui.Infof("%s planned, nothing was sent", ui.Count(n, "record", "records")))
		})
		return nil
	},
}

func init() {
	syncCmd.Flags().StringVar(&syncProject, "project", "", "Only sync this project and everything under it")
	rootCmd.AddCommand(syncCmd)
}
