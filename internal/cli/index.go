package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aidanlsb/labnotes/internal/index"
	"github.com/aidanlsb/labnotes/internal/model"
	"github.com/aidanlsb/labnotes/internal/paths"
	"github.com/aidanlsb/labnotes/internal/ui"
)

type reindexJSON struct {
	Database string `json:"database"`
	Indexed  int    `json:"indexed"`
	BackedUp bool   `json:"backed_up"`
}

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the SQLite mirror from the notes tree",
	Long: `Walks every project, idea and experiment and rebuilds the SQLite mirror
at database.path (default .research-notes.db).

With database.auto_backup set, the previous database is copied to
<path>.bak first when the last copy is older than database.backup_interval
seconds. Queries always read the Markdown files; the mirror is for external
tools.`,
	Args: exactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws := sess.workspace
		db, err := openIndex()
		if err != nil {
			return err
		}
		defer db.Close()

		var warnings []Warning
		if !ws.Database.Enabled {
			warnings = append(warnings, Warning{
				Code:    WarnUnsupported,
				Message: "database.enabled is false, so write commands will not keep the mirror current",
			})
		}

		out := reindexJSON{Database: paths.Rel(sess.root, db.Path())}
		if ws.Database.AutoBackup {
			interval := time.Duration(ws.Database.BackupInterval) * time.Second
			took, err := db.Backup(interval, now())
			if err != nil {
				return withCode(ErrDatabaseError, err, "")
			}
			out.BackedUp = took
		}

		var spinner *ui.Spinner
		if !jsonOutput {
			spinner = ui.NewSpinner("Indexing notes")
			spinner.Start()
		}
		n, err := db.Rebuild(sess.vault)
		if spinner != nil {
			spinner.Stop()
		}
		if err != nil {
			return err
		}
		out.Indexed = n
		sess.log.Debug("reindexed", zap.Int("entities", n), zap.String("database", db.Path()))

		finish(out, warnings, &Meta{Count: n}, func() {
			if out.BackedUp {
				fmt.Fprintln(stdout, ui.Infof("Backed up to %s", ui.FilePath(paths.Rel(sess.root, db.BackupPath()))))
			}
			fmt.Fprintln(stdout, ui.Successf("Indexed %s into %s", ui.Count(n, "entity", "entities"), ui.FilePath(out.Database)))
		})
		return nil
	},
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Inspect the SQLite mirror",
}

var indexStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show entity counts by kind and status",
	Args:  exactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openIndex()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.Stats()
		if err != nil {
			return withCode(ErrDatabaseError, err, "Run 'lab reindex' to rebuild it")
		}

		finish(stats, nil, &Meta{Count: stats.Total}, func() {
			if stats.Total == 0 {
				fmt.Fprintln(stdout, ui.Hint("The index is empty. Run 'lab reindex' to build it."))
				return
			}
			t := ui.NewTable(3)
			t.SetHeader("KIND", "STATUS", "COUNT")
			for _, kind := range model.Kinds {
				if stats.ByKind[kind] == 0 {
					continue
				}
				t.AddRow(kind.Plural(), "", strconv.Itoa(stats.ByKind[kind]))
				for _, st := range stats.Statuses(kind) {
					name := st
					if name == "" {
						name = "(none)"
					}
					t.AddRow("", name, strconv.Itoa(stats.ByStatus[kind][st]))
				}
			}
			fmt.Fprint(stdout, t.String())
			fmt.Fprintln(stdout, ui.Hint(fmt.Sprintf("%s, last indexed %s",
				ui.Count(stats.Total, "entity", "entities"), stats.LastIndexed.Local().Format(time.DateTime))))
		})
		return nil
	},
}

var indexScope model.Scope

var indexListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the rows of the SQLite mirror",
	Long: `Lists the mirrored entities as the last reindex or write recorded them.
Use it to check what external tools reading the database will see.`,
	Args: exactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openIndex()
		if err != nil {
			return err
		}
		defer db.Close()

		scope := indexScope
		if scope == "" {
			scope = model.ScopeAll
		}
		rows, err := db.List(scope.Kinds())
		if err != nil {
			return withCode(ErrDatabaseError, err, "Run 'lab reindex' to rebuild it")
		}
		if rows == nil {
			rows = []index.Row{}
		}

		finish(rows, nil, &Meta{Count: len(rows)}, func() {
			if len(rows) == 0 {
				fmt.Fprintln(stdout, ui.Hint("No rows. Run 'lab reindex' to build the mirror."))
				return
			}
			t := ui.NewResultsTable(ui.NewDisplayContext(), ui.QueryLayout)
			for i, r := range rows {
				meta := string(r.Kind)
				if r.Status != "" {
					meta += " · " + r.Status
				}
				t.AddRow(ui.ResultRow{Cells: []string{strconv.Itoa(i + 1), r.Title, meta, r.Path}})
			}
			fmt.Fprint(stdout, t.Render())
			fmt.Fprintln(stdout, ui.Hint(ui.Count(len(rows), "row", "rows")))
		})
		return nil
	},
}

func init() {
	indexListCmd.Flags().Var(&indexScope, "scope", "Kinds to list (projects|ideas|experiments|all)")

	indexCmd.AddCommand(indexStatsCmd)
	indexCmd.AddCommand(indexListCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(reindexCmd)
}
