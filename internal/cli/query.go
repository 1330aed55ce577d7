package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/labnotes/internal/model"
	"github.com/aidanlsb/labnotes/internal/query"
	"github.com/aidanlsb/labnotes/internal/ui"
)

var (
	queryScope model.Scope
	recentDays int
)

type matchJSON struct {
	entityJSON
	Context   string          `json:"context,omitempty"`
	Lines     []lineMatchJSON `json:"lines,omitempty"`
	LineCount int             `json:"line_count,omitempty"`
}

type lineMatchJSON struct {
	Line int    `json:"line"`
	Text string `json:"text"`
}

type queryJSON struct {
	Query   string      `json:"query,omitempty"`
	Scope   model.Scope `json:"scope,omitempty"`
	Matches []matchJSON `json:"matches"`
	Total   int         `json:"total"`
}

var byStatusCmd = &cobra.Command{
	Use:   "by-status <status>",
	Short: "List entities with a status",
	Long: `Lists every entity in scope whose status matches (case-insensitive).

A kind whose statuses do not include the value is skipped with a notice, so
"lab by-status validated" lists ideas only.

Examples:
  lab by-status active --scope projects
  lab by-status planned`,
	Args: exactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := query.ByStatus(sess.vault, args[0], queryScope)
		if err != nil {
			return err
		}
		printQuery(args[0], res, fmt.Sprintf("No entities with status '%s'", args[0]))
		return nil
	},
}

var byTagCmd = &cobra.Command{
	Use:   "by-tag <tag>",
	Short: "List entities carrying a tag",
	Args:  exactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := query.ByTag(sess.vault, args[0], queryScope)
		if err != nil {
			return err
		}
		printQuery(args[0], res, fmt.Sprintf("No entities tagged '%s'", args[0]))
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the metadata files of ideas and experiments",
	Long: `Searches every line of idea.md and experiment.md for the query
(case-insensitive). Up to 3 matching lines are shown per file, together with
the file's match count. The scope is ideas, experiments or all.`,
	Args: exactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := query.Search(sess.vault, args[0], queryScope)
		if err != nil {
			return err
		}

		out := toQueryJSON(args[0], res)
		finish(out, skipWarnings(res), &Meta{Count: len(res.Matches)}, func() {
			if len(res.Matches) == 0 {
				fmt.Fprintln(stdout, ui.Hint(fmt.Sprintf("No matches for '%s'", args[0])))
				return
			}
			for _, m := range res.Matches {
				fmt.Fprintf(stdout, "%s %s\n", ui.Bold.Render(m.Entity.Title()), ui.Hint("("+parentContext(m.Entity)+")"))
				fmt.Fprintln(stdout, "  "+ui.FilePath(m.Entity.RelPath))
				list := ui.NewList()
				list.SetIndent("  ")
				for _, l := range m.Lines {
					list.Add(fmt.Sprintf("%s %s", ui.Muted.Render(strconv.Itoa(l.Line)+":"), l.Text))
				}
				fmt.Fprint(stdout, list.String())
				if m.LineCount > len(m.Lines) {
					fmt.Fprintln(stdout, "  "+ui.Hint(fmt.Sprintf("... %d more", m.LineCount-len(m.Lines))))
				}
				fmt.Fprintln(stdout)
			}
			fmt.Fprintln(stdout, ui.Hint(fmt.Sprintf("%s in %s",
				ui.Count(res.Total, "match", "matches"), ui.Count(len(res.Matches), "file", "files"))))
		})
		return nil
	},
}

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List entities updated recently",
	Long: `Lists projects, ideas and experiments whose updated timestamp falls within
the last --days days, newest first.`,
	Args: exactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := query.Recent(sess.vault, recentDays, now())
		if err != nil {
			return err
		}
		printQuery("", res, fmt.Sprintf("Nothing updated in the last %d days", recentDays))
		return nil
	},
}

// printQuery renders list-style results: a table in text mode, matches with
// parent context in JSON.
func printQuery(q string, res *query.Result, empty string) {
	out := toQueryJSON(q, res)
	finish(out, skipWarnings(res), &Meta{Count: res.Total}, func() {
		if len(res.Matches) == 0 {
			fmt.Fprintln(stdout, ui.Hint(empty))
			return
		}
		t := ui.NewResultsTable(ui.NewDisplayContext(), ui.QueryLayout)
		for i, m := range res.Matches {
			meta := string(m.Entity.Kind)
			if st := m.Entity.Status(); st != "" {
				meta += " · " + st
			}
			if ctx := parentContext(m.Entity); ctx != "" {
				meta += " · " + ctx
			}
			if !m.Updated.IsZero() {
				meta += " · " + m.Updated.Local().Format(time.DateTime)
			}
			t.AddRow(ui.ResultRow{Cells: []string{strconv.Itoa(i + 1), m.Entity.Title(), meta, m.Entity.RelPath}})
		}
		fmt.Fprint(stdout, t.Render())
		fmt.Fprintln(stdout, ui.Hint(ui.Count(res.Total, "match", "matches")))
	})
}

func toQueryJSON(q string, res *query.Result) queryJSON {
	out := queryJSON{Query: q, Matches: []matchJSON{}, Total: res.Total}
	if queryScope != "" {
		out.Scope = queryScope
	}
	for _, m := range res.Matches {
		mj := matchJSON{
			entityJSON: toEntityJSON(m.Entity),
			Context:    parentContext(m.Entity),
			LineCount:  m.LineCount,
		}
		for _, l := range m.Lines {
			mj.Lines = append(mj.Lines, lineMatchJSON{Line: l.Line, Text: l.Text})
		}
		out.Matches = append(out.Matches, mj)
	}
	return out
}

// skipWarnings reports kinds a query left out.
func skipWarnings(res *query.Result) []Warning {
	var warnings []Warning
	for _, s := range res.Skipped {
		warnings = append(warnings, Warning{Code: WarnSkippedKind, Message: s.Reason, Ref: s.Kind.Plural()})
	}
	return warnings
}

func init() {
	for _, c := range []*cobra.Command{byStatusCmd, byTagCmd, searchCmd} {
		c.Flags().Var(&queryScope, "scope", "Kinds to query (projects|ideas|experiments|all)")
		rootCmd.AddCommand(c)
	}
	recentCmd.Flags().IntVar(&recentDays, "days", query.DefaultRecentDays, "Window in days")
	rootCmd.AddCommand(recentCmd)
}
