package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aidanlsb/labnotes/internal/paths"
	"github.com/aidanlsb/labnotes/internal/ui"
	"github.com/aidanlsb/labnotes/internal/watcher"
)

var watchNoRebuild bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the SQLite mirror current while notes are edited",
	Long: `Watches projects/ and refreshes the mirror row of every project.md,
idea.md and experiment.md that changes, including files edited outside lab.

The watcher:
- Rebuilds the mirror once at startup (skip with --no-rebuild)
- Debounces rapid changes (waits 100ms after the last change)
- Ignores artifacts/ and hidden directories
- Runs in the foreground until interrupted`,
	Args: exactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openIndex()
		if err != nil {
			return err
		}
		defer db.Close()

		if !watchNoRebuild {
			n, err := db.Rebuild(sess.vault)
			if err != nil {
				return err
			}
			sess.log.Debug("initial rebuild", zap.Int("entities", n))
		}

		w, err := watcher.New(watcher.Config{
			Vault:    sess.vault,
			Database: db,
			Logger:   sess.log,
			OnReindex: func(path string, err error) {
				rel := paths.Rel(sess.root, path)
				if err != nil {
					fmt.Fprintln(stderr, ui.Warningf("failed to reindex %s: %v", rel, err))
					return
				}
				if !jsonOutput {
					fmt.Fprintln(stdout, ui.Hint("reindexed "+rel))
				}
			},
		})
		if err != nil {
			return err
		}

		if !jsonOutput {
			fmt.Fprintf(stdout, "Watching %s\n", ui.FilePath(sess.vault.ProjectsDir()))
			fmt.Fprintln(stdout, ui.Hint("Press Ctrl+C to stop"))
		}
		if err := w.Start(cmd.Context()); err != nil {
			return err
		}
		finish(map[string]string{"database": paths.Rel(sess.root, db.Path())}, nil, nil, func() {
			fmt.Fprintln(stdout, "\nStopped watching.")
		})
		return nil
	},
}

func init() {
	watchCmd.Flags().BoolVar(&watchNoRebuild, "no-rebuild", false, "Skip the rebuild at startup")
	rootCmd.AddCommand(watchCmd)
}
