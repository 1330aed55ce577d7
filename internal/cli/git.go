package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/labnotes/internal/gitrepo"
	"github.com/aidanlsb/labnotes/internal/ui"
)

var gitMessage string

type commitJSON struct {
	Commit  string `json:"commit,omitempty"`
	Message string `json:"message,omitempty"`
	Clean   bool   `json:"clean,omitempty"`
}

var gitCmd = &cobra.Command{
	Use:   "git",
	Short: "Version the notes root with git",
	Long: `Version control for the notes root. No git binary is needed.

Set git.auto_commit in config.yaml to commit after every write command.`,
}

var gitInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a repository and commit the notes",
	Args:  exactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := gitrepo.Init(sess.root, gitIgnorePatterns(sess.root), now())
		if errors.Is(err, gitrepo.ErrAlreadyInitialized) {
			return withCode(ErrGitError, err, "Use 'lab git commit' to record changes")
		}
		if err != nil {
			return withCode(ErrGitError, err, "")
		}

		out := commitJSON{Commit: hash.String(), Message: gitrepo.InitialMessage}
		finish(out, nil, &Meta{Count: 1}, func() {
			fmt.Fprintln(stdout, ui.Successf("Initialized git repository on %s", gitrepo.DefaultBranch))
			fmt.Fprintf(stdout, "  %s %s\n", ui.Muted.Render(out.Commit[:7]), out.Message)
		})
		return nil
	},
}

var gitCommitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Commit every change under the notes root",
	Args:  exactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		msg := strings.TrimSpace(gitMessage)
		if msg == "" {
			msg = "Update notes"
		}
		msg = gitrepo.CommitMessage(sess.workspace.Git.CommitMessagePrefix, msg)

		hash, err := gitrepo.CommitAll(sess.root, msg, now())
		if errors.Is(err, gitrepo.ErrNothingToCommit) {
			finish(commitJSON{Clean: true}, nil, &Meta{Count: 0}, func() {
				fmt.Fprintln(stdout, ui.Hint("Nothing to commit"))
			})
			return nil
		}
		if err != nil {
			if errors.Is(err, gitrepo.ErrNotRepository) {
				return err
			}
			return withCode(ErrGitError, err, "")
		}

		out := commitJSON{Commit: hash.String(), Message: msg}
		finish(out, nil, &Meta{Count: 1}, func() {
			fmt.Fprintln(stdout, ui.Successf("Committed %s %s", ui.Muted.Render(out.Commit[:7]), msg))
		})
		return nil
	},
}

func init() {
	gitCommitCmd.Flags().StringVarP(&gitMessage, "message", "m", "", "Commit message (prefixed with git.commit_message_prefix)")

	gitCmd.AddCommand(gitInitCmd)
	gitCmd.AddCommand(gitCommitCmd)
	rootCmd.AddCommand(gitCmd)
}
