package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/labnotes/internal/config"
	"github.com/aidanlsb/labnotes/internal/gitrepo"
	"github.com/aidanlsb/labnotes/internal/scaffold"
	"github.com/aidanlsb/labnotes/internal/ui"
)

var (
	initForce bool
	initGit   bool
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create a research notes root",
	Long: `Creates a research notes root at path (default: --root, then
$RESEARCH_NOTES_ROOT, then ~/research-notes).

Creates:
  - projects/     (one directory per project)
  - index.md      (new projects are listed here)
  - tags.md
  - config.yaml   (marks the root; notion, database, storage and git settings)
  - templates/    (body templates for new projects, ideas and experiments)

Existing files are kept unless --force is given. Projects are never touched.`,
	Args: rangeArgs(0, 1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := initTarget(args)
		if err != nil {
			return err
		}

		res, err := scaffold.Init(root, scaffold.Options{Force: initForce, Now: now()})
		if err != nil {
			return err
		}

		type initJSON struct {
			*scaffold.Result
			Commit string `json:"commit,omitempty"`
		}
		out := initJSON{Result: res}
		var warnings []Warning

		if initGit {
			hash, err := gitrepo.Init(res.Root, gitIgnorePatterns(res.Root), now())
			switch {
			case errors.Is(err, gitrepo.ErrAlreadyInitialized):
				warnings = append(warnings, Warning{Code: ErrGitError, Message: "git repository already initialized"})
			case err != nil:
				return withCode(ErrGitError, err, "")
			default:
				out.Commit = hash.String()
			}
		}

		finish(out, warnings, nil, func() {
			fmt.Fprintf(stdout, "Initializing research notes at: %s\n", ui.FilePath(res.Root))
			for _, p := range res.Created {
				fmt.Fprintln(stdout, ui.Successf("Created %s", p))
			}
			for _, p := range res.Kept {
				fmt.Fprintf(stdout, "• %s already exists (kept)\n", p)
			}
			if out.Commit != "" {
				fmt.Fprintln(stdout, ui.Successf("Initialized git repository on %s (%s)", gitrepo.DefaultBranch, out.Commit[:7]))
			}
			fmt.Fprintln(stdout)
			if res.Existing() {
				fmt.Fprintln(stdout, "Existing root detected. Use --force to regenerate its files.")
			}
			fmt.Fprintln(stdout, "Next steps:")
			fmt.Fprintln(stdout, "  1. Create a project: lab project new \"<title>\"")
			fmt.Fprintln(stdout, "  2. Add ideas: lab idea new \"<project>\" \"<title>\"")
			fmt.Fprintln(stdout, "  3. Create experiments: lab experiment new \"<project>\" \"<idea>\" \"<title>\"")
		})
		return nil
	},
}

// initTarget picks the directory to initialize. Unlike other commands the
// directory may not exist yet.
func initTarget(args []string) (string, error) {
	switch {
	case len(args) == 1:
		return args[0], nil
	case rootFlag != "":
		return rootFlag, nil
	case os.Getenv(config.RootEnvVar) != "":
		return os.Getenv(config.RootEnvVar), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, config.DefaultRootName), nil
}

// gitIgnorePatterns keeps the sqlite mirror and its backups out of git.
func gitIgnorePatterns(root string) []string {
	ws, err := config.LoadWorkspace(root)
	if err != nil {
		ws = config.DefaultWorkspace()
	}
	db := ws.DatabasePath(root)
	rel, err := filepath.Rel(root, db)
	if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		rel = filepath.ToSlash(rel)
		return []string{rel, rel + "-wal", rel + "-shm", rel + ".bak", rel + ".lock"}
	}
	return nil
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Rewrite generated files of an existing root")
	initCmd.Flags().BoolVar(&initGit, "git", false, "Initialize a git repository and commit the new root")
	rootCmd.AddCommand(initCmd)
}
