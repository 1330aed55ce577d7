// Package cli implements the command-line interface.
package cli

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aidanlsb/labnotes/internal/config"
	"github.com/aidanlsb/labnotes/internal/logging"
	"github.com/aidanlsb/labnotes/internal/ui"
	"github.com/aidanlsb/labnotes/internal/vault"
)

var (
	// Global flags
	rootFlag   string
	configPath string
	verbose    bool

	// Resolved per invocation
	sess *session

	// now is the clock used for every timestamp a command writes.
	now = time.Now
)

// session is what a command needs once the root has been resolved.
type session struct {
	root      string
	global    *config.Config
	workspace *config.Workspace
	vault     *vault.Vault
	log       *zap.Logger
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "lab",
	Short: "Research notes: projects, ideas and experiments in Markdown",
	Long: `lab manages a tree of research notes stored as Markdown files with YAML
front-matter: Projects contain Ideas, Ideas contain Experiments.

The files are the database. Every query re-reads them, and every update
rewrites a single front-matter field in place.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		global, err := loadGlobalConfig()
		if err != nil {
			return withCode(ErrConfigInvalid, err, "Fix or remove "+config.DefaultPath())
		}
		ui.ConfigureTheme(global.UI.Accent)
		ui.ConfigureMarkdownCodeTheme(global.UI.CodeTheme)
		logger := logging.New(verbose, stderr)

		sess = &session{global: global, log: logger}
		if skipsRoot(cmd) {
			return nil
		}

		root, err := config.ResolveRoot(config.RootOptions{Flag: rootFlag, Global: global})
		if err != nil {
			return err
		}
		ws, err := config.LoadWorkspace(root)
		if err != nil {
			return withCode(ErrConfigInvalid, err, "Check "+config.EnvPrefix+"* variables and config.yaml")
		}
		sess.root = root
		sess.workspace = ws
		sess.vault = vault.New(root, logger)
		logger.Debug("resolved root", zap.String("root", root))
		return nil
	},
}

// skipsRoot reports whether cmd runs without a notes root.
func skipsRoot(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "init", "version", "help", "completion":
			// "lab git init" still needs the root.
			if c.Name() == "init" && c.Parent() != nil && c.Parent().HasParent() {
				return false
			}
			return true
		}
	}
	return false
}

// Execute runs the CLI. Errors have already been reported when it returns.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		reportError(err)
	}
	if sess != nil && sess.log != nil {
		_ = sess.log.Sync()
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", "", "Path to the research notes root")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the global config file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (for agent/script use)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug diagnostics to stderr")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return withCode(ErrValidationFailed, err, "See 'lab "+commandPath(cmd)+" --help'")
	})
}

func loadGlobalConfig() (*config.Config, error) {
	if strings.TrimSpace(configPath) != "" {
		return config.LoadFrom(configPath)
	}
	return config.Load()
}

// commandPath is cmd's path without the binary name.
func commandPath(cmd *cobra.Command) string {
	return strings.TrimSpace(strings.TrimPrefix(cmd.CommandPath(), cmd.Root().Name()))
}

// exactArgs is cobra.ExactArgs with the error classified as a validation
// failure.
func exactArgs(n int) cobra.PositionalArgs {
	return wrapArgs(cobra.ExactArgs(n))
}

func rangeArgs(min, max int) cobra.PositionalArgs {
	return wrapArgs(cobra.RangeArgs(min, max))
}

func wrapArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return withCode(ErrValidationFailed, err, "Usage: lab "+cmd.Use)
		}
		return nil
	}
}
