package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/labnotes/internal/buildinfo"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version and build information",
	Args:  exactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		info := buildinfo.Current()

		finish(info, nil, nil, func() {
			fmt.Fprintf(stdout, "lab %s\n", info.Version)
			fmt.Fprintf(stdout, "module: %s\n", info.ModulePath)
			if info.Commit != "" {
				fmt.Fprintf(stdout, "commit: %s\n", info.Commit)
			}
			if info.CommitTime != "" {
				fmt.Fprintf(stdout, "commit_time: %s\n", info.CommitTime)
			}
			fmt.Fprintf(stdout, "go: %s\n", info.GoVersion)
			fmt.Fprintf(stdout, "platform: %s/%s\n", info.GOOS, info.GOARCH)
			fmt.Fprintf(stdout, "modified: %t\n", info.Modified)
		})
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
