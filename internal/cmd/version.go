package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ceph/quay-pruner/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version information",
	Long:  `Display the version, commit, and build date of quay-pruner.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "quay-pruner %s\n", version.Version)
		fmt.Fprintf(out, "  commit: %s\n", version.Commit)
		fmt.Fprintf(out, "  built:  %s\n", version.Date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
