package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/claco/shmod/internal/appupdate"
	"github.com/claco/shmod/internal/filesystem"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), buildVersion)

		// A newer release recorded by the background update check.
		latest := appupdate.ReadLatestVersion(filesystem.DefaultFileSystem{})
		if latest != "" && latest != buildVersion {
			fmt.Fprintf(cmd.OutOrStdout(), "new version available: %s (run \"shmod upgrade\")\n", latest)
		}
	},
}
