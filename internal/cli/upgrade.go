package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/claco/shmod/internal/appupdate"
)

var upgradeMajor bool

func init() {
	upgradeCmd.Flags().BoolVar(&upgradeMajor, "major", false, "allow upgrading across a major version boundary")
	rootCmd.AddCommand(upgradeCmd)
}

var upgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Upgrade shmod to the latest release",
	Args:  cobra.NoArgs,
	RunE:  runUpgrade,
}

func runUpgrade(cmd *cobra.Command, args []string) error {
	dc := newDiagContext(cmd)
	defer dc.close()

	version, err := appupdate.Upgrade(cmd.Context(), buildVersion, logger, appupdate.DefaultUpdater{}, upgradeMajor)
	if err != nil {
		return err
	}
	if version == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "already up to date")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "upgraded to %s\n", version)
	return nil
}
