package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/claco/shmod/internal/core"
	"github.com/claco/shmod/internal/manifest"
	"github.com/claco/shmod/internal/repository"
)

var (
	publishDryRun bool
	publishForce  bool
)

func init() {
	publishCmd.Flags().BoolVar(&publishDryRun, "dry-run", false, "show what would be published without writing anything")
	publishCmd.Flags().BoolVar(&publishForce, "force", false, "allow republishing an existing or older version")
	rootCmd.AddCommand(publishCmd)
}

var publishCmd = &cobra.Command{
	Use:   "publish [dir]",
	Short: "Package the module and record it in the local repository",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPublish,
}

func runPublish(cmd *cobra.Command, args []string) error {
	dc := newDiagContext(cmd)
	defer dc.close()

	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	m, err := manifest.Load(dir)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if publishDryRun {
		fmt.Fprintf(out, "would publish %s %s to %s\n", m.Name, m.Version, core.RepoDir())
		return nil
	}

	repo, err := repository.Bootstrap(core.RepoDir(), logger)
	if err != nil {
		return err
	}

	if dc.verbose() {
		fmt.Fprintf(out, "packaging %s %s from %s\n", m.Name, m.Version, dir)
	}

	pkg, err := repo.Publish(dir, m, publishForce)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "published %s %s (%s)\n", pkg.Name, pkg.Version, humanize.Bytes(uint64(pkg.SizeBytes)))
	return nil
}
