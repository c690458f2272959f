package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/claco/shmod/internal/core"
	"github.com/claco/shmod/internal/repository"
)

func init() {
	repoCmd.AddCommand(repoInitCmd)
	repoCmd.AddCommand(repoListCmd)
	rootCmd.AddCommand(repoCmd)
}

var repoCmd = &cobra.Command{
	Use:   "repo",
	Short: "Manage the local package repository",
}

var repoInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Bootstrap the local package repository",
	Long: `Creates the repository directory, the packages subdirectory, and the
sqlite index under ~/.shmod/repo. Safe to run repeatedly.`,
	Args: cobra.NoArgs,
	RunE: runRepoInit,
}

var repoListCmd = &cobra.Command{
	Use:   "list [name]",
	Short: "List published packages",
	Long: `Lists every published package, newest version first within each name.
With a name argument, lists every published version of that package.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRepoList,
}

func runRepoInit(cmd *cobra.Command, args []string) error {
	dc := newDiagContext(cmd)
	defer dc.close()

	repo, err := repository.Bootstrap(core.RepoDir(), logger)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "repository ready at %s\n", repo.Root())
	return nil
}

func runRepoList(cmd *cobra.Command, args []string) error {
	dc := newDiagContext(cmd)
	defer dc.close()

	repo, err := repository.Bootstrap(core.RepoDir(), logger)
	if err != nil {
		return err
	}

	var packages []repository.Package
	if len(args) == 1 {
		packages, err = repo.Versions(args[0])
	} else {
		packages, err = repo.List()
	}
	if err != nil {
		return err
	}
	if len(packages) == 0 {
		if len(args) == 1 {
			fmt.Fprintf(cmd.OutOrStdout(), "no versions published for %s\n", args[0])
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), "no packages published")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tVERSION\tSIZE\tPUBLISHED")
	for _, pkg := range packages {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			pkg.Name,
			pkg.Version,
			humanize.Bytes(uint64(pkg.SizeBytes)),
			humanize.Time(pkg.CreatedAt),
		)
	}
	return w.Flush()
}
