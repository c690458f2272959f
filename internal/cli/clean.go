package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/claco/shmod/pkg/diag"
)

var (
	cleanDryRun bool
	cleanYes    bool
)

func init() {
	cleanCmd.Flags().BoolVar(&cleanDryRun, "dry-run", false, "show what would be removed without removing anything")
	cleanCmd.Flags().BoolVar(&cleanYes, "yes", false, "skip the confirmation prompt")
	rootCmd.AddCommand(cleanCmd)
}

var cleanCmd = &cobra.Command{
	Use:   "clean [dir]",
	Short: "Remove build artifacts from the module's dist directory",
	Long: `Removes everything under dist/ in the module directory.

--dry-run lists the files that would be removed and makes no changes;
it always wins over --yes. Without --yes the command prompts before
removing, and refuses to proceed when stdin is not a terminal.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClean,
}

func runClean(cmd *cobra.Command, args []string) error {
	dc := newDiagContext(cmd)
	defer dc.close()

	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	distDir := filepath.Join(dir, "dist")

	targets, err := collectArtifacts(distDir)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(targets) == 0 {
		fmt.Fprintln(out, "nothing to clean")
		return nil
	}

	if cleanDryRun {
		for _, target := range targets {
			fmt.Fprintf(out, "would remove %s\n", target)
		}
		return nil
	}

	if !cleanYes {
		ok, err := confirm(cmd.InOrStdin(), out, fmt.Sprintf("remove %d files under %s?", len(targets), distDir))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "aborted")
			return nil
		}
	}

	removed := 0
	for _, target := range targets {
		if err := os.Remove(target); err != nil {
			// A single stubborn file degrades to a warning; the rest of
			// the cleanup still runs.
			if reportErr := dc.reporter.Report(diag.NewFault(err)); reportErr != nil {
				return reportErr
			}
			continue
		}
		removed++
		if dc.verbose() {
			fmt.Fprintf(out, "removed %s\n", target)
		}
	}

	fmt.Fprintf(out, "removed %d files\n", removed)
	return nil
}

// collectArtifacts returns the files under distDir, deepest first so files
// are removed before their parent directories.
func collectArtifacts(distDir string) ([]string, error) {
	if _, err := os.Stat(distDir); os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	var targets []string
	err := filepath.Walk(distDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == distDir {
			return nil
		}
		targets = append(targets, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(targets, func(i, j int) bool {
		return len(targets[i]) > len(targets[j])
	})
	return targets, nil
}
