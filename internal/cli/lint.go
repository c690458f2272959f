package cli

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/claco/shmod/internal/lint"
	"github.com/claco/shmod/internal/styles"
)

var lintQuiet bool

func init() {
	lintCmd.Flags().BoolVar(&lintQuiet, "quiet", false, "report findings without failing the command")
	rootCmd.AddCommand(lintCmd)
}

var lintCmd = &cobra.Command{
	Use:   "lint [paths...]",
	Short: "Run static checks over shell sources",
	Long: `Parses every .sh file under the given paths (default: the current
directory) and reports parse errors plus style findings. Pass "-" to lint
a script streamed on stdin.`,
	RunE: runLint,
}

func runLint(cmd *cobra.Command, args []string) error {
	dc := newDiagContext(cmd)
	defer dc.close()

	linter := lint.New(logger)

	var findings []lint.Finding
	var err error

	if len(args) == 1 && args[0] == "-" {
		findings, err = linter.LintReader(cmd.InOrStdin(), "stdin")
	} else {
		paths := args
		if len(paths) == 0 {
			paths = []string{"."}
		}
		findings, err = linter.LintPaths(paths)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, finding := range findings {
		fmt.Fprintln(out, finding.String())
	}

	if dc.verbose() {
		files := lo.Uniq(lo.Map(findings, func(f lint.Finding, _ int) string { return f.File }))
		fmt.Fprintf(out, "%d findings in %d files\n", len(findings), len(files))
	}

	if len(findings) > 0 && !lintQuiet {
		return fmt.Errorf("%d lint findings", len(findings))
	}
	if len(findings) == 0 && dc.verbose() {
		fmt.Fprintln(out, styles.SUCCESS("no findings"))
	}
	return nil
}
