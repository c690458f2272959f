package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/claco/shmod/internal/manifest"
	"github.com/claco/shmod/internal/styles"
	"github.com/claco/shmod/internal/testrun"
)

func init() {
	rootCmd.AddCommand(testCmd)
}

var testCmd = &cobra.Command{
	Use:   "test [dir]",
	Short: "Run the module's test scripts",
	Long: `Runs every *_test.sh under the module's test directory. Each script
executes in its own interpreter with SHMOD_MODULE_DIR exported and the
assert-match builtin available:

  assert-match PATTERN VALUE      succeed when VALUE contains PATTERN
  assert-match -r PATTERN VALUE   succeed when VALUE matches the regexp

A script passes when it exits zero.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTest,
}

func runTest(cmd *cobra.Command, args []string) error {
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

	runner := testrun.NewRunner(logger, dc.resolver, cmd.OutOrStdout())
	summary, err := runner.Run(cmd.Context(), dir, m)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, result := range summary.Results {
		name := filepath.Base(result.Script)
		if result.Passed {
			fmt.Fprintf(out, "%s %s\n", styles.SUCCESS("PASS"), name)
			continue
		}
		fmt.Fprintf(out, "%s %s\n", styles.ERROR("FAIL"), name)
		if output := strings.TrimSpace(result.Output); output != "" {
			fmt.Fprintln(out, indent(output, "    "))
		}
	}
	fmt.Fprintf(out, "%d passed, %d failed\n", summary.Passed(), summary.Failed())

	if !summary.OK() {
		logger.Warn("test run failed",
			zap.String("module", m.Name),
			zap.Int("failed", summary.Failed()),
		)
		return fmt.Errorf("%d of %d test scripts failed", summary.Failed(), len(summary.Results))
	}
	return nil
}

func indent(text string, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
