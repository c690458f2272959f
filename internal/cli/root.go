// Package cli implements the shmod command surface.
package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	logger       = zap.NewNop()
	buildVersion = "dev"

	verboseFlag bool
	debugFlag   bool
)

var rootCmd = &cobra.Command{
	Use:           "shmod",
	Short:         "Author, test, lint, and publish shell script modules",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verboseFlag, "verbose", false, "narrate what commands are doing")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "emit debug traces")
}

// Execute runs the root command.
func Execute(log *zap.Logger, version string) error {
	if log != nil {
		logger = log
	}
	if version != "" {
		buildVersion = version
	}
	return rootCmd.Execute()
}
