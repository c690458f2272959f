package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/claco/shmod/internal/appupdate"
	"github.com/claco/shmod/internal/cli"
	"github.com/claco/shmod/internal/core"
	"github.com/claco/shmod/internal/environment"
	"github.com/claco/shmod/internal/filesystem"
	"github.com/claco/shmod/internal/styles"
)

var BUILD_VERSION = "dev"

func main() {
	logger, err := initializeLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync() // Flush any buffered log entries

	logger.Info("-------- new shmod run --------", zap.Any("args", os.Args))

	// Check for updates in background. The result lands in the
	// latest-version file; `shmod version` surfaces it on the next run.
	appupdate.CheckInBackground(
		BUILD_VERSION,
		logger,
		filesystem.DefaultFileSystem{},
		appupdate.DefaultUpdater{},
	)

	if err := cli.Execute(logger, BUILD_VERSION); err != nil {
		logger.Error("command failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, styles.ERROR("shmod: "+err.Error()))
		os.Exit(1)
	}
}

func initializeLogger() (*zap.Logger, error) {
	logLevel := environment.GetLogLevel()
	if BUILD_VERSION == "dev" {
		logLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	if environment.ShouldCleanLogFile() {
		os.Remove(core.LogFile())
	}

	// Logs go to a file so command output stays clean on stdout/stderr.
	// Use `tail -f ~/.shmod/shmod.log` to monitor a run.
	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Level = logLevel
	loggerConfig.OutputPaths = []string{
		core.LogFile(),
	}

	return loggerConfig.Build()
}
