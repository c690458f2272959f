// Package testrun discovers and executes a module's shell test scripts,
// each in its own interpreter with the assert-match builtin installed.
package testrun

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/claco/shmod/internal/manifest"
	"github.com/claco/shmod/internal/shell"
	"github.com/claco/shmod/pkg/diag"
)

// Result is the outcome of one test script.
type Result struct {
	Script string
	Passed bool
	Output string
	Err    error
}

// Summary aggregates the results of a test run.
type Summary struct {
	Results []Result
}

// Passed returns the number of passing scripts.
func (s *Summary) Passed() int {
	return lo.CountBy(s.Results, func(r Result) bool { return r.Passed })
}

// Failed returns the number of failing scripts.
func (s *Summary) Failed() int {
	return len(s.Results) - s.Passed()
}

// OK reports whether every script passed.
func (s *Summary) OK() bool {
	return s.Failed() == 0
}

// Runner executes a module's test scripts.
type Runner struct {
	logger   *zap.Logger
	resolver *diag.Resolver
	out      io.Writer
}

// NewRunner creates a test runner. Narration is written to out when the
// verbose channel resolves active for the invocation.
func NewRunner(logger *zap.Logger, resolver *diag.Resolver, out io.Writer) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if resolver == nil {
		resolver = diag.NewResolver(logger)
	}
	if out == nil {
		out = os.Stdout
	}
	return &Runner{
		logger:   logger,
		resolver: resolver,
		out:      out,
	}
}

// Run executes every *_test.sh under the module's test directory, in name
// order. Each script runs in a fresh interpreter whose working directory is
// the module root, with SHMOD_MODULE_DIR exported and the assert-match
// builtin installed. A script passes when it exits zero.
func (r *Runner) Run(ctx context.Context, moduleDir string, m *manifest.Manifest) (*Summary, error) {
	testsDir := m.TestsPath(moduleDir)
	scripts, err := filepath.Glob(filepath.Join(testsDir, "*_test.sh"))
	if err != nil {
		return nil, err
	}
	if len(scripts) == 0 {
		return nil, fmt.Errorf("no test scripts found under %s", testsDir)
	}
	sort.Strings(scripts)

	verbose := r.resolver.Resolve(diag.Verbose) == diag.Active

	summary := &Summary{}
	for _, script := range scripts {
		if verbose {
			fmt.Fprintf(r.out, "running %s\n", filepath.Base(script))
		}

		result := r.runScript(ctx, moduleDir, script)
		summary.Results = append(summary.Results, result)

		r.logger.Info("test script finished",
			zap.String("script", script),
			zap.Bool("passed", result.Passed),
		)
	}

	return summary, nil
}

func (r *Runner) runScript(ctx context.Context, moduleDir string, script string) Result {
	var output shell.CaptureBuffer

	runner, err := shell.NewRunner(
		nil, &output, &output,
		[]string{"SHMOD_MODULE_DIR=" + moduleDir},
		NewAssertCommandHandler(),
	)
	if err != nil {
		return Result{Script: script, Err: err}
	}

	err = shell.RunScriptFromFile(ctx, runner, script)
	return Result{
		Script: script,
		Passed: err == nil,
		Output: output.String(),
		Err:    err,
	}
}
