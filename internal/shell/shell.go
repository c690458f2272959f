// Package shell wraps mvdan.cc/sh to parse and execute POSIX shell scripts
// on behalf of the test runner and the example commands.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// NewRunner creates an interpreter runner with the given stdio and exec
// handler middlewares. Handlers run before command lookup, so builtin-style
// commands (like the test runner's assert handler) can intercept their own
// names and delegate everything else to the next handler.
func NewRunner(stdin io.Reader, stdout, stderr io.Writer, extraEnv []string, handlers ...func(interp.ExecHandlerFunc) interp.ExecHandlerFunc) (*interp.Runner, error) {
	env := expand.ListEnviron(append(os.Environ(), extraEnv...)...)

	opts := []interp.RunnerOption{
		interp.Env(env),
		interp.StdIO(stdin, stdout, stderr),
	}
	if len(handlers) > 0 {
		opts = append(opts, interp.ExecHandlers(handlers...))
	}

	return interp.New(opts...)
}

// RunScriptFromReader parses and runs a shell script from an io.Reader.
// The script is executed in the provided runner (not a subshell).
func RunScriptFromReader(ctx context.Context, runner *interp.Runner, reader io.Reader, name string) error {
	prog, err := syntax.NewParser().Parse(reader, name)
	if err != nil {
		return err
	}
	return runner.Run(ctx, prog)
}

// RunScriptFromFile parses and runs a shell script from a file.
// The script is executed in the provided runner (not a subshell).
func RunScriptFromFile(ctx context.Context, runner *interp.Runner, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer f.Close()
	return RunScriptFromReader(ctx, runner, f, filePath)
}

// RunCommandInSubshell runs a command in a subshell and captures stdout and
// stderr. Returns stdout, stderr, exit code, and any execution error.
// A non-zero exit code is NOT treated as an error - check it separately.
func RunCommandInSubshell(ctx context.Context, runner *interp.Runner, command string) (string, string, int, error) {
	subshell := runner.Subshell()

	outBuf := &CaptureBuffer{}
	errBuf := &CaptureBuffer{}
	interp.StdIO(nil, outBuf, errBuf)(subshell) //nolint:errcheck

	var prog *syntax.Stmt
	err := syntax.NewParser().Stmts(strings.NewReader(command), func(stmt *syntax.Stmt) bool {
		prog = stmt
		return false
	})
	if err != nil {
		return "", "", 1, fmt.Errorf("failed to parse command: %w", err)
	}

	if prog == nil {
		// Empty command
		return "", "", 0, nil
	}

	err = subshell.Run(ctx, prog)

	if err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			// Non-zero exit code is not an execution error
			return outBuf.String(), errBuf.String(), int(exitStatus), nil
		}
		return outBuf.String(), errBuf.String(), 1, err
	}

	return outBuf.String(), errBuf.String(), 0, nil
}

// ExitCode extracts the exit status from a runner error. Returns 0 for nil
// errors and 1 for errors that carry no explicit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitStatus interp.ExitStatus
	if errors.As(err, &exitStatus) {
		return int(exitStatus)
	}
	return 1
}
