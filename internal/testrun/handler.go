package testrun

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"mvdan.cc/sh/v3/interp"
)

const assertCommandName = "assert-match"

// NewAssertCommandHandler returns an exec handler middleware implementing
// the assert-match builtin available inside test scripts:
//
//	assert-match PATTERN VALUE      succeed when VALUE contains PATTERN
//	assert-match -r PATTERN VALUE   succeed when VALUE matches the regexp
//
// On failure the assertion prints a diagnostic to the script's stderr and
// the command exits non-zero, failing the test script.
func NewAssertCommandHandler() func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
		return func(ctx context.Context, args []string) error {
			if len(args) == 0 || args[0] != assertCommandName {
				return next(ctx, args)
			}

			hc := interp.HandlerCtx(ctx)

			rest := args[1:]
			useRegexp := false
			if len(rest) > 0 && rest[0] == "-r" {
				useRegexp = true
				rest = rest[1:]
			}
			if len(rest) != 2 {
				fmt.Fprintf(hc.Stderr, "%s: usage: %s [-r] PATTERN VALUE\n", assertCommandName, assertCommandName)
				return interp.ExitStatus(2)
			}

			pattern, value := rest[0], rest[1]
			if useRegexp {
				matched, err := regexp.MatchString(pattern, value)
				if err != nil {
					fmt.Fprintf(hc.Stderr, "%s: bad pattern %q: %v\n", assertCommandName, pattern, err)
					return interp.ExitStatus(2)
				}
				if !matched {
					fmt.Fprintf(hc.Stderr, "%s: %q does not match /%s/\n", assertCommandName, value, pattern)
					return interp.ExitStatus(1)
				}
				return nil
			}

			if !strings.Contains(value, pattern) {
				fmt.Fprintf(hc.Stderr, "%s: %q does not contain %q\n", assertCommandName, value, pattern)
				return interp.ExitStatus(1)
			}
			return nil
		}
	}
}
