package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/claco/shmod/pkg/diag"
)

// diagContext wires a command invocation into the diagnostic core: the
// invocation's frame (bound flag values plus raw arguments) is pushed onto
// the resolver so library code can observe the caller's preferences, and
// the command's work is bracketed by entry/exit traces.
type diagContext struct {
	resolver *diag.Resolver
	reporter *diag.Reporter
	tracer   *diag.Tracer
	name     string
}

func newDiagContext(cmd *cobra.Command) *diagContext {
	resolver := diag.NewResolver(logger)
	reporter := diag.NewReporter(logger, cmd.ErrOrStderr())
	tracer := diag.NewTracer(resolver, reporter, cmd.ErrOrStderr())

	// Only flags the user actually set count; defaults must not shadow
	// environment or ambient preference. A set flag is recorded twice:
	// as the invocation's explicit flag, terminal for this command's own
	// resolution even against the environment, and as a bound parameter
	// on the frame so nested callees see it as their caller's.
	params := map[string]any{}
	if cmd.Flags().Changed("verbose") {
		resolver.SetFlag(diag.Verbose, verboseFlag)
		params[diag.Verbose.ParamName()] = verboseFlag
	}
	if cmd.Flags().Changed("debug") {
		resolver.SetFlag(diag.Debug, debugFlag)
		params[diag.Debug.ParamName()] = debugFlag
	}

	resolver.Push(diag.Frame{
		Name:   cmd.Name(),
		Params: params,
		Args:   os.Args[1:],
	})

	dc := &diagContext{
		resolver: resolver,
		reporter: reporter,
		tracer:   tracer,
		name:     cmd.Name(),
	}
	dc.tracer.Enter(dc.name)
	return dc
}

func (dc *diagContext) close() {
	dc.tracer.Exit(dc.name)
	dc.resolver.Pop()
}

func (dc *diagContext) verbose() bool {
	return dc.resolver.Resolve(diag.Verbose) == diag.Active
}
