package diag

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"unicode/utf8"
)

const traceWidth = 70

// Tracer emits bracketed entry and exit rules on the debug channel. Lines
// are only written when the Debug channel resolves Active for the caller's
// context; otherwise both calls are free of observable effect.
type Tracer struct {
	resolver *Resolver
	reporter *Reporter
	out      io.Writer
}

// NewTracer creates a tracer writing to out (stderr when nil). Faults
// raised while deriving a caller name or formatting a rule are routed
// through the reporter; tracing never aborts the caller's work.
func NewTracer(resolver *Resolver, reporter *Reporter, out io.Writer) *Tracer {
	if out == nil {
		out = os.Stderr
	}
	return &Tracer{
		resolver: resolver,
		reporter: reporter,
		out:      out,
	}
}

// Enter emits the entry rule for name. An empty name is derived from the
// calling function's identity.
func (t *Tracer) Enter(name string) {
	t.trace(name, '>')
}

// Exit emits the exit rule for name. An empty name is derived from the
// calling function's identity.
func (t *Tracer) Exit(name string) {
	t.trace(name, '<')
}

func (t *Tracer) trace(name string, glyph rune) {
	defer func() {
		if recovered := recover(); recovered != nil {
			// Reporter errors are deliberately dropped: even a fatal
			// action override must not let tracing abort the caller.
			_ = t.reporter.Report(NewFaultf("trace failed: %v", recovered))
		}
	}()

	if t.resolver.Resolve(Debug) != Active {
		return
	}

	if name == "" {
		name = callerName(3)
	}
	fmt.Fprintln(t.out, traceRule(glyph, name))
}

// callerName resolves the function name the given number of frames up,
// trimmed of its package path.
func callerName(skip int) string {
	pc, _, _, ok := runtime.Caller(skip)
	if !ok {
		panic("no caller frame available")
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		panic("caller frame has no function")
	}
	name := fn.Name()
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	return name
}

// traceRule renders a fixed-width rule: a short glyph run, the name, then
// padding with the same glyph out to the trace width, clamped at zero.
func traceRule(glyph rune, name string) string {
	head := strings.Repeat(string(glyph), 4) + " " + name + " "
	// Width is measured in runes so multibyte names pad correctly.
	pad := traceWidth - utf8.RuneCountInString(head)
	if pad < 0 {
		pad = 0
	}
	return head + strings.Repeat(string(glyph), pad)
}
