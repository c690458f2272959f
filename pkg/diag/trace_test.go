package diag

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestTracer(out *bytes.Buffer, warn *bytes.Buffer, opts ...ResolverOption) *Tracer {
	resolver := NewResolver(zap.NewNop(), append([]ResolverOption{WithEnvLookup(noEnv)}, opts...)...)
	reporter := NewReporter(zap.NewNop(), warn, WithReporterEnvLookup(noEnv))
	return NewTracer(resolver, reporter, out)
}

func TestTraceSilentWhenDebugInactive(t *testing.T) {
	var out, warn bytes.Buffer
	tracer := newTestTracer(&out, &warn)

	tracer.Enter("Foo")
	tracer.Exit("Foo")

	assert.Empty(t, out.String())
	assert.Empty(t, warn.String())
}

func TestTraceEnterEmitsSingleRule(t *testing.T) {
	var out, warn bytes.Buffer
	tracer := newTestTracer(&out, &warn, WithAmbient(Debug, PreferenceContinue))

	tracer.Enter("Foo")

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "Foo")
	assert.True(t, strings.HasPrefix(lines[0], ">>>>"))
	assert.True(t, strings.HasSuffix(lines[0], ">"))
	assert.Len(t, lines[0], traceWidth)
}

func TestTraceMultibyteNameKeepsWidth(t *testing.T) {
	var out, warn bytes.Buffer
	tracer := newTestTracer(&out, &warn, WithAmbient(Debug, PreferenceContinue))

	tracer.Enter("café.Señor")

	line := strings.TrimRight(out.String(), "\n")
	assert.Equal(t, traceWidth, utf8.RuneCountInString(line))
}

func TestTraceExitUsesMirroredGlyph(t *testing.T) {
	var out, warn bytes.Buffer
	tracer := newTestTracer(&out, &warn, WithAmbient(Debug, PreferenceContinue))

	tracer.Exit("Foo")

	line := strings.TrimRight(out.String(), "\n")
	assert.Contains(t, line, "Foo")
	assert.True(t, strings.HasPrefix(line, "<<<<"))
	assert.NotContains(t, line, ">")
}

func TestTraceDerivesCallerName(t *testing.T) {
	var out, warn bytes.Buffer
	tracer := newTestTracer(&out, &warn, WithAmbient(Debug, PreferenceContinue))

	tracer.Enter("")

	// The derived identity is this test function.
	assert.Contains(t, out.String(), "TestTraceDerivesCallerName")
	assert.Empty(t, warn.String())
}

func TestTraceLongNameClampsPadding(t *testing.T) {
	var out, warn bytes.Buffer
	tracer := newTestTracer(&out, &warn, WithAmbient(Debug, PreferenceContinue))

	name := strings.Repeat("x", traceWidth+10)
	tracer.Enter(name)

	line := strings.TrimRight(out.String(), "\n")
	assert.Contains(t, line, name)
	assert.True(t, strings.HasPrefix(line, ">>>> "))
}

func TestTraceHonorsCallerFrame(t *testing.T) {
	var out, warn bytes.Buffer
	tracer := newTestTracer(&out, &warn)

	// The caller asked for debug through its raw arguments; the tracer
	// observes that one level up without any flag of its own.
	tracer.resolver.Push(Frame{Name: "publish", Args: []string{"--debug"}})
	defer tracer.resolver.Pop()

	tracer.Enter("publish")
	assert.Contains(t, out.String(), "publish")
}

func TestTraceFailureRoutedToReporter(t *testing.T) {
	var out, warn bytes.Buffer
	tracer := newTestTracer(&out, &warn, WithAmbient(Debug, PreferenceContinue))
	tracer.out = failingWriter{}

	require.NotPanics(t, func() {
		tracer.Enter("Foo")
	})
	assert.Contains(t, warn.String(), "Exception StackTrace")
	assert.Contains(t, warn.String(), "trace failed")
	assert.Empty(t, out.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	panic("writer unavailable")
}
