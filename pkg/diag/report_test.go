package diag

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestReportContinueEmitsBlock(t *testing.T) {
	var warn bytes.Buffer
	reporter := NewReporter(zap.NewNop(), &warn, WithReporterEnvLookup(noEnv))

	fault := NewFault(errors.New("manifest missing"))
	require.NotNil(t, fault)

	err := reporter.Report(fault, ActionContinue)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(warn.String(), "\n"), "\n")
	require.GreaterOrEqual(t, len(lines), 4)

	// Opening delimiter carries the header padded out to the fixed width.
	assert.Contains(t, lines[0], "Exception StackTrace")
	assert.Len(t, lines[0], reportWidth)
	assert.True(t, strings.HasPrefix(lines[0], "----"))
	assert.True(t, strings.HasSuffix(lines[0], "-"))

	assert.Equal(t, "manifest missing", lines[1])

	// Stack trace lines sit between the message and the closing rule.
	trace := strings.Join(lines[2:len(lines)-1], "\n")
	assert.Contains(t, trace, "goroutine")

	closing := lines[len(lines)-1]
	assert.Equal(t, strings.Repeat("-", reportWidth), closing)
	assert.NotContains(t, closing, "manifest missing")
}

func TestReportContinueIsDefault(t *testing.T) {
	var warn bytes.Buffer
	reporter := NewReporter(zap.NewNop(), &warn, WithReporterEnvLookup(noEnv))

	err := reporter.Report(NewFault(errors.New("boom")))
	require.NoError(t, err)
	assert.Contains(t, warn.String(), "boom")
}

func TestReportSilentlyContinueEmitsNothing(t *testing.T) {
	var warn bytes.Buffer
	reporter := NewReporter(zap.NewNop(), &warn, WithReporterEnvLookup(noEnv))

	err := reporter.Report(NewFault(errors.New("boom")), ActionSilentlyContinue)
	require.NoError(t, err)
	assert.Empty(t, warn.String())
}

func TestReportStopEscalates(t *testing.T) {
	var warn bytes.Buffer
	reporter := NewReporter(zap.NewNop(), &warn, WithReporterEnvLookup(noEnv))

	underlying := errors.New("index corrupt")
	err := reporter.Report(NewFault(underlying), ActionStop)
	require.Error(t, err)
	assert.ErrorIs(t, err, underlying)
	assert.Empty(t, warn.String())
}

func TestReportInquireEscalates(t *testing.T) {
	reporter := NewReporter(zap.NewNop(), &bytes.Buffer{}, WithReporterEnvLookup(noEnv))

	err := reporter.Report(NewFaultf("no tty for %s", "prompt"), ActionInquire)
	require.Error(t, err)
	assert.Equal(t, "no tty for prompt", err.Error())
}

func TestReportActionFromEnvironment(t *testing.T) {
	var warn bytes.Buffer
	reporter := NewReporter(zap.NewNop(), &warn,
		WithReporterEnvLookup(envWith(map[string]string{ErrorActionEnvVar: "SilentlyContinue"})),
	)

	err := reporter.Report(NewFault(errors.New("boom")))
	require.NoError(t, err)
	assert.Empty(t, warn.String())
}

func TestReportExplicitActionBeatsEnvironment(t *testing.T) {
	var warn bytes.Buffer
	reporter := NewReporter(zap.NewNop(), &warn,
		WithReporterEnvLookup(envWith(map[string]string{ErrorActionEnvVar: "Stop"})),
	)

	err := reporter.Report(NewFault(errors.New("boom")), ActionContinue)
	require.NoError(t, err)
	assert.Contains(t, warn.String(), "boom")
}

func TestReportInvalidEnvironmentOverrideFallsBack(t *testing.T) {
	var warn bytes.Buffer
	reporter := NewReporter(zap.NewNop(), &warn,
		WithReporterEnvLookup(envWith(map[string]string{ErrorActionEnvVar: "Shrug"})),
	)

	err := reporter.Report(NewFault(errors.New("boom")))
	require.NoError(t, err)
	assert.Contains(t, warn.String(), "boom")
}

func TestReportNilFault(t *testing.T) {
	var warn bytes.Buffer
	reporter := NewReporter(zap.NewNop(), &warn, WithReporterEnvLookup(noEnv))

	require.NoError(t, reporter.Report(nil))
	require.NoError(t, reporter.Report(NewFault(nil), ActionStop))
	assert.Empty(t, warn.String())
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		value   string
		want    Action
		wantErr bool
	}{
		{"Continue", ActionContinue, false},
		{"continue", ActionContinue, false},
		{"SilentlyContinue", ActionSilentlyContinue, false},
		{"STOP", ActionStop, false},
		{"inquire", ActionInquire, false},
		{"Ignore", ActionContinue, true},
		{"", ActionContinue, true},
	}

	for _, test := range tests {
		got, err := ParseAction(test.value)
		if test.wantErr {
			assert.Error(t, err, "value %q", test.value)
			continue
		}
		require.NoError(t, err, "value %q", test.value)
		assert.Equal(t, test.want, got, "value %q", test.value)
	}
}

func TestActionFatal(t *testing.T) {
	assert.False(t, ActionContinue.Fatal())
	assert.False(t, ActionSilentlyContinue.Fatal())
	assert.True(t, ActionStop.Fatal())
	assert.True(t, ActionInquire.Fatal())
}
