package diag

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Action selects what the reporter does with a fault.
type Action int

const (
	// ActionContinue emits the stack trace block on the warning channel
	// and returns normally. This is the built-in default.
	ActionContinue Action = iota
	// ActionSilentlyContinue suppresses the fault entirely.
	ActionSilentlyContinue
	// ActionStop escalates the fault to the caller.
	ActionStop
	// ActionInquire is treated as fatal as well; the toolkit has no
	// interactive prompt at the reporting layer.
	ActionInquire
)

// ErrorActionEnvVar is the process-scoped override for the default action,
// consulted when a call site passes no explicit action.
const ErrorActionEnvVar = "SHMOD_ERROR_ACTION"

func (a Action) String() string {
	switch a {
	case ActionContinue:
		return "Continue"
	case ActionSilentlyContinue:
		return "SilentlyContinue"
	case ActionStop:
		return "Stop"
	case ActionInquire:
		return "Inquire"
	default:
		return "Continue"
	}
}

// Fatal reports whether the action escalates the fault instead of
// returning normally.
func (a Action) Fatal() bool {
	return a != ActionContinue && a != ActionSilentlyContinue
}

// ParseAction converts a textual action name, case-insensitively.
func ParseAction(value string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "continue":
		return ActionContinue, nil
	case "silentlycontinue":
		return ActionSilentlyContinue, nil
	case "stop":
		return ActionStop, nil
	case "inquire":
		return ActionInquire, nil
	}
	return ActionContinue, fmt.Errorf("unknown error action %q", value)
}

// Fault is the structured record of a caught error: the underlying error,
// a rendered message, and the stack captured at the catch site. Construct
// one with NewFault at the point the error is caught and hand it to the
// reporter immediately.
type Fault struct {
	Err        error
	Message    string
	StackTrace string
}

// NewFault builds a fault record from a caught error, capturing the current
// goroutine's stack. A nil error yields a nil fault.
func NewFault(err error) *Fault {
	if err == nil {
		return nil
	}
	return &Fault{
		Err:        err,
		Message:    err.Error(),
		StackTrace: strings.TrimRight(string(debug.Stack()), "\n"),
	}
}

// NewFaultf builds a fault record from a formatted message with no
// underlying error value.
func NewFaultf(format string, args ...any) *Fault {
	return &Fault{
		Message:    fmt.Sprintf(format, args...),
		StackTrace: strings.TrimRight(string(debug.Stack()), "\n"),
	}
}

func (f *Fault) error() error {
	if f.Err != nil {
		return f.Err
	}
	return errors.New(f.Message)
}

const (
	reportHeader = "Exception StackTrace"
	reportWidth  = 70
	reportGlyph  = "-"
)

// Reporter converts caught faults into warning output or escalated errors
// according to a resolved action.
type Reporter struct {
	warn      io.Writer
	logger    *zap.Logger
	lookupEnv func(string) (string, bool)
}

// ReporterOption configures a Reporter at construction time.
type ReporterOption func(*Reporter)

// WithReporterEnvLookup replaces environment variable access, for tests.
func WithReporterEnvLookup(lookup func(string) (string, bool)) ReporterOption {
	return func(r *Reporter) {
		r.lookupEnv = lookup
	}
}

// NewReporter creates a reporter writing warning blocks to warn. A nil
// writer defaults to stderr.
func NewReporter(logger *zap.Logger, warn io.Writer, opts ...ReporterOption) *Reporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if warn == nil {
		warn = os.Stderr
	}
	r := &Reporter{
		warn:      warn,
		logger:    logger,
		lookupEnv: os.LookupEnv,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Report handles a caught fault. The action is resolved as: explicit
// argument, then the ErrorActionEnvVar override, then ActionContinue.
//
// Under ActionContinue the fault is rendered as a delimited stack trace
// block on the warning writer and Report returns nil. Under
// ActionSilentlyContinue nothing is emitted and Report returns nil. Any
// other action escalates: Report returns the fault's error for the caller
// to propagate. A nil fault is always a no-op.
func (r *Reporter) Report(fault *Fault, action ...Action) error {
	if fault == nil {
		return nil
	}

	resolved := r.resolveAction(action...)
	switch resolved {
	case ActionSilentlyContinue:
		return nil
	case ActionContinue:
		r.emit(fault)
		return nil
	default:
		r.logger.Error("fault escalated",
			zap.String("action", resolved.String()),
			zap.String("message", fault.Message),
		)
		return fault.error()
	}
}

func (r *Reporter) resolveAction(action ...Action) Action {
	if len(action) > 0 {
		return action[0]
	}
	if value, ok := r.lookupEnv(ErrorActionEnvVar); ok && value != "" {
		parsed, err := ParseAction(value)
		if err != nil {
			r.logger.Warn("ignoring invalid error action override", zap.String("value", value))
			return ActionContinue
		}
		return parsed
	}
	return ActionContinue
}

func (r *Reporter) emit(fault *Fault) {
	fmt.Fprintln(r.warn, headerRule())
	fmt.Fprintln(r.warn, fault.Message)
	if fault.StackTrace != "" {
		fmt.Fprintln(r.warn, fault.StackTrace)
	}
	fmt.Fprintln(r.warn, strings.Repeat(reportGlyph, reportWidth))

	r.logger.Warn("fault reported", zap.String("message", fault.Message))
}

// headerRule renders the opening delimiter: the literal header padded with
// the separator glyph to the fixed report width.
func headerRule() string {
	head := strings.Repeat(reportGlyph, 4) + " " + reportHeader + " "
	pad := reportWidth - utf8.RuneCountInString(head)
	if pad < 0 {
		pad = 0
	}
	return head + strings.Repeat(reportGlyph, pad)
}
