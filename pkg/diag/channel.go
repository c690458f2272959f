// Package diag implements the diagnostic conventions shared by every shmod
// command: resolving whether the verbose or debug channel is active for a
// given invocation, tracing function entry and exit on the debug channel,
// and reporting caught faults as recoverable warnings or fatal errors.
//
// Channel state is resolved fresh on every call and never cached. The
// precedence order is: explicit flag for the invocation, channel environment
// variable, inherited ambient preference, the immediate caller's bound
// parameters, the immediate caller's raw argument tokens.
package diag

import "strings"

// Channel identifies one of the two diagnostic output categories.
type Channel int

const (
	// Verbose is the narration channel: progress messages a user opts into.
	Verbose Channel = iota
	// Debug is the developer channel: trace lines and variable dumps.
	Debug
)

func (c Channel) String() string {
	switch c {
	case Verbose:
		return "verbose"
	case Debug:
		return "debug"
	default:
		return "unknown"
	}
}

// EnvVar returns the environment variable that force-enables the channel.
func (c Channel) EnvVar() string {
	return "SHMOD_" + strings.ToUpper(c.String())
}

// FlagToken returns the command line token callers pass for the channel.
func (c Channel) FlagToken() string {
	return "--" + c.String()
}

// ParamName returns the bound parameter name for the channel in a Frame.
func (c Channel) ParamName() string {
	return c.String()
}

// State is the result of resolving a channel for one invocation.
type State int

const (
	Inactive State = iota
	Active
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "inactive"
}

// PreferenceContinue is the ambient preference value that activates a
// channel when nothing more specific overrides it.
const PreferenceContinue = "Continue"

// truthy reports whether an environment variable value counts as enabled.
// "1", "true", "yes" and "on" enable; anything else does not.
func truthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
