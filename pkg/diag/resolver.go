package diag

import (
	"os"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Frame records one caller invocation: the bound parameter values the caller
// received and the raw argument tokens it was invoked with. Frames are pushed
// onto the resolver's registry on entry and popped on exit, so the top of the
// registry is always the immediate caller of whoever is asking.
type Frame struct {
	Name   string
	Params map[string]any
	Args   []string
}

// Context is the read-only view a single resolution consumes. A nil field
// means "signal not present". The resolver never mutates a Context.
type Context struct {
	// Flags holds explicit per-channel booleans for this invocation. An
	// entry here is terminal: it decides the state even when false.
	Flags map[Channel]bool

	// Ambient holds the inherited preference string per channel.
	// PreferenceContinue activates the channel; anything else does not.
	Ambient map[Channel]string

	// LookupEnv overrides environment access; defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)

	// Caller is the immediate caller's frame, if one is known.
	Caller *Frame
}

// Resolver decides whether a diagnostic channel is active. Resolution walks
// the invocation context afresh on every call; nothing is cached, so ambient
// preference or environment changes between calls take effect immediately.
type Resolver struct {
	mu        sync.Mutex
	frames    []Frame
	flags     map[Channel]bool
	ambient   map[Channel]string
	lookupEnv func(string) (string, bool)
	logger    *zap.Logger
}

// ResolverOption configures a Resolver at construction time.
type ResolverOption func(*Resolver)

// WithAmbient sets the inherited preference for a channel.
func WithAmbient(channel Channel, preference string) ResolverOption {
	return func(r *Resolver) {
		r.ambient[channel] = preference
	}
}

// WithEnvLookup replaces environment variable access, for tests.
func WithEnvLookup(lookup func(string) (string, bool)) ResolverOption {
	return func(r *Resolver) {
		r.lookupEnv = lookup
	}
}

// NewResolver creates a resolver with an empty frame registry.
func NewResolver(logger *zap.Logger, opts ...ResolverOption) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Resolver{
		flags:     map[Channel]bool{},
		ambient:   map[Channel]string{},
		lookupEnv: os.LookupEnv,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetFlag records an explicit channel flag for the current invocation.
// Explicit flags are terminal: they decide the state even when false,
// outranking the environment and everything below it.
func (r *Resolver) SetFlag(channel Channel, enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flags[channel] = enabled
}

// SetAmbient updates the inherited preference for a channel. Callers use
// this to propagate a preference into nested invocations.
func (r *Resolver) SetAmbient(channel Channel, preference string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ambient[channel] = preference
}

// Push records a caller frame. Every Push must be paired with a Pop; the
// registry is strictly LIFO.
func (r *Resolver) Push(frame Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, frame)
}

// Pop removes the most recently pushed frame. Popping an empty registry is
// a no-op rather than an error.
func (r *Resolver) Pop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.frames) == 0 {
		r.logger.Warn("frame registry pop with no pushed frame")
		return
	}
	r.frames = r.frames[:len(r.frames)-1]
}

// Depth returns the number of frames currently registered.
func (r *Resolver) Depth() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

// caller returns a copy of the top frame, or nil when the registry is empty.
func (r *Resolver) caller() *Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.frames) == 0 {
		return nil
	}
	top := r.frames[len(r.frames)-1]
	return &top
}

// Resolve decides the channel state from ambient process state: the
// resolver's recorded invocation flags and preference map, the environment,
// and the top frame of the registry as the immediate caller.
func (r *Resolver) Resolve(channel Channel) State {
	r.mu.Lock()
	flags := map[Channel]bool{}
	for ch, enabled := range r.flags {
		flags[ch] = enabled
	}
	ambient := map[Channel]string{}
	for ch, pref := range r.ambient {
		ambient[ch] = pref
	}
	lookup := r.lookupEnv
	r.mu.Unlock()

	return r.ResolveContext(channel, &Context{
		Flags:     flags,
		Ambient:   ambient,
		LookupEnv: lookup,
		Caller:    r.caller(),
	})
}

// ResolveContext decides the channel state from an explicitly assembled
// context. Evaluation order, first match wins:
//
//  1. an explicit flag in ctx.Flags (terminal, even when false)
//  2. the channel's environment variable set to a truthy value
//  3. ambient preference equal to PreferenceContinue
//  4. an explicit boolean bound parameter on the caller frame (terminal)
//  5. the channel's flag token among the caller's raw arguments
//
// With no caller frame, steps 4 and 5 are skipped. Anything unmatched is
// Inactive.
func (r *Resolver) ResolveContext(channel Channel, ctx *Context) State {
	if ctx == nil {
		ctx = &Context{}
	}

	if explicit, ok := ctx.Flags[channel]; ok {
		return stateOf(explicit)
	}

	lookup := ctx.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if value, ok := lookup(channel.EnvVar()); ok && truthy(value) {
		return Active
	}

	if ctx.Ambient[channel] == PreferenceContinue {
		return Active
	}

	if caller := ctx.Caller; caller != nil {
		if bound, ok := caller.Params[channel.ParamName()]; ok {
			if explicit, ok := bound.(bool); ok {
				return stateOf(explicit)
			}
			r.logger.Warn("bound diagnostic parameter is not a boolean",
				zap.String("channel", channel.String()),
				zap.String("frame", caller.Name),
			)
		}
		if lo.Contains(caller.Args, channel.FlagToken()) {
			return Active
		}
	}

	return Inactive
}

func stateOf(enabled bool) State {
	if enabled {
		return Active
	}
	return Inactive
}
