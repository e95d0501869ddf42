package union

import (
	"context"
	"time"

	"github.com/zoobzio/pipz"
)

// Option configures the dispatch pipeline of a Store. Options wrap the
// reducing terminal with middleware that can observe, rewrite, reject or
// drop actions before they are reduced.
//
// Instance configuration (initial state, metrics) is handled via chainable
// methods on the Store.
type Option func(pipz.Chainable[Action]) pipz.Chainable[Action]

// buildPipeline wraps a terminal with pipeline options.
func buildPipeline(terminal pipz.Chainable[Action], opts []Option) pipz.Chainable[Action] {
	pipeline := terminal
	for _, opt := range opts {
		pipeline = opt(pipeline)
	}
	return pipeline
}

// -----------------------------------------------------------------------------
// Pipeline Options - Wrapping (With*)
// -----------------------------------------------------------------------------

// WithMiddleware runs processors in order before the action is reduced.
// A processor returning an error aborts the dispatch.
//
// Example:
//
//	store := union.NewStore(
//	    union.WithMiddleware(
//	        union.UseEffect("audit", auditFn),
//	        union.UseTransform("stamp", stampFn),
//	    ),
//	)
func WithMiddleware(processors ...pipz.Chainable[Action]) Option {
	return func(p pipz.Chainable[Action]) pipz.Chainable[Action] {
		all := make([]pipz.Chainable[Action], 0, len(processors)+1)
		all = append(all, processors...)
		all = append(all, p)
		return pipz.NewSequence("middleware", all...)
	}
}

// WithFilter drops actions for which condition returns false. Dropped
// actions are neither reduced nor delivered to epics, and Dispatch reports
// no error for them.
func WithFilter(name string, condition func(context.Context, Action) bool) Option {
	return func(p pipz.Chainable[Action]) pipz.Chainable[Action] {
		return pipz.NewFilter(pipz.Name(name), condition, p)
	}
}

// -----------------------------------------------------------------------------
// Middleware Processors (Use*)
// -----------------------------------------------------------------------------

// UseTransform creates a processor that rewrites the action and cannot fail.
func UseTransform(name string, fn func(context.Context, Action) Action) pipz.Chainable[Action] {
	return pipz.Transform(pipz.Name(name), fn)
}

// UseApply creates a processor that can rewrite the action or reject it.
func UseApply(name string, fn func(context.Context, Action) (Action, error)) pipz.Chainable[Action] {
	return pipz.Apply(pipz.Name(name), fn)
}

// UseEffect creates a processor that observes the action. Returning an
// error rejects the dispatch.
func UseEffect(name string, fn func(context.Context, Action) error) pipz.Chainable[Action] {
	return pipz.Effect(pipz.Name(name), fn)
}

// UseMutate creates a processor that rewrites the action only when
// condition holds.
func UseMutate(name string, transformer func(context.Context, Action) Action, condition func(context.Context, Action) bool) pipz.Chainable[Action] {
	return pipz.Mutate(pipz.Name(name), transformer, condition)
}

// UseEnrich creates a processor that attempts an optional rewrite. If fn
// fails the original action continues unchanged.
func UseEnrich(name string, fn func(context.Context, Action) (Action, error)) pipz.Chainable[Action] {
	return pipz.Enrich(pipz.Name(name), fn)
}

// -----------------------------------------------------------------------------
// Middleware Processors - Wrapping (Use*)
// -----------------------------------------------------------------------------
// These wrap another middleware processor. Wrapping the whole dispatch is not
// supported: reducing is not idempotent, so it must run exactly once.

// UseRetry retries a failing processor immediately up to maxAttempts times.
func UseRetry(maxAttempts int, processor pipz.Chainable[Action]) pipz.Chainable[Action] {
	return pipz.NewRetry("retry", processor, maxAttempts)
}

// UseTimeout fails the processor if it runs longer than d.
func UseTimeout(d time.Duration, processor pipz.Chainable[Action]) pipz.Chainable[Action] {
	return pipz.NewTimeout("timeout", processor, d)
}

// UseFallback tries each fallback in order when primary fails.
func UseFallback(primary pipz.Chainable[Action], fallbacks ...pipz.Chainable[Action]) pipz.Chainable[Action] {
	all := append([]pipz.Chainable[Action]{primary}, fallbacks...)
	return pipz.NewFallback("fallback", all...)
}

// UseFilter runs processor only for actions matching condition. Other
// actions pass through unchanged.
func UseFilter(name string, condition func(context.Context, Action) bool, processor pipz.Chainable[Action]) pipz.Chainable[Action] {
	return pipz.NewFilter(pipz.Name(name), condition, processor)
}
