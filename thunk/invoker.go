package thunk

import (
	"context"

	engerrors "github.com/lyzr/formengine/errors"
	"github.com/lyzr/formengine/eval"
	"github.com/lyzr/formengine/node"
	"golang.org/x/sync/errgroup"
)

// InvocationAdapter is the ThunkInvocationAdapter: it is the only thing that
// consults the per-request cache and dispatches to a registered handler
// (spec §4.5). Handlers hold one of these, never the HandlerRegistry or
// Cache directly.
type InvocationAdapter struct {
	Handlers *HandlerRegistry
}

// NewInvocationAdapter builds an adapter over a compiled handler registry.
func NewInvocationAdapter(handlers *HandlerRegistry) *InvocationAdapter {
	return &InvocationAdapter{Handlers: handlers}
}

// Invoke evaluates id, consulting and populating the per-request cache keyed
// by (id, current scope fingerprint).
func (a *InvocationAdapter) Invoke(ctx context.Context, id node.ID, ec *eval.Context) eval.Result {
	fingerprint := ec.Scope.Fingerprint()
	if cached, ok := ec.Cache.Get(id, fingerprint); ok {
		return cached
	}

	h, ok := a.Handlers.Get(id)
	if !ok {
		return eval.Fail(engerrors.At(engerrors.Lookup, string(id), "no handler compiled for node"))
	}

	result := h.Evaluate(ctx, ec, a)
	ec.Cache.Set(id, fingerprint, result)
	return result
}

// InvokeAll evaluates every id. When concurrent is requested and at least one
// target handler is async, evaluation fans out over an errgroup — the only
// source of concurrency the evaluator introduces (spec §5: sibling
// arguments of FORMAT/XOR/function calls). Otherwise ids resolve
// left-to-right, which is required whenever short-circuiting matters.
func (a *InvocationAdapter) InvokeAll(ctx context.Context, ids []node.ID, ec *eval.Context, concurrent bool) []eval.Result {
	results := make([]eval.Result, len(ids))

	if !concurrent || !a.anyAsync(ids) {
		for i, id := range ids {
			results[i] = a.Invoke(ctx, id, ec)
		}
		return results
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			results[i] = a.Invoke(gctx, id, ec)
			return nil
		})
	}
	_ = g.Wait() // handler errors travel through eval.Result, never through errgroup's error
	return results
}

func (a *InvocationAdapter) anyAsync(ids []node.ID) bool {
	for _, id := range ids {
		if a.Handlers.IsAsync(id) {
			return true
		}
	}
	return false
}

// IsAsync reports the computed isAsync flag for a node id.
func (a *InvocationAdapter) IsAsync(id node.ID) bool {
	return a.Handlers.IsAsync(id)
}
