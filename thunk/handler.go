// Package thunk implements the thunk compiler and the per-node-kind handler
// catalog: the uniform evaluation protocol described in spec §4.5.
package thunk

import (
	"context"

	"github.com/lyzr/formengine/eval"
	"github.com/lyzr/formengine/node"
)

// Invoker is the ThunkInvocationAdapter's contract: the indirection by which
// a handler evaluates another node. It is what consults the cache and
// dispatches to the registered handler — handlers never touch the cache
// directly (spec §4.5).
type Invoker interface {
	Invoke(ctx context.Context, id node.ID, ec *eval.Context) eval.Result
	// InvokeAll evaluates every id. When concurrent is true and at least one
	// id's handler IsAsync, ids are resolved concurrently via an errgroup (spec
	// §5: sibling arguments are the only source of concurrency); otherwise
	// they resolve left-to-right.
	InvokeAll(ctx context.Context, ids []node.ID, ec *eval.Context, concurrent bool) []eval.Result
	// IsAsync reports a compiled handler's computed isAsync flag.
	IsAsync(id node.ID) bool
}

// Handler is implemented by every node kind's evaluator.
type Handler interface {
	NodeID() node.ID
	Evaluate(ctx context.Context, ec *eval.Context, invoker Invoker) eval.Result
}

// AsyncComputer is implemented by handlers whose isAsync flag depends on
// their dependencies' — computed bottom-up once the full handler set is
// built (spec §4.5 "Compile sequence"). Handlers that don't implement this
// default to the disjunction of their DATA_FLOW dependencies' isAsync.
type AsyncComputer interface {
	ComputeIsAsync(depsAsync []bool) bool
}

// base is embedded by every concrete handler for the NodeID() boilerplate.
type base struct {
	id node.ID
}

func (b base) NodeID() node.ID { return b.id }
