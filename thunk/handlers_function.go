package thunk

import (
	"context"

	engerrors "github.com/lyzr/formengine/errors"
	"github.com/lyzr/formengine/eval"
	"github.com/lyzr/formengine/node"
	"github.com/lyzr/formengine/registry"
)

// functionHandler implements FUNCTION (spec §4.5): look up the named
// function by (functionType, name) in the FunctionRegistry, evaluate every
// argument, then invoke. For EFFECT functions, arguments are evaluated here
// but the effect itself is captured rather than executed — the enclosing
// transition handler runs it during commit (spec §4.6).
//
// The node's own "functionType" property carries the FunctionRegistry
// category (CONDITION/TRANSFORMER/EFFECT/GENERATOR); this is kept distinct
// from the Expression-level "expressionType" discriminator (which is always
// "FUNCTION" for this node kind) to avoid the two overlapping meanings the
// source schema conflates under one field name.
type functionHandler struct {
	base
	n         *node.ASTNode
	functions *registry.FunctionRegistry
}

// CapturedEffect is what an EFFECT function call yields instead of running —
// the transition handler that owns the enclosing effects[] list executes it
// during commit.
type CapturedEffect struct {
	Name string
	Args []interface{}
	Fn   *registry.Func
}

func (h *functionHandler) Evaluate(ctx context.Context, ec *eval.Context, invoker Invoker) eval.Result {
	functionType := registry.FunctionType(h.n.StringProp("functionType"))
	name := h.n.StringProp("name")

	fn, ok := ec.Functions.Get(functionType, name)
	if !ok {
		return eval.Fail(engerrors.At(engerrors.Lookup, string(h.id), "unknown function "+string(functionType)+"/"+name))
	}

	argNodes := h.n.NodeSliceProp("arguments")
	argIDs := make([]node.ID, len(argNodes))
	for i, a := range argNodes {
		argIDs[i] = a.ID
	}
	results := invoker.InvokeAll(ctx, argIDs, ec, true)

	args := make([]interface{}, len(results))
	for i, r := range results {
		if r.IsError() {
			return r
		}
		args[i] = r.Value
	}

	if functionType == registry.FunctionEffect {
		return eval.Ok(CapturedEffect{Name: name, Args: args, Fn: fn})
	}

	value, err := fn.Evaluate(args...)
	if err != nil {
		return eval.Fail(engerrors.Wrap(engerrors.EvaluationFailed, string(h.id), "function "+name+" failed", err))
	}
	return eval.Ok(value)
}

func (h *functionHandler) ComputeIsAsync(depsAsync []bool) bool {
	functionType := registry.FunctionType(h.n.StringProp("functionType"))
	if functionType == registry.FunctionEffect {
		return true
	}
	if h.functions != nil {
		if fn, ok := h.functions.Get(functionType, h.n.StringProp("name")); ok && fn.IsAsync {
			return true
		}
	}
	for _, a := range depsAsync {
		if a {
			return true
		}
	}
	return false
}
