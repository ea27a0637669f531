package thunk

import (
	"context"

	engerrors "github.com/lyzr/formengine/errors"
	"github.com/lyzr/formengine/eval"
	"github.com/lyzr/formengine/node"
)

// testHandler implements Predicate.TEST (spec §4.5): evaluate subject, push
// it onto the scope stack as "@value", evaluate condition (a CONDITION
// function node), invert on negate. The subject is not passed to the
// condition as an argument: the condition receives only its own arguments,
// and reads the subject through Reference("scope", "@value") or an argument
// that references the same value.
type testHandler struct {
	base
	n *node.ASTNode
}

func (h *testHandler) Evaluate(ctx context.Context, ec *eval.Context, invoker Invoker) eval.Result {
	subjectNode, ok := h.n.NodeProp("subject")
	if !ok {
		return eval.Fail(engerrors.At(engerrors.InvalidNode, string(h.id), "test missing \"subject\""))
	}
	subjectResult := invoker.Invoke(ctx, subjectNode.ID, ec)
	if subjectResult.IsError() {
		return subjectResult
	}

	conditionNode, ok := h.n.NodeProp("condition")
	if !ok {
		return eval.Fail(engerrors.At(engerrors.InvalidNode, string(h.id), "test missing \"condition\""))
	}

	ec.Scope.Push(eval.Frame{"@value": subjectResult.Value, "@type": "test-subject"})
	condResult := invoker.Invoke(ctx, conditionNode.ID, ec)
	ec.Scope.Pop()
	if condResult.IsError() {
		// A failed sub-evaluation counts as falsy (spec §7 "Local recovery").
		condResult = eval.Ok(false)
	}

	truthy := condResult.Truthy()
	if h.n.BoolProp("negate") {
		truthy = !truthy
	}
	return eval.Ok(truthy)
}

// andHandler implements AND: short-circuit left-to-right; empty AND = true.
type andHandler struct {
	base
	n *node.ASTNode
}

func (h *andHandler) Evaluate(ctx context.Context, ec *eval.Context, invoker Invoker) eval.Result {
	operands := h.n.NodeSliceProp("operands")
	for _, op := range operands {
		r := invoker.Invoke(ctx, op.ID, ec)
		if !r.Truthy() {
			return eval.Ok(false)
		}
	}
	return eval.Ok(true)
}

// orHandler implements OR: short-circuit left-to-right; empty OR = false.
type orHandler struct {
	base
	n *node.ASTNode
}

func (h *orHandler) Evaluate(ctx context.Context, ec *eval.Context, invoker Invoker) eval.Result {
	operands := h.n.NodeSliceProp("operands")
	for _, op := range operands {
		r := invoker.Invoke(ctx, op.ID, ec)
		if r.Truthy() {
			return eval.Ok(true)
		}
	}
	return eval.Ok(false)
}

// xorHandler implements XOR: no short-circuit, every operand is evaluated;
// true iff exactly one is truthy.
type xorHandler struct {
	base
	n *node.ASTNode
}

func (h *xorHandler) Evaluate(ctx context.Context, ec *eval.Context, invoker Invoker) eval.Result {
	operands := h.n.NodeSliceProp("operands")
	ids := make([]node.ID, len(operands))
	for i, op := range operands {
		ids[i] = op.ID
	}
	results := invoker.InvokeAll(ctx, ids, ec, true)

	count := 0
	for _, r := range results {
		if r.Truthy() {
			count++
		}
	}
	return eval.Ok(count == 1)
}

func (h *xorHandler) ComputeIsAsync(depsAsync []bool) bool {
	for _, a := range depsAsync {
		if a {
			return true
		}
	}
	return false
}

// notHandler implements NOT: logical negation of the single operand; a
// failed evaluation is treated as falsy.
type notHandler struct {
	base
	n *node.ASTNode
}

func (h *notHandler) Evaluate(ctx context.Context, ec *eval.Context, invoker Invoker) eval.Result {
	operand, ok := h.n.NodeProp("operand")
	if !ok {
		return eval.Fail(engerrors.At(engerrors.InvalidNode, string(h.id), "not missing \"operand\""))
	}
	r := invoker.Invoke(ctx, operand.ID, ec)
	return eval.Ok(!r.Truthy())
}
