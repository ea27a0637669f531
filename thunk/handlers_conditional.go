package thunk

import (
	"context"

	engerrors "github.com/lyzr/formengine/errors"
	"github.com/lyzr/formengine/eval"
	"github.com/lyzr/formengine/node"
)

// conditionalHandler implements CONDITIONAL: evaluate predicate, return
// thenValue if truthy else elseValue. Values may be nodes or literals
// (spec §4.5).
type conditionalHandler struct {
	base
	n *node.ASTNode
}

func (h *conditionalHandler) Evaluate(ctx context.Context, ec *eval.Context, invoker Invoker) eval.Result {
	predicate, ok := h.n.NodeProp("predicate")
	if !ok {
		return eval.Fail(engerrors.At(engerrors.InvalidNode, string(h.id), "conditional missing \"predicate\""))
	}
	predResult := invoker.Invoke(ctx, predicate.ID, ec)
	if predResult.IsError() {
		return predResult
	}

	branch := "elseValue"
	if predResult.Truthy() {
		branch = "thenValue"
	}
	return h.evalBranch(ctx, ec, invoker, branch)
}

func (h *conditionalHandler) evalBranch(ctx context.Context, ec *eval.Context, invoker Invoker, property string) eval.Result {
	if childNode, ok := h.n.NodeProp(property); ok {
		return invoker.Invoke(ctx, childNode.ID, ec)
	}
	literal, _ := h.n.Prop(property)
	return eval.Ok(literal)
}

func (h *conditionalHandler) ComputeIsAsync(depsAsync []bool) bool {
	for _, a := range depsAsync {
		if a {
			return true
		}
	}
	return false
}
