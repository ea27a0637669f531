package thunk

import (
	"context"

	"github.com/lyzr/formengine/eval"
	"github.com/lyzr/formengine/node"
)

// nextHandler implements NEXT (spec §4.5): if "when" is present and falsy,
// yield {"type":"none"}; otherwise produce a goto value, which may be a
// literal string or a computed expression.
type nextHandler struct {
	base
	n *node.ASTNode
}

func (h *nextHandler) Evaluate(ctx context.Context, ec *eval.Context, invoker Invoker) eval.Result {
	if whenNode, ok := h.n.NodeProp("when"); ok {
		r := invoker.Invoke(ctx, whenNode.ID, ec)
		if r.IsError() {
			return r
		}
		if !r.Truthy() {
			return eval.Ok(map[string]interface{}{"type": "none"})
		}
	}

	gotoValue, err := evalValue(ctx, ec, invoker, h.n.Properties["goto"])
	if err != nil {
		return eval.Fail(err)
	}
	return eval.Ok(map[string]interface{}{"type": "goto", "value": gotoValue})
}

// redirectHandler implements the REDIRECT outcome (spec §4.5). A nil Value
// (not an error) means the outcome's "when" was falsy and this outcome does
// not apply — the caller evaluating a transition's next[] list tries the
// next one.
type redirectHandler struct {
	base
	n *node.ASTNode
}

func (h *redirectHandler) Evaluate(ctx context.Context, ec *eval.Context, invoker Invoker) eval.Result {
	if applies, r := evalWhenGuard(ctx, ec, invoker, h.n); !applies {
		return r
	}
	gotoValue, err := evalValue(ctx, ec, invoker, h.n.Properties["goto"])
	if err != nil {
		return eval.Fail(err)
	}
	return eval.Ok(map[string]interface{}{"type": "redirect", "value": gotoValue})
}

// throwErrorHandler implements the THROW_ERROR outcome.
type throwErrorHandler struct {
	base
	n *node.ASTNode
}

func (h *throwErrorHandler) Evaluate(ctx context.Context, ec *eval.Context, invoker Invoker) eval.Result {
	if applies, r := evalWhenGuard(ctx, ec, invoker, h.n); !applies {
		return r
	}
	message, err := evalValue(ctx, ec, invoker, h.n.Properties["message"])
	if err != nil {
		return eval.Fail(err)
	}
	return eval.Ok(map[string]interface{}{
		"type":    "error",
		"status":  h.n.Properties["status"],
		"message": message,
	})
}

// evalWhenGuard evaluates an optional "when" property; returns applies=false
// with an Ok(nil) result when the guard is present and falsy, meaning the
// caller should treat this outcome as not matched and move to the next one.
func evalWhenGuard(ctx context.Context, ec *eval.Context, invoker Invoker, n *node.ASTNode) (bool, eval.Result) {
	whenNode, ok := n.NodeProp("when")
	if !ok {
		return true, eval.Result{}
	}
	r := invoker.Invoke(ctx, whenNode.ID, ec)
	if r.IsError() {
		return false, r
	}
	if !r.Truthy() {
		return false, eval.Ok(nil)
	}
	return true, eval.Result{}
}
