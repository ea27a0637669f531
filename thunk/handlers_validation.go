package thunk

import (
	"context"

	"github.com/lyzr/formengine/eval"
	"github.com/lyzr/formengine/node"
)

// validationHandler implements VALIDATION (spec §4.5, §4.7): a validation
// passes (silently) when its "when" predicate is falsy. submissionOnly
// validations are skipped during render and only checked on SUBMIT — the
// caller (Block/transition evaluation) is responsible for filtering those
// out before invoking this handler at render time.
type validationHandler struct {
	base
	n         *node.ASTNode
	blockCode string
}

func (h *validationHandler) Evaluate(ctx context.Context, ec *eval.Context, invoker Invoker) eval.Result {
	whenNode, ok := h.n.NodeProp("when")
	if !ok {
		return eval.Ok(map[string]interface{}{
			"passed":    false,
			"message":   h.resolveMessage(ctx, ec, invoker),
			"blockCode": h.blockCode,
		})
	}

	whenResult := invoker.Invoke(ctx, whenNode.ID, ec)
	if whenResult.IsError() {
		return eval.Ok(map[string]interface{}{
			"passed":    false,
			"message":   h.resolveMessage(ctx, ec, invoker),
			"blockCode": h.blockCode,
		})
	}

	return eval.Ok(map[string]interface{}{
		"passed":         !whenResult.Truthy(),
		"message":        h.resolveMessage(ctx, ec, invoker),
		"submissionOnly": h.n.BoolProp("submissionOnly"),
		"details":        h.n.Properties["details"],
		"blockCode":      h.blockCode,
	})
}

func (h *validationHandler) resolveMessage(ctx context.Context, ec *eval.Context, invoker Invoker) interface{} {
	if msgNode, ok := h.n.NodeProp("message"); ok {
		r := invoker.Invoke(ctx, msgNode.ID, ec)
		if r.IsError() {
			return nil
		}
		return r.Value
	}
	msg, _ := h.n.Prop("message")
	return msg
}

// SubmissionOnly reports whether this validation should be skipped outside
// of SUBMIT, read directly off the node without evaluating it.
func (h *validationHandler) SubmissionOnly() bool {
	return h.n.BoolProp("submissionOnly")
}
