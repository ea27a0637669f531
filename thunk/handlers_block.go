package thunk

import (
	"context"

	engerrors "github.com/lyzr/formengine/errors"
	"github.com/lyzr/formengine/eval"
	"github.com/lyzr/formengine/node"
)

// blockHandler implements Block (spec §4.5). A field block on the target
// step has every property evaluated recursively except "formatters", which
// is preserved verbatim for submission. A block off the target step only
// evaluates the validation-relevant subset {code, validate, dependent}. When
// the block has "dependent", it is evaluated first; if falsy, "validate" is
// replaced with an empty list.
type blockHandler struct {
	base
	n        *node.ASTNode
	meta     *node.MetadataRegistry
	onTarget bool
}

var blockSkipProps = map[string]bool{"formatters": true}

func (h *blockHandler) Evaluate(ctx context.Context, ec *eval.Context, invoker Invoker) eval.Result {
	if h.onTarget {
		return h.evaluateFull(ctx, ec, invoker)
	}
	return h.evaluateValidationSubset(ctx, ec, invoker)
}

func (h *blockHandler) evaluateFull(ctx context.Context, ec *eval.Context, invoker Invoker) eval.Result {
	props := h.n.Properties

	gated, err := h.applyDependentGate(ctx, ec, invoker, props)
	if err != nil {
		return eval.Fail(err)
	}

	evaluated, err := evalProperties(ctx, ec, invoker, gated, blockSkipProps)
	if err != nil {
		return eval.Fail(err)
	}

	return eval.Ok(map[string]interface{}{
		"id":         string(h.n.ID),
		"type":       string(h.n.Type),
		"blockType":  h.n.Subtype,
		"variant":    h.n.StringProp("variant"),
		"properties": evaluated,
	})
}

func (h *blockHandler) evaluateValidationSubset(ctx context.Context, ec *eval.Context, invoker Invoker) eval.Result {
	subset := map[string]interface{}{
		"code": h.n.Properties["code"],
	}
	if v, ok := h.n.Properties["validate"]; ok {
		subset["validate"] = v
	}
	if v, ok := h.n.Properties["dependent"]; ok {
		subset["dependent"] = v
	}

	gated, err := h.applyDependentGate(ctx, ec, invoker, subset)
	if err != nil {
		return eval.Fail(err)
	}
	evaluated, err := evalProperties(ctx, ec, invoker, gated, nil)
	if err != nil {
		return eval.Fail(err)
	}
	return eval.Ok(map[string]interface{}{
		"id":         string(h.n.ID),
		"type":       string(h.n.Type),
		"blockType":  h.n.Subtype,
		"properties": evaluated,
	})
}

// applyDependentGate evaluates "dependent" first, if present; when falsy it
// replaces "validate" with an empty list in a shallow copy of props.
func (h *blockHandler) applyDependentGate(ctx context.Context, ec *eval.Context, invoker Invoker, props map[string]interface{}) (map[string]interface{}, *engerrors.Error) {
	dependentNode, ok := props["dependent"].(*node.ASTNode)
	if !ok {
		return props, nil
	}
	result := invoker.Invoke(ctx, dependentNode.ID, ec)
	if result.IsError() {
		return props, result.Err
	}
	if result.Truthy() {
		return props, nil
	}

	copied := make(map[string]interface{}, len(props))
	for k, v := range props {
		copied[k] = v
	}
	copied["validate"] = []interface{}{}
	return copied, nil
}
