package thunk

import (
	"context"
	"fmt"

	engerrors "github.com/lyzr/formengine/errors"
	"github.com/lyzr/formengine/eval"
	"github.com/lyzr/formengine/node"
	"github.com/lyzr/formengine/overlay"
)

// iterateHandler implements ITERATE (spec §4.5, §4.8): evaluate input to a
// list, then for each item materialize the iterator's yield/predicate
// template through a RuntimeOverlay, compile it, invoke it with "@item"/
// "@index" pushed onto scope, and combine per the iterator kind
// (MAP/FILTER/FIND). The template is NOT wired statically — its DATA_FLOW
// dependencies only exist once materialized per item.
type iterateHandler struct {
	base
	n        *node.ASTNode
	compiler *Compiler
}

func (h *iterateHandler) Evaluate(ctx context.Context, ec *eval.Context, invoker Invoker) eval.Result {
	inputNode, ok := h.n.NodeProp("input")
	if !ok {
		return eval.Fail(engerrors.At(engerrors.InvalidNode, string(h.id), "iterate missing \"input\""))
	}
	inputResult := invoker.Invoke(ctx, inputNode.ID, ec)
	if inputResult.IsError() {
		return inputResult
	}
	items, ok := inputResult.Value.([]interface{})
	if !ok {
		return eval.Fail(engerrors.At(engerrors.EvaluationFailed, string(h.id), "iterate input did not evaluate to a list"))
	}

	iteratorRaw, _ := h.n.Properties["iterator"].(map[string]interface{})
	kind, _ := iteratorRaw["kind"].(string)

	var templateKey string
	switch node.IteratorKind(kind) {
	case node.IteratorMap:
		templateKey = "yield"
	case node.IteratorFilter, node.IteratorFind:
		templateKey = "predicate"
	default:
		return eval.Fail(engerrors.At(engerrors.InvalidNode, string(h.id), "iterate has unknown iterator kind "+kind))
	}
	templateRaw, ok := iteratorRaw[templateKey].(map[string]interface{})
	if !ok {
		return eval.Fail(engerrors.At(engerrors.InvalidNode, string(h.id), "iterate iterator missing \""+templateKey+"\""))
	}

	results := make([]interface{}, 0, len(items))
	ov := overlay.New(ec.OverlayGen, h.compiler.Nodes, h.compiler.Graph)

	for index, item := range items {
		path := fmt.Sprintf("%s.iterator.%s[%d]", h.id, templateKey, index)

		materialized, err := ov.Materialize(templateRaw, path)
		if err != nil {
			return eval.Fail(engerrors.Wrap(engerrors.EvaluationFailed, string(h.id), "iterate materialization failed", err))
		}

		ids := ov.PendingNodeIDs()
		if err := h.compiler.CompileIDs(h.compiler.Handlers, ids); err != nil {
			return eval.Fail(engerrors.Wrap(engerrors.EvaluationFailed, string(h.id), "iterate per-item compile failed", err))
		}

		ec.Scope.Push(eval.Frame{"@item": item, "@index": index, "@type": "iterate"})
		itemResult := invoker.Invoke(ctx, materialized.ID, ec)
		ec.Scope.Pop()
		ec.Cache.Invalidate(ids)
		ov.Flush()

		if itemResult.IsError() {
			return itemResult
		}

		switch node.IteratorKind(kind) {
		case node.IteratorMap:
			results = append(results, itemResult.Value)
		case node.IteratorFilter:
			if itemResult.Truthy() {
				results = append(results, item)
			}
		case node.IteratorFind:
			if itemResult.Truthy() {
				return eval.Ok(item)
			}
		}
	}

	if node.IteratorKind(kind) == node.IteratorFind {
		return eval.Ok(nil)
	}
	return eval.Ok(results)
}
