package thunk

import (
	"context"

	"github.com/lyzr/formengine/eval"
	"github.com/lyzr/formengine/node"
)

// transitionProps are excluded from Step/Journey evaluation — transitions
// are invoked by the host lifecycle, never through these handlers (spec
// §4.5).
var transitionProps = map[string]bool{
	"onLoad": true, "onAccess": true, "onAction": true, "onSubmission": true,
}

// stepHandler implements Step: the target step evaluates its full block
// tree; any other step (reachable only structurally, e.g. through a shared
// ancestor journey) evaluates to a structural stub (spec §4.5).
type stepHandler struct {
	base
	n        *node.ASTNode
	onTarget bool
}

func (h *stepHandler) Evaluate(ctx context.Context, ec *eval.Context, invoker Invoker) eval.Result {
	if !h.onTarget {
		return eval.Ok(map[string]interface{}{
			"id":   string(h.n.ID),
			"type": string(h.n.Type),
		})
	}
	evaluated, err := evalProperties(ctx, ec, invoker, h.n.Properties, transitionProps)
	if err != nil {
		return eval.Fail(err)
	}
	return eval.Ok(map[string]interface{}{
		"id":         string(h.n.ID),
		"type":       string(h.n.Type),
		"properties": evaluated,
	})
}

// journeyHandler implements Journey: evaluates all non-transition properties
// for ancestor journeys of the target step, structural-only for others
// (spec §4.5).
type journeyHandler struct {
	base
	n            *node.ASTNode
	isAncestor   bool
}

func (h *journeyHandler) Evaluate(ctx context.Context, ec *eval.Context, invoker Invoker) eval.Result {
	if !h.isAncestor {
		return eval.Ok(map[string]interface{}{
			"id":   string(h.n.ID),
			"type": string(h.n.Type),
		})
	}
	evaluated, err := evalProperties(ctx, ec, invoker, h.n.Properties, transitionProps)
	if err != nil {
		return eval.Fail(err)
	}
	return eval.Ok(map[string]interface{}{
		"id":         string(h.n.ID),
		"type":       string(h.n.Type),
		"properties": evaluated,
	})
}
