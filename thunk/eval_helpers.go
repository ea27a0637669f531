package thunk

import (
	"context"

	engerrors "github.com/lyzr/formengine/errors"
	"github.com/lyzr/formengine/eval"
	"github.com/lyzr/formengine/node"
)

// evalValue recursively evaluates a property value: an *ASTNode is invoked,
// a []interface{} is mapped element-wise, anything else passes through as a
// literal. Used by Block/Step/Journey handlers to produce an evaluated view
// model from a node's whole Properties map.
func evalValue(ctx context.Context, ec *eval.Context, invoker Invoker, v interface{}) (interface{}, *engerrors.Error) {
	switch val := v.(type) {
	case *node.ASTNode:
		r := invoker.Invoke(ctx, val.ID, ec)
		if r.IsError() {
			return nil, r.Err
		}
		return r.Value, nil
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			resolved, err := evalValue(ctx, ec, invoker, item)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	default:
		return v, nil
	}
}

// evalProperties evaluates every entry of props except the names in skip.
func evalProperties(ctx context.Context, ec *eval.Context, invoker Invoker, props map[string]interface{}, skip map[string]bool) (map[string]interface{}, *engerrors.Error) {
	out := make(map[string]interface{}, len(props))
	for key, val := range props {
		if skip[key] {
			out[key] = val
			continue
		}
		resolved, err := evalValue(ctx, ec, invoker, val)
		if err != nil {
			return nil, err
		}
		out[key] = resolved
	}
	return out, nil
}
