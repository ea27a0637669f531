package thunk

import (
	"context"
	"strings"

	engerrors "github.com/lyzr/formengine/errors"
	"github.com/lyzr/formengine/eval"
	"github.com/lyzr/formengine/node"
	"github.com/lyzr/formengine/safety"
)

// referenceHandler implements REFERENCE (spec §4.5). path[0] is the
// namespace; path[1] is the key, which may be a literal string or a dynamic
// AST node; any remaining segments are walked into the resolved value with
// the safe property walker.
type referenceHandler struct {
	base
	n     *node.ASTNode
	nodes *node.Registry
}

func (h *referenceHandler) Evaluate(ctx context.Context, ec *eval.Context, invoker Invoker) eval.Result {
	pathVal, _ := h.n.Properties["path"]
	path, _ := pathVal.([]interface{})
	if len(path) < 2 {
		return eval.Fail(engerrors.At(engerrors.InvalidNode, string(h.id), "reference path must have at least [namespace, key]"))
	}

	namespace, ok := path[0].(string)
	if !ok {
		return eval.Fail(engerrors.At(engerrors.InvalidNode, string(h.id), "reference namespace must be a string"))
	}

	key, rest, err := h.resolveKey(ctx, ec, invoker, path[1], path[2:])
	if err != nil {
		return eval.Fail(err)
	}

	base, producerErr := h.resolveBase(ctx, ec, invoker, namespace, key)
	if producerErr != nil {
		return eval.Fail(producerErr)
	}

	if len(rest) == 0 {
		return eval.Ok(base)
	}

	resolved, unsafeKey := safety.WalkPath(base, rest)
	if unsafeKey != "" {
		return eval.Fail(engerrors.At(engerrors.Security, string(h.id), "unsafe property key: "+unsafeKey))
	}
	return eval.Ok(resolved)
}

// resolveKey handles a dynamic key: when path[1] is itself a node, it is
// evaluated, expected to be a string, then split on '.' to reconstitute the
// effective path (spec §4.5).
func (h *referenceHandler) resolveKey(ctx context.Context, ec *eval.Context, invoker Invoker, keySegment interface{}, tail []interface{}) (string, []interface{}, *engerrors.Error) {
	if dyn, ok := keySegment.(*node.ASTNode); ok {
		result := invoker.Invoke(ctx, dyn.ID, ec)
		if result.IsError() {
			return "", nil, result.Err
		}
		s, ok := result.Value.(string)
		if !ok {
			return "", nil, engerrors.At(engerrors.EvaluationFailed, string(h.id), "dynamic reference key did not evaluate to a string")
		}
		segments := strings.Split(s, ".")
		key := segments[0]
		rest := make([]interface{}, 0, len(segments)-1+len(tail))
		for _, seg := range segments[1:] {
			rest = append(rest, seg)
		}
		rest = append(rest, tail...)
		return key, rest, nil
	}

	key, ok := keySegment.(string)
	if !ok {
		return "", nil, engerrors.At(engerrors.InvalidNode, string(h.id), "reference key must be a string or node")
	}
	return key, tail, nil
}

// resolveBase finds the pseudo-node producer for (namespace, key) and
// invokes it; failing that, falls back directly to the request adapter or
// answers map (spec §4.5 (b)).
func (h *referenceHandler) resolveBase(ctx context.Context, ec *eval.Context, invoker Invoker, namespace, key string) (interface{}, *engerrors.Error) {
	if safety.IsUnsafeKey(key) {
		return nil, engerrors.At(engerrors.Security, string(h.id), "unsafe property key: "+key)
	}

	kind, ok := pseudoKindForNamespace(namespace, h.nodes, key)
	if ok {
		if p, found := h.nodes.PseudoByScope(kind, key); found {
			result := invoker.Invoke(ctx, p.ID, ec)
			if result.IsError() {
				return nil, result.Err
			}
			return result.Value, nil
		}
	}

	switch namespace {
	case "post":
		return firstNonEmpty(ec.Adapter.Post()[key]), nil
	case "query":
		return ec.Adapter.Query()[key], nil
	case "params":
		return ec.Adapter.Params()[key], nil
	case "data":
		return ec.Data[key], nil
	case "answers":
		current, _ := ec.Answers.Get(key)
		return current, nil
	case "scope":
		// The conventions TEST/PIPELINE/ITERATE push onto the scope stack
		// ("@value", "@item", "@index", "@submitValid", ...) are readable
		// back by name through this namespace.
		v, _ := ec.Scope.Get(key)
		return v, nil
	default:
		return nil, nil
	}
}

func pseudoKindForNamespace(namespace string, nodes *node.Registry, key string) (node.PseudoKind, bool) {
	switch namespace {
	case "post":
		return node.PseudoPost, true
	case "query":
		return node.PseudoQuery, true
	case "params":
		return node.PseudoParams, true
	case "data":
		return node.PseudoData, true
	case "answers":
		if _, ok := nodes.PseudoByScope(node.PseudoAnswerLocal, key); ok {
			return node.PseudoAnswerLocal, true
		}
		if _, ok := nodes.PseudoByScope(node.PseudoAnswerRemote, key); ok {
			return node.PseudoAnswerRemote, true
		}
		return "", false
	default:
		return "", false
	}
}

// baseReferenceHandler implements the BaseReference variant: when a
// reference has a "base" expression, evaluate it and walk the remaining path
// into its result instead of resolving through a pseudo-node (spec §4.5).
type baseReferenceHandler struct {
	base
	n *node.ASTNode
}

func (h *baseReferenceHandler) Evaluate(ctx context.Context, ec *eval.Context, invoker Invoker) eval.Result {
	baseNode, ok := h.n.NodeProp("base")
	if !ok {
		return eval.Fail(engerrors.At(engerrors.InvalidNode, string(h.id), "base reference missing \"base\""))
	}
	baseResult := invoker.Invoke(ctx, baseNode.ID, ec)
	if baseResult.IsError() {
		return baseResult
	}

	pathVal, _ := h.n.Properties["path"]
	path, _ := pathVal.([]interface{})
	resolved, unsafeKey := safety.WalkPath(baseResult.Value, path)
	if unsafeKey != "" {
		return eval.Fail(engerrors.At(engerrors.Security, string(h.id), "unsafe property key: "+unsafeKey))
	}
	return eval.Ok(resolved)
}
