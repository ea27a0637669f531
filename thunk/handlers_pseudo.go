package thunk

import (
	"context"
	"strings"

	engerrors "github.com/lyzr/formengine/errors"
	"github.com/lyzr/formengine/eval"
	"github.com/lyzr/formengine/node"
	"github.com/lyzr/formengine/safety"
)

// postHandler reads a raw POST value. When the associated field has
// multiple:false (the default), a list value is reduced to its first
// non-empty entry (spec §4.5 POST).
type postHandler struct {
	base
	key      string
	fieldID  node.ID
	hasField bool
	nodes    *node.Registry
}

func (h *postHandler) Evaluate(ctx context.Context, ec *eval.Context, invoker Invoker) eval.Result {
	if safety.IsUnsafeKey(h.key) {
		return eval.Fail(engerrors.At(engerrors.Security, string(h.id), "unsafe property key: "+h.key))
	}
	raw, ok := ec.Adapter.Post()[h.key]
	if !ok {
		return eval.Ok(nil)
	}
	if !h.multiple() {
		return eval.Ok(firstNonEmpty(raw))
	}
	return eval.Ok(raw)
}

func (h *postHandler) multiple() bool {
	if !h.hasField {
		return false
	}
	field, ok := h.nodes.Node(h.fieldID)
	if !ok {
		return false
	}
	return field.BoolProp("multiple")
}

// firstNonEmpty reduces a []interface{} to its first entry that is not
// nil and not an empty/whitespace string; a scalar passes through unchanged.
func firstNonEmpty(v interface{}) interface{} {
	list, ok := v.([]interface{})
	if !ok {
		return v
	}
	for _, item := range list {
		if item == nil {
			continue
		}
		if s, isStr := item.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		return item
	}
	return nil
}

// queryHandler, paramsHandler, dataHandler are direct reads from the request
// adapter / context.data, subject to the same safe-key check (spec §4.5).
type queryHandler struct {
	base
	key string
}

func (h *queryHandler) Evaluate(ctx context.Context, ec *eval.Context, invoker Invoker) eval.Result {
	if safety.IsUnsafeKey(h.key) {
		return eval.Fail(engerrors.At(engerrors.Security, string(h.id), "unsafe property key: "+h.key))
	}
	return eval.Ok(ec.Adapter.Query()[h.key])
}

type paramsHandler struct {
	base
	key string
}

func (h *paramsHandler) Evaluate(ctx context.Context, ec *eval.Context, invoker Invoker) eval.Result {
	if safety.IsUnsafeKey(h.key) {
		return eval.Fail(engerrors.At(engerrors.Security, string(h.id), "unsafe property key: "+h.key))
	}
	v, ok := ec.Adapter.Params()[h.key]
	if !ok {
		return eval.Ok(nil)
	}
	return eval.Ok(v)
}

type dataHandler struct {
	base
	key string
}

func (h *dataHandler) Evaluate(ctx context.Context, ec *eval.Context, invoker Invoker) eval.Result {
	if safety.IsUnsafeKey(h.key) {
		return eval.Fail(engerrors.At(engerrors.Security, string(h.id), "unsafe property key: "+h.key))
	}
	return eval.Ok(ec.Data[h.key])
}

// answerLocalHandler resolves a field's value via the waterfall in spec
// §4.5, subject to the action-protects-from-post precedence rule in §4.6.
type answerLocalHandler struct {
	base
	code           string
	fieldID        node.ID
	nodes          *node.Registry
	postPseudoID   node.ID
	hasPostPseudo  bool
}

func (h *answerLocalHandler) Evaluate(ctx context.Context, ec *eval.Context, invoker Invoker) eval.Result {
	if source, ok := ec.Answers.LastMutationSource(h.code); ok && source == eval.SourceAction {
		current, _ := ec.Answers.Get(h.code)
		return eval.Ok(current)
	}

	field, ok := h.nodes.Node(h.fieldID)
	if !ok {
		return eval.Fail(engerrors.At(engerrors.Lookup, string(h.id), "answer field block not found: "+h.code))
	}

	if pipeline, ok := field.NodeProp("formatPipeline"); ok {
		result := invoker.Invoke(ctx, pipeline.ID, ec)
		if !result.IsError() && result.Value != nil {
			ec.Answers.SetResolved(h.code, result.Value)
			return eval.Ok(result.Value)
		}
		if result.IsError() {
			return result
		}
	}

	if h.hasPostPseudo {
		result := invoker.Invoke(ctx, h.postPseudoID, ec)
		if !result.IsError() && result.Value != nil {
			ec.Answers.SetResolved(h.code, result.Value)
			return eval.Ok(result.Value)
		}
	}

	if defaultNode, ok := field.NodeProp("defaultValue"); ok {
		result := invoker.Invoke(ctx, defaultNode.ID, ec)
		if !result.IsError() && result.Value != nil {
			ec.Answers.SetResolved(h.code, result.Value)
			return eval.Ok(result.Value)
		}
	} else if literal, ok := field.Prop("defaultValue"); ok {
		ec.Answers.SetResolved(h.code, literal)
		return eval.Ok(literal)
	}

	ec.Answers.SetResolved(h.code, nil)
	return eval.Ok(nil)
}

// answerRemoteHandler returns the field's current answer, loaded by the
// embedder/session before the request began (spec §4.5).
type answerRemoteHandler struct {
	base
	code string
}

func (h *answerRemoteHandler) Evaluate(ctx context.Context, ec *eval.Context, invoker Invoker) eval.Result {
	current, _ := ec.Answers.Get(h.code)
	return eval.Ok(current)
}
