package thunk

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	engerrors "github.com/lyzr/formengine/errors"
	"github.com/lyzr/formengine/eval"
	"github.com/lyzr/formengine/node"
)

var formatPlaceholder = regexp.MustCompile(`%\d+`)

// pipelineHandler implements PIPELINE (spec §4.5): evaluate input, then feed
// the value through each step left-to-right, pushing scope {'@value':
// currentValue, '@type': 'pipeline'} for the duration of each step. Stops at
// the first error; scope is always popped.
type pipelineHandler struct {
	base
	n *node.ASTNode
}

func (h *pipelineHandler) Evaluate(ctx context.Context, ec *eval.Context, invoker Invoker) eval.Result {
	input, ok := h.n.NodeProp("input")
	if !ok {
		return eval.Fail(engerrors.At(engerrors.InvalidNode, string(h.id), "pipeline missing \"input\""))
	}
	result := invoker.Invoke(ctx, input.ID, ec)
	if result.IsError() {
		return result
	}
	current := result.Value

	for _, step := range h.n.NodeSliceProp("steps") {
		ec.Scope.Push(eval.Frame{"@value": current, "@type": "pipeline"})
		stepResult := invoker.Invoke(ctx, step.ID, ec)
		ec.Scope.Pop()
		if stepResult.IsError() {
			return stepResult
		}
		current = stepResult.Value
	}
	return eval.Ok(current)
}

func (h *pipelineHandler) ComputeIsAsync(depsAsync []bool) bool {
	for _, a := range depsAsync {
		if a {
			return true
		}
	}
	return false
}

// formatHandler implements FORMAT (spec §4.5): evaluate every argument
// (concurrently when async), substitute %1..%N in the template; a
// missing/nil argument becomes the empty string.
type formatHandler struct {
	base
	n *node.ASTNode
}

func (h *formatHandler) Evaluate(ctx context.Context, ec *eval.Context, invoker Invoker) eval.Result {
	template := h.n.StringProp("template")
	args := h.n.NodeSliceProp("arguments")

	ids := make([]node.ID, len(args))
	for i, a := range args {
		ids[i] = a.ID
	}
	results := invoker.InvokeAll(ctx, ids, ec, true)

	for i, r := range results {
		if r.IsError() {
			return r
		}
		placeholder := fmt.Sprintf("%%%d", i+1)
		template = strings.ReplaceAll(template, placeholder, stringify(r.Value))
	}

	// Any remaining "%N" placeholder with no supplied argument -> empty string.
	template = formatPlaceholder.ReplaceAllString(template, "")

	return eval.Ok(template)
}

func (h *formatHandler) ComputeIsAsync(depsAsync []bool) bool {
	for _, a := range depsAsync {
		if a {
			return true
		}
	}
	return false
}

func stringify(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
