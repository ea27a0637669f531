package thunk

import (
	"context"

	engerrors "github.com/lyzr/formengine/errors"
	"github.com/lyzr/formengine/eval"
	"github.com/lyzr/formengine/node"
	"github.com/lyzr/formengine/registry"
)

// CommitCapturedEffect runs a previously-captured EFFECT function for real.
// It is exported for hosts that hold onto an ACTION transition's captured
// effects list across a request boundary (spec §4.6: the host commits them
// before re-evaluating the step's blocks).
func CommitCapturedEffect(ctx context.Context, ec *eval.Context, effect CapturedEffect, source string) *engerrors.Error {
	return commitEffect(ctx, ec, effect, source)
}

// commitEffect runs a captured EFFECT function for real, handing it an
// EffectContext scoped to this request's mutable data and answer store
// (spec §4.6). Any answer it writes is recorded with the given source.
func commitEffect(ctx context.Context, ec *eval.Context, effect CapturedEffect, source string) *engerrors.Error {
	effectCtx := registry.EffectContext{
		Context: ctx,
		RunData: ec.Data,
		SetAnswer: func(code string, value interface{}) {
			ec.SetAnswer(code, value, source, nil)
		},
	}
	args := make([]interface{}, 0, len(effect.Args)+1)
	args = append(args, effectCtx)
	args = append(args, effect.Args...)

	if _, err := effect.Fn.Evaluate(args...); err != nil {
		return engerrors.Wrap(engerrors.EvaluationFailed, "", "effect "+effect.Name+" failed", err)
	}
	return nil
}

// runEffects evaluates and commits every FUNCTION node in effects, in order.
func runEffects(ctx context.Context, ec *eval.Context, invoker Invoker, effects []*node.ASTNode, source string) *engerrors.Error {
	for _, effectNode := range effects {
		r := invoker.Invoke(ctx, effectNode.ID, ec)
		if r.IsError() {
			return r.Err
		}
		captured, ok := r.Value.(CapturedEffect)
		if !ok {
			continue
		}
		if err := commitEffect(ctx, ec, captured, source); err != nil {
			return err
		}
	}
	return nil
}

// captureEffects evaluates every FUNCTION node in effects without
// committing them, returning the CapturedEffect list for the caller to
// commit later (spec §4.6 ACTION: "capture effects, do not commit").
func captureEffects(ctx context.Context, ec *eval.Context, invoker Invoker, effects []*node.ASTNode) ([]CapturedEffect, *engerrors.Error) {
	out := make([]CapturedEffect, 0, len(effects))
	for _, effectNode := range effects {
		r := invoker.Invoke(ctx, effectNode.ID, ec)
		if r.IsError() {
			return nil, r.Err
		}
		if captured, ok := r.Value.(CapturedEffect); ok {
			out = append(out, captured)
		}
	}
	return out, nil
}

// firstMatchOutcome invokes each outcome (NEXT/REDIRECT/THROW_ERROR) node in
// order, returning the first whose "when" guard is truthy (or absent). A nil
// Value with no error from an outcome handler means its guard was falsy —
// try the next one. Falls back to {"type":"none"}.
func firstMatchOutcome(ctx context.Context, ec *eval.Context, invoker Invoker, outcomes []*node.ASTNode) eval.Result {
	for _, o := range outcomes {
		r := invoker.Invoke(ctx, o.ID, ec)
		if r.IsError() {
			return r
		}
		if r.Value == nil {
			continue
		}
		if m, ok := r.Value.(map[string]interface{}); ok && m["type"] == "none" {
			continue
		}
		return r
	}
	return eval.Ok(map[string]interface{}{"type": "none"})
}

// loadHandler implements the onLoad transition (spec §4.6): run every
// effect, in order, committing each as it runs.
type loadHandler struct {
	base
	n *node.ASTNode
}

func (h *loadHandler) Evaluate(ctx context.Context, ec *eval.Context, invoker Invoker) eval.Result {
	ec.Scope.Push(eval.Frame{"@transitionType": "load"})
	defer ec.Scope.Pop()

	if err := runEffects(ctx, ec, invoker, h.n.NodeSliceProp("effects"), eval.SourceLoad); err != nil {
		return eval.Fail(err)
	}
	return eval.Ok(map[string]interface{}{"type": "none"})
}

// accessHandler implements the onAccess transition (spec §4.6): if guards is
// present and falsy, return the first matching outcome from "next" without
// running effects; otherwise commit effects, then evaluate "next".
type accessHandler struct {
	base
	n *node.ASTNode
}

func (h *accessHandler) Evaluate(ctx context.Context, ec *eval.Context, invoker Invoker) eval.Result {
	ec.Scope.Push(eval.Frame{"@transitionType": "access"})
	defer ec.Scope.Pop()

	if guards, ok := h.n.NodeProp("guards"); ok {
		r := invoker.Invoke(ctx, guards.ID, ec)
		if r.IsError() {
			return r
		}
		if !r.Truthy() {
			return firstMatchOutcome(ctx, ec, invoker, h.n.NodeSliceProp("next"))
		}
	}

	if err := runEffects(ctx, ec, invoker, h.n.NodeSliceProp("effects"), eval.SourceAccess); err != nil {
		return eval.Fail(err)
	}
	return firstMatchOutcome(ctx, ec, invoker, h.n.NodeSliceProp("next"))
}

// actionHandler implements the onAction transition (spec §4.6): if "when" is
// falsy, no-op. Otherwise capture effects WITHOUT committing them — the host
// commits them before re-evaluating the step's blocks, so freshly-committed
// answers are visible to validation and rendering in the same response.
type actionHandler struct {
	base
	n *node.ASTNode
}

func (h *actionHandler) Evaluate(ctx context.Context, ec *eval.Context, invoker Invoker) eval.Result {
	whenNode, hasWhen := h.n.NodeProp("when")
	if hasWhen {
		r := invoker.Invoke(ctx, whenNode.ID, ec)
		if r.IsError() {
			return r
		}
		if !r.Truthy() {
			return eval.Ok(map[string]interface{}{"type": "none"})
		}
	}

	captured, err := captureEffects(ctx, ec, invoker, h.n.NodeSliceProp("effects"))
	if err != nil {
		return eval.Fail(err)
	}
	return eval.Ok(map[string]interface{}{"type": "action", "effects": captured})
}

// submitHandler implements the onSubmission transition (spec §4.6): if
// "when" is falsy, no-op. Otherwise branch on "validate": when true, the
// host has already run the step's in-scope validations and pushed their
// outcome onto the scope stack as "@submitValid" before invoking this
// handler; the branch taken is onValid/onInvalid. When "validate" is false,
// the branch is unconditionally onAlways. Each branch record captures
// effects (to be committed by the host alongside the chosen branch) and
// evaluates its own "next" outcome list.
type submitHandler struct {
	base
	n *node.ASTNode
}

func (h *submitHandler) Evaluate(ctx context.Context, ec *eval.Context, invoker Invoker) eval.Result {
	whenNode, hasWhen := h.n.NodeProp("when")
	if hasWhen {
		r := invoker.Invoke(ctx, whenNode.ID, ec)
		if r.IsError() {
			return r
		}
		if !r.Truthy() {
			return eval.Ok(map[string]interface{}{"type": "none"})
		}
	}

	branchKey := "onAlways"
	if h.n.BoolProp("validate") {
		branchKey = "onInvalid"
		if valid, ok := ec.Scope.Get("@submitValid"); ok {
			if validBool, ok := valid.(bool); ok && validBool {
				branchKey = "onValid"
			}
		}
	}

	branchVal, ok := h.n.Properties[branchKey]
	if !ok {
		return eval.Ok(map[string]interface{}{"type": "none"})
	}
	branch, ok := branchVal.(map[string]interface{})
	if !ok {
		return eval.Ok(map[string]interface{}{"type": "none"})
	}

	effectNodes, _ := branch["effects"].([]interface{})
	effects := make([]*node.ASTNode, 0, len(effectNodes))
	for _, e := range effectNodes {
		if n, ok := e.(*node.ASTNode); ok {
			effects = append(effects, n)
		}
	}
	// Unlike ACTION, SUBMIT commits its chosen branch's effects immediately
	// (spec §4.6) — validation already ran against the pre-effect state via
	// the host-supplied "@submitValid" before this handler was invoked.
	if err := runEffects(ctx, ec, invoker, effects, eval.SourceSubmit); err != nil {
		return eval.Fail(err)
	}

	nextNodes, _ := branch["next"].([]interface{})
	outcomes := make([]*node.ASTNode, 0, len(nextNodes))
	for _, o := range nextNodes {
		if n, ok := o.(*node.ASTNode); ok {
			outcomes = append(outcomes, n)
		}
	}
	outcomeResult := firstMatchOutcome(ctx, ec, invoker, outcomes)
	if outcomeResult.IsError() {
		return outcomeResult
	}

	return eval.Ok(map[string]interface{}{
		"type":    "submit",
		"branch":  branchKey,
		"outcome": outcomeResult.Value,
	})
}
