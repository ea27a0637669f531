// Package engine is the top-level orchestration spec §2 describes as ten
// dataflow steps: it wires Factory -> RegistrationTraverser -> Normalizers
// -> MetadataTraverser -> PseudoNodeTraverser -> Wirings -> ThunkCompiler
// into one Compile call, and exposes the four request-time lifecycle
// transitions (LOAD/ACCESS/ACTION/SUBMIT) plus step rendering as methods on
// the result. Grounded on the teacher's cmd/orchestrator/container wiring
// (one constructor assembling every collaborator a request handler needs)
// and common/bootstrap's Setup/Components pattern for the process-wide
// pieces (function registry, logger).
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/lyzr/formengine/common/telemetry"
	engerrors "github.com/lyzr/formengine/errors"
	"github.com/lyzr/formengine/eval"
	"github.com/lyzr/formengine/formdef"
	"github.com/lyzr/formengine/graph"
	"github.com/lyzr/formengine/node"
	"github.com/lyzr/formengine/normalize"
	"github.com/lyzr/formengine/pseudonode"
	"github.com/lyzr/formengine/registry"
	"github.com/lyzr/formengine/stdfuncs"
	"github.com/lyzr/formengine/thunk"
)

// Option configures Compile.
type Option func(*compileOptions)

type compileOptions struct {
	telemetry *telemetry.Telemetry
}

// WithTelemetry makes Compile and the returned CompiledForm's lifecycle
// methods record their duration through tel (spec §2: "compilation and
// per-request evaluation both call RecordDuration around their top-level
// entry points"). Omit it (the default) to skip instrumentation entirely.
func WithTelemetry(tel *telemetry.Telemetry) Option {
	return func(o *compileOptions) {
		o.telemetry = tel
	}
}

// CompiledForm is a journey compiled for one target step: every collaborator
// the request lifecycle needs to render that step and run its transitions.
type CompiledForm struct {
	Nodes        *node.Registry
	Graph        *graph.Graph
	Meta         *node.MetadataRegistry
	Handlers     *thunk.HandlerRegistry
	JourneyID    node.ID
	TargetStepID node.ID
	targetStep   *node.ASTNode
	tel          *telemetry.Telemetry
}

// Compile runs the full compile-time pipeline (spec §2 steps 1-8) against a
// decoded journey, targeting the step whose raw "id" equals targetStepID.
func Compile(journey formdef.Journey, targetStepID string, opts ...Option) (*CompiledForm, error) {
	options := &compileOptions{}
	for _, opt := range opts {
		opt(options)
	}
	start := time.Now()
	defer func() {
		if options.telemetry != nil {
			options.telemetry.RecordDuration("compile", start)
		}
	}()

	gen := node.NewIDGenerator(node.OriginCompile)
	factory := node.NewFactory(gen)
	nodes := node.NewRegistry()

	root, err := factory.CreateNode(journey, "$")
	if err != nil {
		return nil, fmt.Errorf("engine: factory build: %w", err)
	}
	if root.Type != node.TypeJourney {
		return nil, engerrors.New(engerrors.SchemaError, "journey root must be a Journey node")
	}
	if err := node.RegisterTree(nodes, root, "$"); err != nil {
		return nil, fmt.Errorf("engine: registration: %w", err)
	}

	target := findStep(root, targetStepID)
	if target == nil {
		return nil, engerrors.New(engerrors.SchemaError, fmt.Sprintf("no step with id %q in journey", targetStepID))
	}

	normCtx := &normalize.Context{Gen: gen, Registry: nodes}
	if err := normalize.Run(normCtx, target); err != nil {
		return nil, fmt.Errorf("engine: normalize: %w", err)
	}

	meta := node.NewMetadataRegistry()
	for _, step := range allSteps(root) {
		node.MarkStepSubtree(meta, step, root.ID, step.ID == target.ID)
	}
	node.MarkAncestorChain(meta, root, target.ID)

	traverser := pseudonode.New(gen, nodes)
	if err := traverser.Run(target); err != nil {
		return nil, fmt.Errorf("engine: pseudo-node synthesis: %w", err)
	}

	g := graph.New()
	graph.Wire(g, nodes, root)

	handlers, err := thunk.NewCompiler(nodes, g, meta, target.ID).Compile()
	if err != nil {
		return nil, fmt.Errorf("engine: thunk compile: %w", err)
	}

	return &CompiledForm{
		Nodes:        nodes,
		Graph:        g,
		Meta:         meta,
		Handlers:     handlers,
		JourneyID:    root.ID,
		TargetStepID: target.ID,
		targetStep:   target,
		tel:          options.telemetry,
	}, nil
}

// recordDuration reports operation's elapsed time through the telemetry
// instance supplied via WithTelemetry, if any.
func (f *CompiledForm) recordDuration(operation string, start time.Time) {
	if f.tel != nil {
		f.tel.RecordDuration(operation, start)
	}
}

func findStep(root *node.ASTNode, wantID string) *node.ASTNode {
	var found *node.ASTNode
	node.Walk(root, func(n *node.ASTNode) {
		if found != nil {
			return
		}
		if n.Type == node.TypeStep && n.StringProp("id") == wantID {
			found = n
		}
	})
	return found
}

func allSteps(root *node.ASTNode) []*node.ASTNode {
	var out []*node.ASTNode
	node.Walk(root, func(n *node.ASTNode) {
		if n.Type == node.TypeStep {
			out = append(out, n)
		}
	})
	return out
}

// Invoker returns a ready-to-use thunk.Invoker over this form's compiled
// handlers.
func (f *CompiledForm) Invoker() *thunk.InvocationAdapter {
	return thunk.NewInvocationAdapter(f.Handlers)
}

// transitionIDFor looks up one of the target step's four transition
// properties ("onLoad", "onAccess", "onAction", "onSubmission"), returning
// false if the step does not declare one.
func (f *CompiledForm) transitionIDFor(key string) (node.ID, bool) {
	n, ok := f.targetStep.NodeProp(key)
	if !ok {
		return "", false
	}
	return n.ID, true
}

// Load runs the target step's onLoad transition, if declared. Per spec
// §4.6, LOAD has no "next" — the host always proceeds to Access afterward.
func (f *CompiledForm) Load(ctx context.Context, ec *eval.Context) eval.Result {
	defer f.recordDuration("load", time.Now())
	id, ok := f.transitionIDFor("onLoad")
	if !ok {
		return eval.Ok(map[string]interface{}{"type": "none"})
	}
	return f.Invoker().Invoke(ctx, id, ec)
}

// Access runs the target step's onAccess transition, if declared.
func (f *CompiledForm) Access(ctx context.Context, ec *eval.Context) eval.Result {
	defer f.recordDuration("access", time.Now())
	id, ok := f.transitionIDFor("onAccess")
	if !ok {
		return eval.Ok(map[string]interface{}{"type": "none"})
	}
	return f.Invoker().Invoke(ctx, id, ec)
}

// Action runs the target step's onAction transition, if declared, and
// commits every captured effect before returning — the host's
// responsibility per spec §4.6 ("capture effects, do not commit... the
// host commits them before re-evaluating the step's blocks").
func (f *CompiledForm) Action(ctx context.Context, ec *eval.Context) eval.Result {
	defer f.recordDuration("action", time.Now())
	id, ok := f.transitionIDFor("onAction")
	if !ok {
		return eval.Ok(map[string]interface{}{"type": "none"})
	}
	result := f.Invoker().Invoke(ctx, id, ec)
	if result.IsError() {
		return result
	}
	payload, ok := result.Value.(map[string]interface{})
	if !ok || payload["type"] != "action" {
		return result
	}
	captured, _ := payload["effects"].([]thunk.CapturedEffect)
	for _, effect := range captured {
		if cerr := thunk.CommitCapturedEffect(ctx, ec, effect, eval.SourceAction); cerr != nil {
			return eval.Fail(cerr)
		}
	}
	return result
}

// Submit runs the target step's onSubmission transition, if declared.
// submitValid is the externally-computed validation outcome for the step
// (spec §4.6: "the host has already run the step's in-scope validations");
// it is pushed onto scope as "@submitValid" for the duration of the call.
func (f *CompiledForm) Submit(ctx context.Context, ec *eval.Context, submitValid bool) eval.Result {
	defer f.recordDuration("submit", time.Now())
	id, ok := f.transitionIDFor("onSubmission")
	if !ok {
		return eval.Ok(map[string]interface{}{"type": "none"})
	}
	ec.Scope.Push(eval.Frame{"@submitValid": submitValid})
	defer ec.Scope.Pop()
	return f.Invoker().Invoke(ctx, id, ec)
}

// Render evaluates the target step's full block/property tree — a Step
// result shaped {"id","type","properties":{...,"blocks":[...]}} (spec
// §4.5). Use RenderJourney to also walk its ancestor journeys.
func (f *CompiledForm) Render(ctx context.Context, ec *eval.Context) eval.Result {
	defer f.recordDuration("render", time.Now())
	return f.Invoker().Invoke(ctx, f.TargetStepID, ec)
}

// RenderJourney evaluates the whole journey tree from its root: every
// ancestor journey/step of the target is fully evaluated, every sibling is a
// structural stub (spec §4.5).
func (f *CompiledForm) RenderJourney(ctx context.Context, ec *eval.Context) eval.Result {
	defer f.recordDuration("render_journey", time.Now())
	return f.Invoker().Invoke(ctx, f.JourneyID, ec)
}

// SeedFunctionRegistry returns the default registry with every stdfuncs
// builtin registered — the starting point most embedders extend with their
// own EFFECT/GENERATOR functions before compiling any journey.
func SeedFunctionRegistry() (*registry.FunctionRegistry, error) {
	fr := registry.NewFunctionRegistry()
	if err := stdfuncs.RegisterBuiltins(fr); err != nil {
		return nil, fmt.Errorf("engine: register builtin functions: %w", err)
	}
	return fr, nil
}
