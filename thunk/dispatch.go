package thunk

import (
	"fmt"

	"github.com/lyzr/formengine/node"
)

// buildHandler constructs the concrete Handler for one compiled AST node,
// dispatching on its (Type, Subtype) (spec §4.5's handler catalog).
func (c *Compiler) buildHandler(n *node.ASTNode) (Handler, error) {
	b := base{id: n.ID}

	switch n.Type {
	case node.TypeJourney:
		isAncestor := false
		if md, ok := c.Meta.Get(n.ID); ok {
			isAncestor = md.IsAncestor
		}
		return &journeyHandler{base: b, n: n, isAncestor: isAncestor}, nil

	case node.TypeStep:
		return &stepHandler{base: b, n: n, onTarget: n.ID == c.Targets.TargetStepID}, nil

	case node.TypeBlock:
		onTarget := false
		if md, ok := c.Meta.Get(n.ID); ok {
			onTarget = md.OnTargetStep
		}
		return &blockHandler{base: b, n: n, meta: c.Meta, onTarget: onTarget}, nil

	case node.TypeExpression:
		return c.buildExpressionHandler(b, n)

	case node.TypePredicate:
		return c.buildPredicateHandler(b, n)

	case node.TypeTransition:
		return c.buildTransitionHandler(b, n)

	case node.TypeOutcome:
		return c.buildOutcomeHandler(b, n)
	}

	return nil, fmt.Errorf("thunk: no handler for node type %q (%s)", n.Type, n.ID)
}

func (c *Compiler) buildExpressionHandler(b base, n *node.ASTNode) (Handler, error) {
	switch node.ExpressionType(n.Subtype) {
	case node.ExprReference:
		if _, hasBase := n.Properties["base"]; hasBase {
			return &baseReferenceHandler{base: b, n: n}, nil
		}
		return &referenceHandler{base: b, n: n, nodes: c.Nodes}, nil
	case node.ExprPipeline:
		return &pipelineHandler{base: b, n: n}, nil
	case node.ExprFormat:
		return &formatHandler{base: b, n: n}, nil
	case node.ExprIterate:
		return &iterateHandler{base: b, n: n, compiler: c}, nil
	case node.ExprConditional:
		return &conditionalHandler{base: b, n: n}, nil
	case node.ExprNext:
		return &nextHandler{base: b, n: n}, nil
	case node.ExprValidation:
		return &validationHandler{base: b, n: n, blockCode: c.ownerBlockCode(n.ID)}, nil
	case node.ExprFunction:
		// functions is left nil here; functionHandler.Evaluate resolves
		// through ec.Functions (the per-request registry) and
		// ComputeIsAsync nil-guards its optional compile-time lookup.
		return &functionHandler{base: b, n: n}, nil
	}
	return nil, fmt.Errorf("thunk: no handler for expression subtype %q (%s)", n.Subtype, n.ID)
}

func (c *Compiler) buildPredicateHandler(b base, n *node.ASTNode) (Handler, error) {
	switch node.PredicateType(n.Subtype) {
	case node.PredicateTest:
		return &testHandler{base: b, n: n}, nil
	case node.PredicateAnd:
		return &andHandler{base: b, n: n}, nil
	case node.PredicateOr:
		return &orHandler{base: b, n: n}, nil
	case node.PredicateXor:
		return &xorHandler{base: b, n: n}, nil
	case node.PredicateNot:
		return &notHandler{base: b, n: n}, nil
	}
	return nil, fmt.Errorf("thunk: no handler for predicate subtype %q (%s)", n.Subtype, n.ID)
}

func (c *Compiler) buildTransitionHandler(b base, n *node.ASTNode) (Handler, error) {
	switch node.TransitionType(n.Subtype) {
	case node.TransitionLoad:
		return &loadHandler{base: b, n: n}, nil
	case node.TransitionAccess:
		return &accessHandler{base: b, n: n}, nil
	case node.TransitionAction:
		return &actionHandler{base: b, n: n}, nil
	case node.TransitionSubmit:
		return &submitHandler{base: b, n: n}, nil
	}
	return nil, fmt.Errorf("thunk: no handler for transition subtype %q (%s)", n.Subtype, n.ID)
}

func (c *Compiler) buildOutcomeHandler(b base, n *node.ASTNode) (Handler, error) {
	switch node.OutcomeType(n.Subtype) {
	case node.OutcomeRedirect:
		return &redirectHandler{base: b, n: n}, nil
	case node.OutcomeThrowError:
		return &throwErrorHandler{base: b, n: n}, nil
	}
	return nil, fmt.Errorf("thunk: no handler for outcome subtype %q (%s)", n.Subtype, n.ID)
}

// buildPseudoHandler constructs the concrete Handler for one pseudo-node
// (spec §4.3, §4.5).
func (c *Compiler) buildPseudoHandler(p *node.PseudoNode) (Handler, error) {
	b := base{id: p.ID}

	switch p.Kind {
	case node.PseudoPost:
		return &postHandler{base: b, key: p.Key, fieldID: p.FieldNodeID, hasField: p.FieldNodeID != "", nodes: c.Nodes}, nil
	case node.PseudoQuery:
		return &queryHandler{base: b, key: p.Key}, nil
	case node.PseudoParams:
		return &paramsHandler{base: b, key: p.Key}, nil
	case node.PseudoData:
		return &dataHandler{base: b, key: p.Key}, nil
	case node.PseudoAnswerLocal:
		postPseudoID, hasPost := "", false
		if post, ok := c.Nodes.PseudoByScope(node.PseudoPost, p.Key); ok {
			postPseudoID, hasPost = string(post.ID), true
		}
		return &answerLocalHandler{
			base:          b,
			code:          p.Key,
			fieldID:       p.FieldNodeID,
			nodes:         c.Nodes,
			postPseudoID:  node.ID(postPseudoID),
			hasPostPseudo: hasPost,
		}, nil
	case node.PseudoAnswerRemote:
		return &answerRemoteHandler{base: b, code: p.Key}, nil
	}
	return nil, fmt.Errorf("thunk: no handler for pseudo-node kind %q (%s)", p.Kind, p.ID)
}

// ownerBlockCode looks up the "code" property of id's structural parent, the
// owning Block for a VALIDATION node reached through its "validate" list.
// Returns "" when metadata was not recorded for id (e.g. a validation
// outside the metadata-marked step subtree) or the parent has no code.
func (c *Compiler) ownerBlockCode(id node.ID) string {
	md, ok := c.Meta.Get(id)
	if !ok {
		return ""
	}
	parent, ok := c.Nodes.Node(md.ParentID)
	if !ok {
		return ""
	}
	return parent.StringProp("code")
}
