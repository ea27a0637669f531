package graph

import "github.com/lyzr/formengine/node"

// Wire walks root and adds every edge the wiring catalog (spec §4.4)
// specifies for each node kind encountered: the full compile-time build.
// reg is consulted to resolve a REFERENCE's producing pseudo-node.
func Wire(g *Graph, reg *node.Registry, root *node.ASTNode) {
	node.Walk(root, func(n *node.ASTNode) {
		WireNode(g, reg, n)
	})
}

// WireNodes wires only the given ids — the scoped mode a RuntimeOverlay uses
// to add edges for a freshly materialized subtree without re-walking
// everything the parent already wired.
func WireNodes(g *Graph, reg *node.Registry, ids []node.ID) {
	for _, id := range ids {
		if n, ok := reg.Node(id); ok {
			WireNode(g, reg, n)
		}
	}
}

// WireNode adds the structural edge to every direct child of n, plus the
// kind-specific DATA_FLOW/CONTROL_FLOW/EFFECT_FLOW edges the wiring catalog
// specifies. Wiring is purely structural: it declares evaluation order, not
// whether an edge is taken at run time.
func WireNode(g *Graph, reg *node.Registry, n *node.ASTNode) {
	g.AddNode(n.ID)

	for _, child := range node.Children(n) {
		g.AddEdge(child.ID, n.ID, Structural, "", -1)
	}

	switch n.Type {
	case node.TypeExpression:
		wireExpression(g, reg, n)
	case node.TypePredicate:
		wirePredicate(g, n)
	case node.TypeTransition:
		wireTransition(g, n)
	case node.TypeOutcome:
		wireOutcome(g, n)
	case node.TypeBlock:
		wireBlock(g, n)
	}
}

func wireExpression(g *Graph, reg *node.Registry, n *node.ASTNode) {
	switch n.Subtype {
	case string(node.ExprReference):
		wireReference(g, reg, n)
	case string(node.ExprConditional):
		addChildEdge(g, n, "predicate", DataFlow)
		addChildEdge(g, n, "thenValue", DataFlow)
		addChildEdge(g, n, "elseValue", DataFlow)
	case string(node.ExprPipeline):
		addChildEdge(g, n, "input", DataFlow)
		addIndexedSliceEdges(g, n, "steps", DataFlow)
	case string(node.ExprFormat):
		addIndexedSliceEdges(g, n, "arguments", DataFlow)
	case string(node.ExprIterate):
		addChildEdge(g, n, "input", DataFlow)
		addIndexedSliceEdges(g, n, "fallback", DataFlow)
		// The iterator's yield/predicate template is not wired statically
		// (spec §4.4): it is instantiated and wired fresh per item by the
		// overlay.
	case string(node.ExprFunction):
		addIndexedSliceEdges(g, n, "arguments", DataFlow)
	case string(node.ExprNext):
		addChildEdge(g, n, "when", ControlFlow)
		addChildEdge(g, n, "goto", DataFlow)
	case string(node.ExprValidation):
		addChildEdge(g, n, "when", ControlFlow)
		addChildEdge(g, n, "message", DataFlow)
	}
}

func wirePredicate(g *Graph, n *node.ASTNode) {
	switch n.Subtype {
	case string(node.PredicateTest):
		addChildEdge(g, n, "subject", DataFlow)
		addChildEdge(g, n, "condition", DataFlow)
	case string(node.PredicateAnd), string(node.PredicateOr), string(node.PredicateXor):
		addIndexedSliceEdges(g, n, "operands", DataFlow)
	case string(node.PredicateNot):
		addChildEdge(g, n, "operand", DataFlow)
	}
}

func wireTransition(g *Graph, n *node.ASTNode) {
	addChildEdge(g, n, "when", ControlFlow)
	addChildEdge(g, n, "guards", ControlFlow)
	addIndexedSliceEdges(g, n, "effects", EffectFlow)
	addIndexedSliceEdges(g, n, "next", ControlFlow)
	addChildEdge(g, n, "validate", DataFlow)

	// SUBMIT's effects/next live nested inside its onValid/onInvalid/
	// onAlways branch records rather than as top-level properties.
	for _, branchKey := range []string{"onValid", "onInvalid", "onAlways"} {
		branch, ok := n.Properties[branchKey].(map[string]interface{})
		if !ok {
			continue
		}
		if effects, ok := branch["effects"].([]interface{}); ok {
			for i, e := range effects {
				if child, ok := e.(*node.ASTNode); ok {
					g.AddEdge(child.ID, n.ID, EffectFlow, branchKey+".effects", i)
				}
			}
		}
		if next, ok := branch["next"].([]interface{}); ok {
			for i, o := range next {
				if child, ok := o.(*node.ASTNode); ok {
					g.AddEdge(child.ID, n.ID, ControlFlow, branchKey+".next", i)
				}
			}
		}
	}
}

func wireOutcome(g *Graph, n *node.ASTNode) {
	addChildEdge(g, n, "when", ControlFlow)
	switch n.Subtype {
	case string(node.OutcomeThrowError):
		addChildEdge(g, n, "message", DataFlow)
	case string(node.OutcomeRedirect):
		addChildEdge(g, n, "goto", DataFlow)
	}
}

func wireBlock(g *Graph, n *node.ASTNode) {
	addChildEdge(g, n, "dependent", ControlFlow)
	addIndexedSliceEdges(g, n, "validate", DataFlow)
	addChildEdge(g, n, "formatPipeline", DataFlow)
}

// wireReference adds the pseudo-node -> reference DATA_FLOW edge for every
// reference whose (namespace, key) has a synthesized producer. A reference
// with a dynamic key (no literal key at this path position) has no
// statically wired producer; it resolves at evaluation time.
func wireReference(g *Graph, reg *node.Registry, n *node.ASTNode) {
	pathVal, ok := n.Properties["path"]
	if !ok {
		return
	}
	path, ok := pathVal.([]interface{})
	if !ok || len(path) < 2 {
		return
	}
	namespace, ok := path[0].(string)
	if !ok {
		return
	}
	key, ok := path[1].(string)
	if !ok {
		return
	}

	kind, hasProducer := pseudoKindFor(namespace, reg, key)
	if !hasProducer {
		return
	}
	p, found := reg.PseudoByScope(kind, key)
	if !found {
		return
	}
	g.AddEdge(p.ID, n.ID, DataFlow, "path", -1)
}

// pseudoKindFor resolves which pseudo kind a (namespace, key) reference maps
// to. POST/QUERY/PARAMS pseudo-nodes have no producers of their own (spec
// §4.4: "raw inputs"); they are still wired as producers of the references
// that consume them, so hasProducer is always true once the namespace is
// recognized — except "answers", where the caller must already know whether
// the field was registered ANSWER_LOCAL or ANSWER_REMOTE, both of which are
// looked up the same way via reg.PseudoByScope.
func pseudoKindFor(namespace string, reg *node.Registry, key string) (node.PseudoKind, bool) {
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
		if _, ok := reg.PseudoByScope(node.PseudoAnswerLocal, key); ok {
			return node.PseudoAnswerLocal, true
		}
		return node.PseudoAnswerRemote, true
	default:
		return "", false
	}
}

func addChildEdge(g *Graph, n *node.ASTNode, property string, kind EdgeKind) {
	child, ok := n.NodeProp(property)
	if !ok {
		return
	}
	g.AddEdge(child.ID, n.ID, kind, property, -1)
}

func addIndexedSliceEdges(g *Graph, n *node.ASTNode, property string, kind EdgeKind) {
	for i, child := range n.NodeSliceProp(property) {
		g.AddEdge(child.ID, n.ID, kind, property, i)
	}
}
