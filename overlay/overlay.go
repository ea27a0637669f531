// Package overlay implements the RuntimeOverlay (spec §4.8): a scoped
// extension to an already-compiled form that materializes fresh AST nodes
// at evaluation time, for the one construct whose shape is only known once
// it has a concrete list to run over — Iterate.
//
// A compiled form's node.Registry and graph.Graph are plain additive maps
// keyed by node id, and every id a RuntimeOverlay allocates comes from an
// OriginRuntime generator (spec §4.1) disjoint from the compile-time
// generator's tag, so writing new nodes/edges directly into the parent's
// registry and graph cannot collide with anything compile-time wiring
// produced. That makes "local writes, parent read-fallthrough" the same
// store rather than two layered ones — this overlay is a thin id-scoping
// and materialization helper, not a copy-on-write snapshot. It is not safe
// for two concurrent requests to materialize into the same parent registry
// through two different generators (see New).
package overlay

import (
	"fmt"

	"github.com/lyzr/formengine/graph"
	"github.com/lyzr/formengine/node"
	"github.com/lyzr/formengine/pseudonode"
)

// Overlay materializes runtime-only nodes into a parent registry and graph.
type Overlay struct {
	Gen     *node.IDGenerator
	Nodes   *node.Registry
	Graph   *graph.Graph
	factory *node.Factory

	pending []node.ID
}

// New creates an Overlay writing into the given parent registry and graph,
// allocating ids from gen. gen must be supplied by the caller (typically one
// held for the lifetime of a single request, via eval.Context.OverlayGen)
// rather than freshly constructed per Overlay: two Overlays with
// independently-reset counters would both mint "runtime_ast:1" and collide
// in the shared parent registry the instant either materializes more than
// once. One generator per request keeps every id it mints unique within
// that request; it does NOT make concurrent requests against the same
// compiled form safe to interleave through this registry/graph pair — see
// the package doc.
func New(gen *node.IDGenerator, parentNodes *node.Registry, parentGraph *graph.Graph) *Overlay {
	return &Overlay{
		Gen:     gen,
		Nodes:   parentNodes,
		Graph:   parentGraph,
		factory: node.NewFactory(gen),
	}
}

// Materialize transforms one raw JSON record (an Iterate's yield or
// predicate template) into a registered, wired subtree rooted at a fresh
// node id, and synthesizes any pseudo-nodes its references need.
func (o *Overlay) Materialize(raw map[string]interface{}, path string) (*node.ASTNode, error) {
	root, err := o.factory.CreateNode(raw, path)
	if err != nil {
		return nil, fmt.Errorf("overlay: materialize at %s: %w", path, err)
	}
	if err := node.RegisterTree(o.Nodes, root, path); err != nil {
		return nil, fmt.Errorf("overlay: register at %s: %w", path, err)
	}
	if err := pseudonode.New(o.Gen, o.Nodes).Run(root); err != nil {
		return nil, fmt.Errorf("overlay: pseudo-node synthesis at %s: %w", path, err)
	}
	graph.Wire(o.Graph, o.Nodes, root)

	o.pending = append(o.pending, collectIDs(root)...)
	return root, nil
}

// PendingNodeIDs returns every node id this overlay has materialized so far,
// for the caller to compile handlers over and later invalidate.
func (o *Overlay) PendingNodeIDs() []node.ID {
	out := make([]node.ID, len(o.pending))
	copy(out, o.pending)
	return out
}

// Flush clears this overlay's bookkeeping of materialized ids. The nodes,
// edges and handlers already written stay in the parent stores — there is
// nothing to roll back, only the overlay's own tracking to reset before
// reuse for the next item in an Iterate loop.
func (o *Overlay) Flush() {
	o.pending = o.pending[:0]
}

func collectIDs(root *node.ASTNode) []node.ID {
	var ids []node.ID
	node.Walk(root, func(n *node.ASTNode) {
		ids = append(ids, n.ID)
	})
	return ids
}
