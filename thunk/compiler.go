package thunk

import (
	"fmt"

	"github.com/lyzr/formengine/graph"
	"github.com/lyzr/formengine/node"
)

// Compiler builds one Handler per compiled node and computes each handler's
// isAsync flag bottom-up (spec §4.5 "Compile sequence").
type Compiler struct {
	Nodes   *node.Registry
	Graph   *graph.Graph
	Meta    *node.MetadataRegistry
	Targets *StepTargets

	// Handlers is the registry Compile() builds into; Iterate handlers hold
	// a reference to the Compiler so they can compile freshly materialized
	// per-item nodes into this same table (spec §4.8).
	Handlers *HandlerRegistry
}

// StepTargets tells handlers which step is the one being rendered/submitted,
// needed by Block/Step/Journey handlers to decide what to fully evaluate
// versus what to evaluate only for its validation-relevant subset.
type StepTargets struct {
	TargetStepID node.ID
}

// NewCompiler creates a Compiler over a node registry, its wired graph, and
// the metadata recorded by the MetadataTraverser (spec §2 step 5).
func NewCompiler(nodes *node.Registry, g *graph.Graph, meta *node.MetadataRegistry, targetStepID node.ID) *Compiler {
	return &Compiler{Nodes: nodes, Graph: g, Meta: meta, Targets: &StepTargets{TargetStepID: targetStepID}}
}

// Compile builds a handler for every AST node and pseudo-node known to the
// registry, registers them into a fresh HandlerRegistry, then computes
// isAsync leaves-to-roots via the graph's topological order.
func (c *Compiler) Compile() (*HandlerRegistry, error) {
	handlers := NewHandlerRegistry()
	c.Handlers = handlers

	for _, id := range c.Nodes.AllPseudoIDs() {
		p, _ := c.Nodes.Pseudo(id)
		h, err := c.buildPseudoHandler(p)
		if err != nil {
			return nil, err
		}
		if err := handlers.Register(h); err != nil {
			return nil, err
		}
	}

	for _, id := range c.Nodes.AllNodeIDs() {
		n, _ := c.Nodes.Node(id)
		h, err := c.buildHandler(n)
		if err != nil {
			return nil, err
		}
		if err := handlers.Register(h); err != nil {
			return nil, err
		}
	}

	if err := c.computeAsync(handlers); err != nil {
		return nil, err
	}

	return handlers, nil
}

// CompileIDs builds and registers handlers for exactly the given ids (the
// RuntimeOverlay's scoped compile-handlers phase), then recomputes isAsync
// over the whole graph so a parent referencing a freshly materialized node
// sees an accurate flag.
func (c *Compiler) CompileIDs(handlers *HandlerRegistry, ids []node.ID) error {
	c.Handlers = handlers
	for _, id := range ids {
		if p, ok := c.Nodes.Pseudo(id); ok {
			h, err := c.buildPseudoHandler(p)
			if err != nil {
				return err
			}
			if err := handlers.Register(h); err != nil {
				return err
			}
			continue
		}
		n, ok := c.Nodes.Node(id)
		if !ok {
			return fmt.Errorf("thunk: node %s not found for scoped compilation", id)
		}
		h, err := c.buildHandler(n)
		if err != nil {
			return err
		}
		if err := handlers.Register(h); err != nil {
			return err
		}
	}
	return c.computeAsync(handlers)
}

// computeAsync walks the graph in topological order and derives each
// handler's isAsync flag from its DATA_FLOW dependencies, letting handlers
// that implement AsyncComputer override the default disjunction rule.
func (c *Compiler) computeAsync(handlers *HandlerRegistry) error {
	order, err := c.Graph.TopoSort()
	if err != nil {
		return err
	}

	for _, id := range order {
		h, ok := handlers.Get(id)
		if !ok {
			continue
		}

		deps := c.Graph.Dependencies(id, graph.DataFlow)
		depsAsync := make([]bool, len(deps))
		for i, dep := range deps {
			depsAsync[i] = handlers.IsAsync(dep)
		}

		var async bool
		if computer, ok := h.(AsyncComputer); ok {
			async = computer.ComputeIsAsync(depsAsync)
		} else {
			for _, a := range depsAsync {
				async = async || a
			}
		}
		handlers.SetAsync(id, async)
	}
	return nil
}
