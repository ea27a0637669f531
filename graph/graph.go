// Package graph implements the dependency graph: typed directed edges
// between node ids, topological sort, and cycle detection (spec §4.4).
package graph

import (
	"fmt"

	"github.com/lyzr/formengine/node"
)

// EdgeKind discriminates why one node depends on another.
type EdgeKind string

const (
	// Structural is a parent<->child relationship.
	Structural EdgeKind = "STRUCTURAL"
	// DataFlow is a value dependency: the source's value feeds the target.
	DataFlow EdgeKind = "DATA_FLOW"
	// ControlFlow is conditional gating: the source decides whether the target runs.
	ControlFlow EdgeKind = "CONTROL_FLOW"
	// EffectFlow sequences side effects.
	EffectFlow EdgeKind = "EFFECT_FLOW"
)

// Edge is one typed directed dependency, From -> To, meaning From must be
// evaluated before To.
type Edge struct {
	From     node.ID
	To       node.ID
	Kind     EdgeKind
	Property string // the property name on To that produced this edge
	Index    int    // -1 when not from an indexed (array) property
}

// Graph holds every node id touched by wiring and the typed edges between
// them.
type Graph struct {
	nodeIDs map[node.ID]bool
	out     map[node.ID][]Edge // From -> edges leaving From
	in      map[node.ID][]Edge // To -> edges entering To
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodeIDs: make(map[node.ID]bool),
		out:     make(map[node.ID][]Edge),
		in:      make(map[node.ID][]Edge),
	}
}

// AddNode registers a node id with no edges, a no-op if already present.
func (g *Graph) AddNode(id node.ID) {
	g.nodeIDs[id] = true
}

// AddEdge adds a typed edge from -> to. Both ids are registered as nodes if
// not already present.
func (g *Graph) AddEdge(from, to node.ID, kind EdgeKind, property string, index int) {
	g.AddNode(from)
	g.AddNode(to)
	e := Edge{From: from, To: to, Kind: kind, Property: property, Index: index}
	g.out[from] = append(g.out[from], e)
	g.in[to] = append(g.in[to], e)
}

// Dependencies returns the node ids that must run before id, optionally
// filtered to a single EdgeKind ("" means all kinds).
func (g *Graph) Dependencies(id node.ID, kind EdgeKind) []node.ID {
	var out []node.ID
	for _, e := range g.in[id] {
		if kind != "" && e.Kind != kind {
			continue
		}
		out = append(out, e.From)
	}
	return out
}

// Dependents returns the node ids that depend on id.
func (g *Graph) Dependents(id node.ID, kind EdgeKind) []node.ID {
	var out []node.ID
	for _, e := range g.out[id] {
		if kind != "" && e.Kind != kind {
			continue
		}
		out = append(out, e.To)
	}
	return out
}

// NodeIDs returns every node id registered in the graph.
func (g *Graph) NodeIDs() []node.ID {
	out := make([]node.ID, 0, len(g.nodeIDs))
	for id := range g.nodeIDs {
		out = append(out, id)
	}
	return out
}

// TopoSort returns node ids in dependency order (a node appears after all of
// its DATA_FLOW/CONTROL_FLOW/EFFECT_FLOW/STRUCTURAL dependencies). It
// returns an error if the graph contains a cycle (spec §3 invariant: the
// graph is a DAG at compile time).
func (g *Graph) TopoSort() ([]node.ID, error) {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[node.ID]int, len(g.nodeIDs))
	var order []node.ID
	var cyclePath []node.ID

	var visit func(id node.ID) error
	visit = func(id node.ID) error {
		switch color[id] {
		case black:
			return nil
		case gray:
			cyclePath = append(cyclePath, id)
			return fmt.Errorf("dependency graph cycle detected at %s", id)
		}
		color[id] = gray
		for _, e := range g.in[id] {
			if err := visit(e.From); err != nil {
				return err
			}
		}
		color[id] = black
		order = append(order, id)
		return nil
	}

	for id := range g.nodeIDs {
		if err := visit(id); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// Pending returns every node id registered since baseline was captured — the
// view an overlay hands back via getPendingNodeIds() (spec §4.10).
func (g *Graph) Pending(baseline map[node.ID]bool) []node.ID {
	var out []node.ID
	for id := range g.nodeIDs {
		if !baseline[id] {
			out = append(out, id)
		}
	}
	return out
}

// Snapshot captures the current set of node ids, for later use with Pending.
func (g *Graph) Snapshot() map[node.ID]bool {
	out := make(map[node.ID]bool, len(g.nodeIDs))
	for id := range g.nodeIDs {
		out[id] = true
	}
	return out
}
