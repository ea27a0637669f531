package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyzr/formengine/builder"
	"github.com/lyzr/formengine/graph"
	"github.com/lyzr/formengine/node"
)

func TestTopoSort_OrdersDependenciesBeforeDependents(t *testing.T) {
	g := graph.New()
	g.AddEdge("a", "b", graph.DataFlow, "x", -1)
	g.AddEdge("b", "c", graph.DataFlow, "x", -1)

	order, err := g.TopoSort()
	require.NoError(t, err)

	pos := map[node.ID]int{}
	for i, id := range order {
		pos[id] = i
	}
	assert.Less(t, pos["a"], pos["b"])
	assert.Less(t, pos["b"], pos["c"])
}

func TestTopoSort_DetectsCycle(t *testing.T) {
	g := graph.New()
	g.AddEdge("a", "b", graph.DataFlow, "x", -1)
	g.AddEdge("b", "a", graph.DataFlow, "x", -1)

	_, err := g.TopoSort()
	assert.Error(t, err)
}

func TestWire_PredicateOperandsWireAsDataFlow(t *testing.T) {
	gen := node.NewIDGenerator(node.OriginCompile)
	factory := node.NewFactory(gen)

	raw := builder.And(builder.Not(builder.Reference("answers", "a")), builder.Not(builder.Reference("answers", "b")))
	root, err := factory.CreateNode(raw, "$")
	require.NoError(t, err)

	reg := node.NewRegistry()
	require.NoError(t, node.RegisterTree(reg, root, "$"))

	g := graph.New()
	graph.Wire(g, reg, root)

	deps := g.Dependencies(root.ID, graph.DataFlow)
	assert.Len(t, deps, 2, "AND wires each operand as a DATA_FLOW dependency")
}

func TestWire_DependenciesOrderedByTopoSort(t *testing.T) {
	gen := node.NewIDGenerator(node.OriginCompile)
	factory := node.NewFactory(gen)

	raw := builder.Not(builder.Reference("answers", "a"))
	root, err := factory.CreateNode(raw, "$")
	require.NoError(t, err)

	reg := node.NewRegistry()
	require.NoError(t, node.RegisterTree(reg, root, "$"))

	g := graph.New()
	graph.Wire(g, reg, root)

	order, err := g.TopoSort()
	require.NoError(t, err)

	pos := map[node.ID]int{}
	for i, id := range order {
		pos[id] = i
	}
	// The NOT node's operand (a Reference) must precede the NOT node itself.
	child, ok := root.NodeProp("operand")
	require.True(t, ok)
	assert.Less(t, pos[child.ID], pos[root.ID])
}
