package overlay_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyzr/formengine/builder"
	"github.com/lyzr/formengine/graph"
	"github.com/lyzr/formengine/node"
	"github.com/lyzr/formengine/overlay"
)

func TestMaterialize_RegistersAndWiresARealSubtree(t *testing.T) {
	nodes := node.NewRegistry()
	g := graph.New()

	runtimeGen := node.NewIDGenerator(node.OriginRuntime)
	ov := overlay.New(runtimeGen, nodes, g)

	raw := builder.Function("double", "TRANSFORMER", builder.Reference("scope", "@item"))

	root, err := ov.Materialize(raw, "$.iterate[0]")
	require.NoError(t, err)
	assert.Equal(t, node.TypeExpression, root.Type)

	got, ok := nodes.Node(root.ID)
	require.True(t, ok, "the materialized root must be registered in the parent registry")
	assert.Same(t, root, got)

	assert.Contains(t, g.NodeIDs(), root.ID, "the materialized root must be wired into the parent graph")
}

func TestMaterialize_AllocatesFromRuntimeOriginDisjointFromCompile(t *testing.T) {
	compileGen := node.NewIDGenerator(node.OriginCompile)
	nodes := node.NewRegistry()
	g := graph.New()

	compiled, err := node.NewFactory(compileGen).CreateNode(builder.Reference("data", "x"), "$")
	require.NoError(t, err)
	require.NoError(t, node.RegisterTree(nodes, compiled, "$"))

	runtimeGen := node.NewIDGenerator(node.OriginRuntime)
	ov := overlay.New(runtimeGen, nodes, g)

	root, err := ov.Materialize(builder.Reference("data", "y"), "$.iterate[0]")
	require.NoError(t, err)

	assert.NotEqual(t, compiled.ID, root.ID)
	assert.Contains(t, string(root.ID), string(node.OriginRuntime))
}

func TestPendingNodeIDs_TracksEveryMaterializedNode(t *testing.T) {
	runtimeGen := node.NewIDGenerator(node.OriginRuntime)
	nodes := node.NewRegistry()
	g := graph.New()
	ov := overlay.New(runtimeGen, nodes, g)

	raw := builder.Test(builder.Reference("scope", "@item"), builder.Function("isBlank", "CONDITION"))
	root, err := ov.Materialize(raw, "$.iterate[0]")
	require.NoError(t, err)

	pending := ov.PendingNodeIDs()
	assert.Contains(t, pending, root.ID)
	assert.GreaterOrEqual(t, len(pending), 3, "the TEST predicate, its subject, and its condition must all be tracked")
}

func TestFlush_ClearsPendingWithoutUnregisteringNodes(t *testing.T) {
	runtimeGen := node.NewIDGenerator(node.OriginRuntime)
	nodes := node.NewRegistry()
	g := graph.New()
	ov := overlay.New(runtimeGen, nodes, g)

	root, err := ov.Materialize(builder.Reference("scope", "@item"), "$.iterate[0]")
	require.NoError(t, err)
	require.NotEmpty(t, ov.PendingNodeIDs())

	ov.Flush()
	assert.Empty(t, ov.PendingNodeIDs())

	_, ok := nodes.Node(root.ID)
	assert.True(t, ok, "Flush only resets the overlay's own bookkeeping; materialized nodes stay in the parent registry")
}

func TestMaterialize_EachIterationGetsAFreshID(t *testing.T) {
	runtimeGen := node.NewIDGenerator(node.OriginRuntime)
	nodes := node.NewRegistry()
	g := graph.New()
	ov := overlay.New(runtimeGen, nodes, g)

	raw := builder.Reference("scope", "@item")

	first, err := ov.Materialize(raw, "$.iterate[0]")
	require.NoError(t, err)
	ov.Flush()

	second, err := ov.Materialize(raw, "$.iterate[1]")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID, "re-materializing the same template for the next item must not collide ids")
}
