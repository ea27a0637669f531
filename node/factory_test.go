package node_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyzr/formengine/builder"
	"github.com/lyzr/formengine/node"
)

func TestCreateNode_UniqueIDs(t *testing.T) {
	gen := node.NewIDGenerator(node.OriginCompile)
	factory := node.NewFactory(gen)

	journey := builder.Journey("j1",
		builder.Step("step-a", builder.FieldBlock("a", nil)),
		builder.Step("step-b", builder.FieldBlock("b", nil)),
	)

	root, err := factory.CreateNode(journey, "$")
	require.NoError(t, err)

	seen := map[node.ID]bool{}
	node.Walk(root, func(n *node.ASTNode) {
		assert.False(t, seen[n.ID], "duplicate id %s", n.ID)
		seen[n.ID] = true
	})
	assert.Greater(t, len(seen), 1)
}

func TestCreateNode_MissingType(t *testing.T) {
	gen := node.NewIDGenerator(node.OriginCompile)
	factory := node.NewFactory(gen)

	_, err := factory.CreateNode(map[string]interface{}{"id": "x"}, "$")
	assert.Error(t, err)
}

func TestCreateNode_UnknownType(t *testing.T) {
	gen := node.NewIDGenerator(node.OriginCompile)
	factory := node.NewFactory(gen)

	_, err := factory.CreateNode(map[string]interface{}{"type": "Nonsense"}, "$")
	assert.Error(t, err)
}

func TestCreateNode_RequiredFieldMissing(t *testing.T) {
	gen := node.NewIDGenerator(node.OriginCompile)
	factory := node.NewFactory(gen)

	// FUNCTION requires "name" and "functionType".
	raw := map[string]interface{}{
		"type":           "Expression",
		"expressionType": "FUNCTION",
		"functionType":   "CONDITION",
	}
	_, err := factory.CreateNode(raw, "$")
	assert.Error(t, err)
}

func TestCreateNode_LiteralPassesThrough(t *testing.T) {
	gen := node.NewIDGenerator(node.OriginCompile)
	factory := node.NewFactory(gen)

	outcome := builder.Redirect("/done", nil)
	n, err := factory.CreateNode(outcome, "$")
	require.NoError(t, err)

	goTo, ok := n.Prop("goto")
	require.True(t, ok)
	assert.Equal(t, "/done", goTo)
}

func TestCreateNode_SubtypeDiscriminators(t *testing.T) {
	gen := node.NewIDGenerator(node.OriginCompile)
	factory := node.NewFactory(gen)

	block, err := factory.CreateNode(builder.FieldBlock("email", nil), "$")
	require.NoError(t, err)
	assert.Equal(t, node.TypeBlock, block.Type)
	assert.Equal(t, string(node.BlockField), block.Subtype)

	pred, err := factory.CreateNode(builder.And(), "$")
	require.NoError(t, err)
	assert.Equal(t, node.TypePredicate, pred.Type)
	assert.Equal(t, string(node.PredicateAnd), pred.Subtype)
}
