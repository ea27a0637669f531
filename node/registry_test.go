package node_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyzr/formengine/node"
)

func TestRegistry_DuplicateNodeRegistration(t *testing.T) {
	reg := node.NewRegistry()
	n := &node.ASTNode{ID: "compile_ast:1", Type: node.TypeStep, Properties: map[string]interface{}{}}

	require.NoError(t, reg.RegisterNode(n, "$"))
	err := reg.RegisterNode(n, "$")
	assert.Error(t, err)
}

func TestRegistry_PseudoByScope_SharesOneNodePerKey(t *testing.T) {
	reg := node.NewRegistry()
	gen := node.NewIDGenerator(node.OriginCompile)

	p1 := &node.PseudoNode{ID: gen.Next(node.CategoryPseudo), Kind: node.PseudoAnswerLocal, Key: "email"}
	registered1, err := reg.RegisterPseudo(p1)
	require.NoError(t, err)
	assert.Same(t, p1, registered1)

	p2 := &node.PseudoNode{ID: gen.Next(node.CategoryPseudo), Kind: node.PseudoAnswerLocal, Key: "email"}
	registered2, err := reg.RegisterPseudo(p2)
	require.NoError(t, err)
	assert.Same(t, p1, registered2, "second registration for the same (kind,key) must return the first")

	found, ok := reg.PseudoByScope(node.PseudoAnswerLocal, "email")
	require.True(t, ok)
	assert.Same(t, p1, found)
}

func TestRegistry_NodeLookupMiss(t *testing.T) {
	reg := node.NewRegistry()
	_, ok := reg.Node("compile_ast:999")
	assert.False(t, ok)
}

func TestRegistry_Size(t *testing.T) {
	reg := node.NewRegistry()
	gen := node.NewIDGenerator(node.OriginCompile)

	n := &node.ASTNode{ID: gen.Next(node.CategoryAST), Type: node.TypeStep, Properties: map[string]interface{}{}}
	require.NoError(t, reg.RegisterNode(n, "$"))

	nodes, pseudos := reg.Size()
	assert.Equal(t, 1, nodes)
	assert.Equal(t, 0, pseudos)
}
