// Package normalize implements the three fixed-order, idempotent in-place
// passes that run after the NodeFactory and before pseudo-node synthesis
// (spec §4.2). Normalizers must produce deterministic ids and must not
// observe evaluation state — they run once, at compile time, over the
// static AST.
package normalize

import (
	"github.com/lyzr/formengine/node"
)

// Context is the shared state every normalizer pass needs: the generator
// that allocates any newly synthesized node, and the registry those new
// nodes must be inserted into.
type Context struct {
	Gen      *node.IDGenerator
	Registry *node.Registry
}

// Pass is one normalization step. Passes run in the fixed order returned by
// Passes(), each over the same step subtree.
type Pass interface {
	Name() string
	Apply(ctx *Context, step *node.ASTNode) error
}

// Passes returns the normalizers in their required fixed order.
func Passes() []Pass {
	return []Pass{
		addSelfValueToFields{},
		convertFormattersToPipeline{},
		resolveSelfReferences{},
	}
}

// Run applies every pass, in order, to step.
func Run(ctx *Context, step *node.ASTNode) error {
	for _, pass := range Passes() {
		if err := pass.Apply(ctx, step); err != nil {
			return err
		}
	}
	return nil
}

// fieldBlocks returns every FIELD block reachable under root.
func fieldBlocks(root *node.ASTNode) []*node.ASTNode {
	var out []*node.ASTNode
	node.Walk(root, func(n *node.ASTNode) {
		if n.Type == node.TypeBlock && n.Subtype == string(node.BlockField) {
			out = append(out, n)
		}
	})
	return out
}
