// Package pseudonode synthesizes pseudo-nodes for every distinct request-time
// data source a step's references touch (spec §4.3).
package pseudonode

import (
	"github.com/lyzr/formengine/node"
)

// Traverser scans a compiled step's AST and registers one pseudo-node per
// distinct (namespace, key) pair observed in REFERENCE paths.
type Traverser struct {
	Gen      *node.IDGenerator
	Registry *node.Registry
}

// New creates a Traverser.
func New(gen *node.IDGenerator, reg *node.Registry) *Traverser {
	return &Traverser{Gen: gen, Registry: reg}
}

// Run walks step and synthesizes pseudo-nodes for every reference with a
// literal (non-dynamic) key. References with a dynamic key node are left for
// the Reference handler to resolve at evaluation time against whatever
// pseudo-node synthesis did manage to register.
func (t *Traverser) Run(step *node.ASTNode) error {
	fieldCodes := localFieldCodes(step)
	blockByCode := blocksByCode(step)

	var firstErr error
	node.Walk(step, func(n *node.ASTNode) {
		if firstErr != nil {
			return
		}
		if n.Type != node.TypeExpression || n.Subtype != string(node.ExprReference) {
			return
		}
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
			// Dynamic key: synthesized lazily (or not at all) at eval time.
			return
		}
		if err := t.synthesize(namespace, key, fieldCodes, blockByCode); err != nil {
			firstErr = err
		}
	})
	return firstErr
}

func (t *Traverser) synthesize(namespace, key string, localCodes map[string]bool, blockByCode map[string]*node.ASTNode) error {
	switch namespace {
	case "post":
		return t.register(node.PseudoPost, key, blockByCode[key])
	case "query":
		return t.register(node.PseudoQuery, key, nil)
	case "params":
		return t.register(node.PseudoParams, key, nil)
	case "data":
		return t.register(node.PseudoData, key, nil)
	case "answers":
		if localCodes[key] {
			return t.register(node.PseudoAnswerLocal, key, blockByCode[key])
		}
		return t.register(node.PseudoAnswerRemote, key, nil)
	default:
		return nil
	}
}

func (t *Traverser) register(kind node.PseudoKind, key string, fieldBlock *node.ASTNode) error {
	if _, exists := t.Registry.PseudoByScope(kind, key); exists {
		return nil
	}
	p := &node.PseudoNode{
		ID:   t.Gen.Next(node.CategoryPseudo),
		Kind: kind,
		Key:  key,
	}
	if fieldBlock != nil {
		p.FieldNodeID = fieldBlock.ID
	}
	_, err := t.Registry.RegisterPseudo(p)
	return err
}

func localFieldCodes(step *node.ASTNode) map[string]bool {
	codes := make(map[string]bool)
	node.Walk(step, func(n *node.ASTNode) {
		if n.Type == node.TypeBlock && n.Subtype == string(node.BlockField) {
			if code := n.StringProp("code"); code != "" {
				codes[code] = true
			}
		}
	})
	return codes
}

func blocksByCode(step *node.ASTNode) map[string]*node.ASTNode {
	out := make(map[string]*node.ASTNode)
	node.Walk(step, func(n *node.ASTNode) {
		if n.Type == node.TypeBlock && n.Subtype == string(node.BlockField) {
			if code := n.StringProp("code"); code != "" {
				out[code] = n
			}
		}
	})
	return out
}
