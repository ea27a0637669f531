package normalize

import "github.com/lyzr/formengine/node"

// resolveSelfReferences rewrites every REFERENCE path whose first token is
// "self" — ["self", code, ...rest] after addSelfValueToFields, or a bare
// ["self", ...] outside any field's validate subtree — by replacing that
// first token with "answers", the namespace AnswerLocal/AnswerRemote pseudo
// synthesis and the Reference handler understand (spec §4.2 pass 3).
type resolveSelfReferences struct{}

func (resolveSelfReferences) Name() string { return "ResolveSelfReferences" }

func (resolveSelfReferences) Apply(ctx *Context, step *node.ASTNode) error {
	node.Walk(step, func(n *node.ASTNode) {
		if n.Type != node.TypeExpression || n.Subtype != string(node.ExprReference) {
			return
		}
		pathVal, ok := n.Properties["path"]
		if !ok {
			return
		}
		path, ok := pathVal.([]interface{})
		if !ok || len(path) == 0 {
			return
		}
		if token, ok := path[0].(string); ok && token == "self" {
			rewritten := make([]interface{}, len(path))
			copy(rewritten, path)
			rewritten[0] = "answers"
			n.Properties["path"] = rewritten
		}
	})
	return nil
}
