package normalize

import "github.com/lyzr/formengine/node"

// addSelfValueToFields ensures validation expressions whose subject is
// Self() — a REFERENCE with path ["self"] — have the containing field's code
// attached as path ["self", code] before wiring, so the predicate's subject
// is fully qualified (spec §4.2 pass 1).
type addSelfValueToFields struct{}

func (addSelfValueToFields) Name() string { return "AddSelfValueToFields" }

func (addSelfValueToFields) Apply(ctx *Context, step *node.ASTNode) error {
	for _, field := range fieldBlocks(step) {
		code := field.StringProp("code")
		if code == "" {
			continue
		}
		for _, validation := range field.NodeSliceProp("validate") {
			node.Walk(validation, func(n *node.ASTNode) {
				attachSelfCode(n, code)
			})
		}
	}
	return nil
}

func attachSelfCode(n *node.ASTNode, code string) {
	if n.Type != node.TypeExpression || n.Subtype != string(node.ExprReference) {
		return
	}
	pathVal, ok := n.Properties["path"]
	if !ok {
		return
	}
	path, ok := pathVal.([]interface{})
	if !ok || len(path) != 1 {
		return
	}
	token, ok := path[0].(string)
	if !ok || token != "self" {
		return
	}
	n.Properties["path"] = []interface{}{"self", code}
}
