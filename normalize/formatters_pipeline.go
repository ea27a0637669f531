package normalize

import "github.com/lyzr/formengine/node"

// convertFormattersToPipeline lifts a field's "formatters" array into a
// derived "formatPipeline" expression: Pipeline(input=POST(code),
// steps=formatters). The "formatters" property itself is left untouched —
// it is bypassed during rendering and applied only at submission (spec §4.2
// pass 2). formatPipeline is never authored directly (spec §3 invariant).
type convertFormattersToPipeline struct{}

func (convertFormattersToPipeline) Name() string { return "ConvertFormattersToPipeline" }

func (c convertFormattersToPipeline) Apply(ctx *Context, step *node.ASTNode) error {
	for _, field := range fieldBlocks(step) {
		formatters, ok := field.Properties["formatters"]
		if !ok {
			continue
		}
		steps, ok := formatters.([]interface{})
		if !ok || len(steps) == 0 {
			continue
		}
		code := field.StringProp("code")
		if code == "" {
			continue
		}

		input := &node.ASTNode{
			ID:      ctx.Gen.Next(node.CategoryAST),
			Type:    node.TypeExpression,
			Subtype: string(node.ExprReference),
			Properties: map[string]interface{}{
				"path": []interface{}{"post", code},
			},
		}
		if err := ctx.Registry.RegisterNode(input, field.StringProp("code")+".formatPipeline.input"); err != nil {
			return err
		}

		pipeline := &node.ASTNode{
			ID:      ctx.Gen.Next(node.CategoryAST),
			Type:    node.TypeExpression,
			Subtype: string(node.ExprPipeline),
			Properties: map[string]interface{}{
				"input": input,
				"steps": steps,
			},
		}
		if err := ctx.Registry.RegisterNode(pipeline, code+".formatPipeline"); err != nil {
			return err
		}

		field.Properties["formatPipeline"] = pipeline
	}
	return nil
}
