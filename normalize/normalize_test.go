package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyzr/formengine/builder"
	"github.com/lyzr/formengine/node"
	"github.com/lyzr/formengine/normalize"
)

func buildStep(t *testing.T, step builder.M) (*node.ASTNode, *node.Registry, *normalize.Context) {
	t.Helper()
	gen := node.NewIDGenerator(node.OriginCompile)
	factory := node.NewFactory(gen)
	root, err := factory.CreateNode(step, "$")
	require.NoError(t, err)

	reg := node.NewRegistry()
	require.NoError(t, node.RegisterTree(reg, root, "$"))

	return root, reg, &normalize.Context{Gen: gen, Registry: reg}
}

func findField(t *testing.T, root *node.ASTNode, code string) *node.ASTNode {
	t.Helper()
	var found *node.ASTNode
	node.Walk(root, func(n *node.ASTNode) {
		if n.Type == node.TypeBlock && n.Subtype == string(node.BlockField) && n.StringProp("code") == code {
			found = n
		}
	})
	require.NotNil(t, found, "field block %q not found", code)
	return found
}

func referencePath(n *node.ASTNode) []interface{} {
	path, _ := n.Properties["path"].([]interface{})
	return path
}

// TestAddSelfValueToFields_AttachesCodeToTopLevelSelf confirms a bare Self()
// reference used directly as a validation subject gets the field's own code
// spliced into its path.
func TestAddSelfValueToFields_AttachesCodeToTopLevelSelf(t *testing.T) {
	field := builder.FieldBlock("email", builder.M{
		"validate": []interface{}{
			builder.Validation(builder.Test(builder.Self(), builder.Function("isBlank", "CONDITION")), "required"),
		},
	})
	step := builder.Step("signup", field)
	root, _, ctx := buildStep(t, step)

	require.NoError(t, normalize.Run(ctx, root))

	f := findField(t, root, "email")
	validations := f.NodeSliceProp("validate")
	require.Len(t, validations, 1)

	subject, ok := validations[0].NodeProp("when")
	require.True(t, ok)
	subject, ok = subject.NodeProp("subject")
	require.True(t, ok)

	assert.Equal(t, []interface{}{"answers", "email"}, referencePath(subject),
		"top-level Self() must become answers/email after the full pass order")
}

// TestAddSelfValueToFields_AttachesCodeToNestedSelf confirms a Self() call
// nested inside a condition FUNCTION's argument list — not just the TEST's
// direct subject — is rewritten too.
func TestAddSelfValueToFields_AttachesCodeToNestedSelf(t *testing.T) {
	field := builder.FieldBlock("email", builder.M{
		"validate": []interface{}{
			builder.Validation(
				builder.Test(builder.Self(), builder.Function("isValidEmail", "CONDITION", builder.Self())),
				"invalid",
			),
		},
	})
	step := builder.Step("signup", field)
	root, _, ctx := buildStep(t, step)

	require.NoError(t, normalize.Run(ctx, root))

	f := findField(t, root, "email")
	validations := f.NodeSliceProp("validate")
	require.Len(t, validations, 1)

	when, ok := validations[0].NodeProp("when")
	require.True(t, ok)

	condition, ok := when.NodeProp("condition")
	require.True(t, ok)
	args := condition.NodeSliceProp("arguments")
	require.Len(t, args, 1, "Self() passed as a FUNCTION argument must survive as a single reference node")

	assert.Equal(t, []interface{}{"answers", "email"}, referencePath(args[0]),
		"the nested Self() inside the condition's arguments must also resolve to answers/email")
}

// TestAddSelfValueToFields_LeavesOtherFieldsReferenceUntouched confirms the
// pass only rewrites bare ["self"] references, not references that already
// name another field's code.
func TestAddSelfValueToFields_LeavesOtherFieldsReferenceUntouched(t *testing.T) {
	field := builder.FieldBlock("confirmEmail", builder.M{
		"validate": []interface{}{
			builder.Validation(
				builder.Test(builder.Reference("answers", "email"), builder.Function("isBlank", "CONDITION")),
				"required",
			),
		},
	})
	step := builder.Step("signup", field)
	root, _, ctx := buildStep(t, step)

	require.NoError(t, normalize.Run(ctx, root))

	f := findField(t, root, "confirmEmail")
	validations := f.NodeSliceProp("validate")
	when, _ := validations[0].NodeProp("when")
	subject, _ := when.NodeProp("subject")

	assert.Equal(t, []interface{}{"answers", "email"}, referencePath(subject))
}

// TestConvertFormattersToPipeline_BuildsFormatPipelineFromPostCode confirms a
// field's "formatters" array is lifted into a derived formatPipeline
// expression whose input reads the raw post value for that field's code, and
// that "formatters" itself is left in place untouched.
func TestConvertFormattersToPipeline_BuildsFormatPipelineFromPostCode(t *testing.T) {
	field := builder.FieldBlock("name", builder.M{
		"formatters": []interface{}{
			builder.Function("trim", "TRANSFORMER"),
			builder.Function("toTitleCase", "TRANSFORMER"),
		},
	})
	step := builder.Step("signup", field)
	root, _, ctx := buildStep(t, step)

	require.NoError(t, normalize.Run(ctx, root))

	f := findField(t, root, "name")

	_, stillHasFormatters := f.Properties["formatters"]
	assert.True(t, stillHasFormatters, "formatters must remain untouched; it is never authored away")

	pipeline, ok := f.NodeProp("formatPipeline")
	require.True(t, ok, "a formatPipeline expression must be synthesized")
	assert.Equal(t, string(node.ExprPipeline), pipeline.Subtype)

	input, ok := pipeline.NodeProp("input")
	require.True(t, ok)
	assert.Equal(t, []interface{}{"post", "name"}, referencePath(input))

	steps := pipeline.NodeSliceProp("steps")
	assert.Len(t, steps, 2)
}

// TestConvertFormattersToPipeline_SkipsFieldsWithoutFormatters confirms the
// pass is a no-op for a field that never declared "formatters".
func TestConvertFormattersToPipeline_SkipsFieldsWithoutFormatters(t *testing.T) {
	field := builder.FieldBlock("email", builder.M{})
	step := builder.Step("signup", field)
	root, _, ctx := buildStep(t, step)

	require.NoError(t, normalize.Run(ctx, root))

	f := findField(t, root, "email")
	_, ok := f.NodeProp("formatPipeline")
	assert.False(t, ok)
}

// TestResolveSelfReferences_RewritesBareSelfPathWithoutCode confirms that a
// lone "self" path segment (code not yet attached — e.g. because it lives
// outside any field's validate subtree and addSelfValueToFields never walked
// it) is still rewritten to "answers" by the final pass, preserving whatever
// followed it in the path.
func TestResolveSelfReferences_RewritesBareSelfPathWithoutCode(t *testing.T) {
	raw := builder.M{
		"type":           "Expression",
		"expressionType": "REFERENCE",
		"path":           []interface{}{"self", "nested", "prop"},
	}
	step := builder.Step("signup", raw)
	root, _, ctx := buildStep(t, step)

	require.NoError(t, normalize.Run(ctx, root))

	var ref *node.ASTNode
	node.Walk(root, func(n *node.ASTNode) {
		if n.Type == node.TypeExpression && n.Subtype == string(node.ExprReference) {
			if path, _ := n.Properties["path"].([]interface{}); len(path) > 0 {
				if s, ok := path[0].(string); ok && s == "answers" {
					ref = n
				}
			}
		}
	})
	require.NotNil(t, ref)
	assert.Equal(t, []interface{}{"answers", "nested", "prop"}, referencePath(ref))
}

// TestPasses_FixedOrder confirms the three normalizers run in the documented
// order: self-value attachment before formatter conversion before the final
// self-to-answers rewrite.
func TestPasses_FixedOrder(t *testing.T) {
	passes := normalize.Passes()
	require.Len(t, passes, 3)
	assert.Equal(t, "AddSelfValueToFields", passes[0].Name())
	assert.Equal(t, "ConvertFormattersToPipeline", passes[1].Name())
	assert.Equal(t, "ResolveSelfReferences", passes[2].Name())
}
