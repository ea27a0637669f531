package builder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyzr/formengine/builder"
	"github.com/lyzr/formengine/node"
)

// TestBuilders_CompileIntoValidASTNodes is a shape smoke test: one journey
// exercising every structural, transition and outcome builder (plus the
// expression builders its fields need) must pass through node.Factory without
// error, proving the raw maps each helper emits satisfy the discriminator
// and required-field rules node/factory.go enforces.
func TestBuilders_CompileIntoValidASTNodes(t *testing.T) {
	emailValid := builder.Test(builder.Self(),
		builder.Function("isValidEmail", "CONDITION", builder.Self()))

	field := builder.FieldBlock("email", builder.M{
		"formatters": []interface{}{builder.Function("trim", "TRANSFORMER")},
		"validate":   []interface{}{builder.Validation(builder.Not(emailValid), builder.Format("bad: {0}", builder.Self()))},
	})
	basic := builder.BasicBlock(builder.M{"text": "welcome"})

	step := builder.Step("signup", field, basic)
	step["onLoad"] = builder.Load(builder.Function("seed", "EFFECT"))
	step["onAccess"] = builder.Access(
		builder.And(builder.Test(builder.Reference("session", "uid"), builder.Function("isBlank", "CONDITION"))),
		[]builder.M{builder.Function("track", "EFFECT")},
		[]builder.M{builder.Redirect("/login", nil), builder.ThrowError(403, "forbidden", nil)},
	)
	step["onAction"] = builder.Action(nil, builder.Function("commit", "EFFECT", builder.Reference("post", "name")))
	step["onSubmission"] = builder.Submit(true,
		builder.SubmitBranch(nil, []builder.M{builder.Next("next-step", nil)}),
		builder.SubmitBranch(nil, nil),
		nil,
	)

	journey := builder.Journey("signup-journey", step)

	gen := node.NewIDGenerator(node.OriginCompile)
	factory := node.NewFactory(gen)
	root, err := factory.CreateNode(journey, "$")
	require.NoError(t, err)
	assert.Equal(t, node.TypeJourney, root.Type)
}

// TestOr_Xor_Iterate_Pipeline_Conditional_BaseReference round out the
// expression-shaped builders not already exercised by the journey above.
func TestOr_Xor_Iterate_Pipeline_Conditional_BaseReference(t *testing.T) {
	raw := builder.M{
		"type":   "Step",
		"id":     "standalone",
		"blocks": []interface{}{},
		"probe": []interface{}{
			builder.Or(builder.Test(builder.Reference("data", "a"), builder.Function("isBlank", "CONDITION"))),
			builder.Xor(builder.Test(builder.Reference("data", "b"), builder.Function("isBlank", "CONDITION"))),
			builder.Iterate(builder.Reference("data", "list"), builder.M{
				"kind":      "FILTER",
				"predicate": builder.Reference("scope", "@item"),
			}),
			builder.Pipeline(builder.Reference("data", "x"), builder.Function("trim", "TRANSFORMER")),
			builder.Conditional(
				builder.Test(builder.Reference("data", "c"), builder.Function("isBlank", "CONDITION")),
				builder.Reference("data", "yes"),
				builder.Reference("data", "no"),
			),
			builder.BaseReference(builder.Reference("data", "obj"), "nested", "prop"),
		},
	}

	gen := node.NewIDGenerator(node.OriginCompile)
	factory := node.NewFactory(gen)
	root, err := factory.CreateNode(raw, "$")
	require.NoError(t, err)
	assert.Equal(t, node.TypeStep, root.Type)
}
