package stdfuncs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyzr/formengine/registry"
	"github.com/lyzr/formengine/stdfuncs"
)

func builtins(t *testing.T) *registry.FunctionRegistry {
	t.Helper()
	fr := registry.NewFunctionRegistry()
	require.NoError(t, stdfuncs.RegisterBuiltins(fr))
	return fr
}

func TestIsValidEmail(t *testing.T) {
	fr := builtins(t)
	fn, ok := fr.Get(registry.FunctionCondition, "isValidEmail")
	require.True(t, ok)

	valid, err := fn.Evaluate("a@example.com")
	require.NoError(t, err)
	assert.Equal(t, true, valid)

	invalid, err := fn.Evaluate("not-an-email")
	require.NoError(t, err)
	assert.Equal(t, false, invalid)
}

func TestIsBlank(t *testing.T) {
	fr := builtins(t)
	fn, ok := fr.Get(registry.FunctionCondition, "isBlank")
	require.True(t, ok)

	blank, err := fn.Evaluate("   ")
	require.NoError(t, err)
	assert.Equal(t, true, blank)

	nilBlank, err := fn.Evaluate(nil)
	require.NoError(t, err)
	assert.Equal(t, true, nilBlank)

	notBlank, err := fn.Evaluate("hi")
	require.NoError(t, err)
	assert.Equal(t, false, notBlank)
}

func TestTrim(t *testing.T) {
	fr := builtins(t)
	fn, ok := fr.Get(registry.FunctionTransformer, "trim")
	require.True(t, ok)

	out, err := fn.Evaluate("  hi  ")
	require.NoError(t, err)
	assert.Equal(t, "hi", out)

	_, err = fn.Evaluate(42)
	assert.Error(t, err, "trim requires a string argument")
}

func TestToUpperCase(t *testing.T) {
	fr := builtins(t)
	fn, ok := fr.Get(registry.FunctionTransformer, "toUpperCase")
	require.True(t, ok)

	out, err := fn.Evaluate("hi")
	require.NoError(t, err)
	assert.Equal(t, "HI", out)
}

func TestCelCondition(t *testing.T) {
	fr := builtins(t)
	fn, ok := fr.Get(registry.FunctionCondition, "cel")
	require.True(t, ok)

	out, err := fn.Evaluate("$.score > 80", map[string]interface{}{"score": 90}, nil)
	require.NoError(t, err)
	assert.Equal(t, true, out)

	out, err = fn.Evaluate("$.score > 80", map[string]interface{}{"score": 10}, nil)
	require.NoError(t, err)
	assert.Equal(t, false, out)
}
