package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyzr/formengine/registry"
)

func echoFunc(name string, typ registry.FunctionType) *registry.Func {
	return &registry.Func{
		Name: name,
		Type: typ,
		Evaluate: func(args ...interface{}) (interface{}, error) {
			return args, nil
		},
	}
}

func TestFunctionRegistry_RegisterAndGet(t *testing.T) {
	fr := registry.NewFunctionRegistry()
	require.NoError(t, fr.Register(echoFunc("upper", registry.FunctionTransformer)))

	fn, ok := fr.Get(registry.FunctionTransformer, "upper")
	require.True(t, ok)
	assert.Equal(t, "upper", fn.Name)
	assert.True(t, fr.Has(registry.FunctionTransformer, "upper"))
	assert.Equal(t, 1, fr.Size())
}

func TestFunctionRegistry_DuplicateRejected(t *testing.T) {
	fr := registry.NewFunctionRegistry()
	require.NoError(t, fr.Register(echoFunc("upper", registry.FunctionTransformer)))
	err := fr.Register(echoFunc("upper", registry.FunctionTransformer))
	assert.Error(t, err)
}

func TestFunctionRegistry_SameNameDifferentTypeIsAllowed(t *testing.T) {
	fr := registry.NewFunctionRegistry()
	require.NoError(t, fr.Register(echoFunc("check", registry.FunctionCondition)))
	require.NoError(t, fr.Register(echoFunc("check", registry.FunctionTransformer)))
	assert.Equal(t, 2, fr.Size())
}

func TestFunctionRegistry_RegisterManyAggregatesErrors(t *testing.T) {
	fr := registry.NewFunctionRegistry()
	err := fr.RegisterMany(
		echoFunc("a", registry.FunctionCondition),
		&registry.Func{Name: "", Type: registry.FunctionCondition, Evaluate: func(args ...interface{}) (interface{}, error) { return nil, nil }},
		&registry.Func{Name: "b", Type: "BOGUS", Evaluate: func(args ...interface{}) (interface{}, error) { return nil, nil }},
	)
	assert.Error(t, err)
	// The valid registration still went through despite the other two failing.
	assert.True(t, fr.Has(registry.FunctionCondition, "a"))
}

func TestFunctionRegistry_GetMiss(t *testing.T) {
	fr := registry.NewFunctionRegistry()
	_, ok := fr.Get(registry.FunctionCondition, "missing")
	assert.False(t, ok)
}
