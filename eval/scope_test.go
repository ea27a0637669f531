package eval_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lyzr/formengine/eval"
)

func TestScopeStack_GetSearchesTopDown(t *testing.T) {
	s := eval.NewScopeStack()
	s.Push(eval.Frame{"@value": "outer"})
	s.Push(eval.Frame{"@value": "inner"})

	v, ok := s.Get("@value")
	assert.True(t, ok)
	assert.Equal(t, "inner", v)

	s.Pop()
	v, ok = s.Get("@value")
	assert.True(t, ok)
	assert.Equal(t, "outer", v)

	s.Pop()
	_, ok = s.Get("@value")
	assert.False(t, ok)
}

func TestScopeStack_PopOnEmptyIsNoop(t *testing.T) {
	s := eval.NewScopeStack()
	assert.NotPanics(t, func() { s.Pop() })
	assert.Equal(t, 0, s.Depth())
}

func TestScopeStack_FingerprintIsKeyOrderIndependent(t *testing.T) {
	s1 := eval.NewScopeStack()
	s1.Push(eval.Frame{"a": 1, "b": 2})

	s2 := eval.NewScopeStack()
	s2.Push(eval.Frame{"b": 2, "a": 1})

	assert.Equal(t, s1.Fingerprint(), s2.Fingerprint())
}

func TestScopeStack_FingerprintDiffersByDepth(t *testing.T) {
	s1 := eval.NewScopeStack()
	s1.Push(eval.Frame{"a": 1})

	s2 := eval.NewScopeStack()
	s2.Push(eval.Frame{"a": 1})
	s2.Push(eval.Frame{"a": 1})

	assert.NotEqual(t, s1.Fingerprint(), s2.Fingerprint())
}
