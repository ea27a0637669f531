package eval_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyzr/formengine/eval"
	"github.com/lyzr/formengine/node"
)

func TestCache_GetMissThenSetThenHit(t *testing.T) {
	c := eval.NewCache()

	_, ok := c.Get("ast:1", "fp-a")
	assert.False(t, ok)

	c.Set("ast:1", "fp-a", eval.Ok("value"))
	r, ok := c.Get("ast:1", "fp-a")
	require.True(t, ok)
	assert.Equal(t, "value", r.Value)
}

func TestCache_DistinctFingerprintsAreIndependentEntries(t *testing.T) {
	c := eval.NewCache()
	c.Set("ast:1", "fp-a", eval.Ok("a"))
	c.Set("ast:1", "fp-b", eval.Ok("b"))

	ra, _ := c.Get("ast:1", "fp-a")
	rb, _ := c.Get("ast:1", "fp-b")
	assert.Equal(t, "a", ra.Value)
	assert.Equal(t, "b", rb.Value)
}

func TestCache_InvalidateDropsEveryFingerprintForAnID(t *testing.T) {
	c := eval.NewCache()
	c.Set("ast:1", "fp-a", eval.Ok("a"))
	c.Set("ast:1", "fp-b", eval.Ok("b"))
	c.Set("ast:2", "fp-a", eval.Ok("other"))

	c.Invalidate([]node.ID{"ast:1"})

	_, ok := c.Get("ast:1", "fp-a")
	assert.False(t, ok)
	_, ok = c.Get("ast:1", "fp-b")
	assert.False(t, ok)
	_, ok = c.Get("ast:2", "fp-a")
	assert.True(t, ok, "invalidating ast:1 must not affect an unrelated node's cache entries")
}

func TestCache_InvalidateCascadeFollowsDependents(t *testing.T) {
	c := eval.NewCache()
	c.Set("ast:1", "fp", eval.Ok("a"))
	c.Set("ast:2", "fp", eval.Ok("b"))
	c.Set("ast:3", "fp", eval.Ok("c"))

	dependents := map[node.ID][]node.ID{
		"ast:1": {"ast:2"},
		"ast:2": {"ast:3"},
	}

	c.InvalidateCascade([]node.ID{"ast:1"}, func(id node.ID) []node.ID {
		return dependents[id]
	})

	for _, id := range []node.ID{"ast:1", "ast:2", "ast:3"} {
		_, ok := c.Get(id, "fp")
		assert.False(t, ok, "%s must be invalidated transitively through the dependents chain", id)
	}
}

func TestCache_InvalidateCascadeIgnoresCycles(t *testing.T) {
	c := eval.NewCache()
	c.Set("ast:1", "fp", eval.Ok("a"))
	c.Set("ast:2", "fp", eval.Ok("b"))

	dependents := map[node.ID][]node.ID{
		"ast:1": {"ast:2"},
		"ast:2": {"ast:1"},
	}

	c.InvalidateCascade([]node.ID{"ast:1"}, func(id node.ID) []node.ID {
		return dependents[id]
	})

	_, ok := c.Get("ast:1", "fp")
	assert.False(t, ok)
	_, ok = c.Get("ast:2", "fp")
	assert.False(t, ok)
}
