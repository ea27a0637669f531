package safety_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lyzr/formengine/safety"
)

func TestIsUnsafeKey_DenylistedNames(t *testing.T) {
	for _, key := range []string{"__proto__", "constructor", "prototype"} {
		assert.True(t, safety.IsUnsafeKey(key), "%q must be denylisted", key)
	}
	assert.False(t, safety.IsUnsafeKey("email"))
}

func TestWalkPath_ResolvesNestedMapsAndSlices(t *testing.T) {
	value := map[string]interface{}{
		"user": map[string]interface{}{
			"tags": []interface{}{"a", "b", "c"},
		},
	}

	resolved, unsafeKey := safety.WalkPath(value, []interface{}{"user", "tags", 1})
	assert.Empty(t, unsafeKey)
	assert.Equal(t, "b", resolved)
}

func TestWalkPath_OutOfRangeIndexResolvesNil(t *testing.T) {
	value := []interface{}{"a"}
	resolved, unsafeKey := safety.WalkPath(value, []interface{}{5})
	assert.Empty(t, unsafeKey)
	assert.Nil(t, resolved)
}

func TestWalkPath_RejectsDenylistedKeyMidWalk(t *testing.T) {
	value := map[string]interface{}{
		"user": map[string]interface{}{"__proto__": "pwned"},
	}

	resolved, unsafeKey := safety.WalkPath(value, []interface{}{"user", "__proto__"})
	assert.Nil(t, resolved)
	assert.Equal(t, "__proto__", unsafeKey)
}

func TestWalkPath_StopsCleanlyOnNilIntermediate(t *testing.T) {
	value := map[string]interface{}{"user": nil}

	resolved, unsafeKey := safety.WalkPath(value, []interface{}{"user", "tags"})
	assert.Empty(t, unsafeKey)
	assert.Nil(t, resolved)
}

func TestWalkPath_ResolvesStructFieldsByReflection(t *testing.T) {
	type profile struct {
		Name string
	}
	value := profile{Name: "ada"}

	resolved, unsafeKey := safety.WalkPath(value, []interface{}{"Name"})
	assert.Empty(t, unsafeKey)
	assert.Equal(t, "ada", resolved)
}
