package safety

import (
	"fmt"
	"reflect"
)

// WalkPath resolves a chain of dynamic property accesses against value,
// rejecting any denylisted key (spec §4.8). unsafeKey is non-empty when the
// walk hit a denylisted key; the caller is responsible for turning that into
// a SECURITY error attributed to the right node.
func WalkPath(value interface{}, path []interface{}) (result interface{}, unsafeKey string) {
	current := value
	for _, segment := range path {
		key := fmt.Sprintf("%v", segment)
		if IsUnsafeKey(key) {
			return nil, key
		}
		current = index(current, key)
		if current == nil {
			return nil, ""
		}
	}
	return current, ""
}

// index resolves one property/index access against a map, slice, or struct.
func index(v interface{}, key string) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return val[key]
	case []interface{}:
		var i int
		if _, err := fmt.Sscanf(key, "%d", &i); err != nil {
			return nil
		}
		if i < 0 || i >= len(val) {
			return nil
		}
		return val[i]
	default:
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Ptr {
			rv = rv.Elem()
		}
		if rv.Kind() == reflect.Struct {
			field := rv.FieldByName(key)
			if field.IsValid() {
				return field.Interface()
			}
		}
		return nil
	}
}
