package eval

import engerrors "github.com/lyzr/formengine/errors"

// Result is the handler evaluation protocol's tagged union (spec §4.5, §7):
// {value} | {error}.
type Result struct {
	Value interface{}
	Err   *engerrors.Error
}

// Ok wraps a successful value.
func Ok(v interface{}) Result {
	return Result{Value: v}
}

// Fail wraps an error.
func Fail(err *engerrors.Error) Result {
	return Result{Err: err}
}

// IsError reports whether this result carries an error.
func (r Result) IsError() bool {
	return r.Err != nil
}

// Truthy applies the engine's truthiness rule used by predicates and
// CONDITIONAL: nil, false, "", a zero int/int64/float64, an empty
// []interface{} and an empty map[string]interface{} are falsy; any other
// value is truthy. A result carrying an error (a failed evaluation) is
// always falsy.
func (r Result) Truthy() bool {
	if r.Err != nil {
		return false
	}
	return Truthy(r.Value)
}

// Truthy applies the same rule directly to a raw value.
func Truthy(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case int:
		return val != 0
	case int64:
		return val != 0
	case float64:
		return val != 0
	case []interface{}:
		return len(val) > 0
	case map[string]interface{}:
		return len(val) > 0
	default:
		return true
	}
}
