// Package builder provides fluent helpers for constructing the raw,
// untyped JSON trees node.Factory consumes — the test-fixture equivalent of
// hand-writing nested map[string]interface{} literals for every Journey/
// Step/Block/Expression/Predicate combination under test.
package builder

// M is shorthand for the raw record shape the factory expects.
type M = map[string]interface{}

// Journey returns a raw Journey node with the given steps.
func Journey(id string, steps ...M) M {
	return M{
		"type":  "Journey",
		"id":    id,
		"steps": toSlice(steps),
	}
}

// Step returns a raw Step node.
func Step(id string, blocks ...M) M {
	return M{
		"type":   "Step",
		"id":     id,
		"blocks": toSlice(blocks),
	}
}

// FieldBlock returns a raw FIELD Block node for a field with the given code.
func FieldBlock(code string, extra M) M {
	return merge(M{
		"type":      "Block",
		"blockType": "FIELD",
		"code":      code,
	}, extra)
}

// BasicBlock returns a raw BASIC Block node.
func BasicBlock(extra M) M {
	return merge(M{
		"type":      "Block",
		"blockType": "BASIC",
	}, extra)
}

// Reference returns a raw REFERENCE Expression node for a ["namespace",
// "key", ...] path, e.g. Reference("answers", "email").
func Reference(path ...string) M {
	return M{
		"type":           "Expression",
		"expressionType": "REFERENCE",
		"path":           toAnySlice(path),
	}
}

// Self returns a raw REFERENCE Expression to the enclosing field's own
// current value; normalize's AddSelfValueToFields pass attaches the field's
// code to this path before wiring.
func Self() M {
	return Reference("self")
}

// BaseReference returns a raw REFERENCE Expression that resolves relative
// to a "base" value expression instead of a namespace path.
func BaseReference(base M, path ...string) M {
	return M{
		"type":           "Expression",
		"expressionType": "REFERENCE",
		"base":           base,
		"path":           toAnySlice(path),
	}
}

// Pipeline returns a raw PIPELINE Expression chaining input through steps.
func Pipeline(input M, steps ...M) M {
	return M{
		"type":           "Expression",
		"expressionType": "PIPELINE",
		"input":          input,
		"steps":          toSlice(steps),
	}
}

// Format returns a raw FORMAT Expression.
func Format(template string, arguments ...M) M {
	return M{
		"type":           "Expression",
		"expressionType": "FORMAT",
		"template":       template,
		"arguments":      toSlice(arguments),
	}
}

// Iterate returns a raw ITERATE Expression. iterator is passed through
// unmodified — it must itself hold "kind" plus "yield" or "predicate".
func Iterate(input M, iterator M) M {
	return M{
		"type":           "Expression",
		"expressionType": "ITERATE",
		"input":          input,
		"iterator":       iterator,
	}
}

// Conditional returns a raw CONDITIONAL Expression.
func Conditional(predicate, thenValue, elseValue M) M {
	return M{
		"type":           "Expression",
		"expressionType": "CONDITIONAL",
		"predicate":      predicate,
		"thenValue":      thenValue,
		"elseValue":      elseValue,
	}
}

// Next returns a raw NEXT Expression. goTo may be a literal (string) or a
// raw Expression node.
func Next(goTo interface{}, when M) M {
	m := M{
		"type":           "Expression",
		"expressionType": "NEXT",
		"goto":           goTo,
	}
	if when != nil {
		m["when"] = when
	}
	return m
}

// Validation returns a raw VALIDATION Expression. message may be a literal
// (string) or a raw Expression node (e.g. Format).
func Validation(when M, message interface{}) M {
	return M{
		"type":           "Expression",
		"expressionType": "VALIDATION",
		"when":           when,
		"message":        message,
	}
}

// Function returns a raw FUNCTION Expression. functionType is one of
// "CONDITION" | "TRANSFORMER" | "EFFECT" | "GENERATOR".
func Function(name, functionType string, arguments ...M) M {
	return M{
		"type":           "Expression",
		"expressionType": "FUNCTION",
		"name":           name,
		"functionType":   functionType,
		"arguments":      toSlice(arguments),
	}
}

// Test returns a raw TEST Predicate.
func Test(subject, condition M) M {
	return M{
		"type":          "Predicate",
		"predicateType": "TEST",
		"subject":       subject,
		"condition":     condition,
	}
}

func predicateOf(kind string, operands []M) M {
	return M{
		"type":          "Predicate",
		"predicateType": kind,
		"operands":      toSlice(operands),
	}
}

// And returns a raw AND Predicate.
func And(operands ...M) M { return predicateOf("AND", operands) }

// Or returns a raw OR Predicate.
func Or(operands ...M) M { return predicateOf("OR", operands) }

// Xor returns a raw XOR Predicate.
func Xor(operands ...M) M { return predicateOf("XOR", operands) }

// Not returns a raw NOT Predicate.
func Not(operand M) M {
	return M{
		"type":          "Predicate",
		"predicateType": "NOT",
		"operand":       operand,
	}
}

// Load returns a raw LOAD Transition.
func Load(effects ...M) M {
	return M{
		"type":           "Transition",
		"transitionType": "LOAD",
		"effects":        toSlice(effects),
	}
}

// Access returns a raw ACCESS Transition.
func Access(guards M, effects []M, next []M) M {
	m := M{
		"type":           "Transition",
		"transitionType": "ACCESS",
		"effects":        toSlice(effects),
		"next":           toSlice(next),
	}
	if guards != nil {
		m["guards"] = guards
	}
	return m
}

// Action returns a raw ACTION Transition.
func Action(when M, effects ...M) M {
	return M{
		"type":           "Transition",
		"transitionType": "ACTION",
		"when":           when,
		"effects":        toSlice(effects),
	}
}

// SubmitBranch is one of onValid/onInvalid/onAlways.
func SubmitBranch(effects []M, next []M) M {
	return M{
		"effects": toSlice(effects),
		"next":    toSlice(next),
	}
}

// Submit returns a raw SUBMIT Transition. Pass nil for unused branches.
func Submit(validate bool, onValid, onInvalid, onAlways M) M {
	m := M{
		"type":           "Transition",
		"transitionType": "SUBMIT",
		"validate":       validate,
	}
	if onValid != nil {
		m["onValid"] = onValid
	}
	if onInvalid != nil {
		m["onInvalid"] = onInvalid
	}
	if onAlways != nil {
		m["onAlways"] = onAlways
	}
	return m
}

// Redirect returns a raw REDIRECT Outcome. goTo may be a literal (string) or
// a raw Expression node.
func Redirect(goTo interface{}, when M) M {
	m := M{
		"type":        "Outcome",
		"outcomeType": "REDIRECT",
		"goto":        goTo,
	}
	if when != nil {
		m["when"] = when
	}
	return m
}

// ThrowError returns a raw THROW_ERROR Outcome. status and message may be
// literals or raw Expression nodes.
func ThrowError(status interface{}, message interface{}, when M) M {
	m := M{
		"type":        "Outcome",
		"outcomeType": "THROW_ERROR",
		"status":      status,
		"message":     message,
	}
	if when != nil {
		m["when"] = when
	}
	return m
}

// Literal wraps a plain Go value (string, number, bool, nil) for use where a
// raw node tree is expected but the JSON value is just a literal.
func Literal(v interface{}) interface{} { return v }

func toSlice(ms []M) []interface{} {
	out := make([]interface{}, len(ms))
	for i, m := range ms {
		out[i] = m
	}
	return out
}

func toAnySlice(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func merge(base M, extra M) M {
	for k, v := range extra {
		base[k] = v
	}
	return base
}
