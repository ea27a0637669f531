// Package stdfuncs registers the engine's built-in functions into a
// registry.FunctionRegistry. None of these are special-cased by the core —
// they are ordinary registrants, reachable only by name, exactly like any
// function an embedder adds of its own.
package stdfuncs

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/lyzr/formengine/condition"
	"github.com/lyzr/formengine/registry"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// RegisterBuiltins registers the standard library of CONDITION and
// TRANSFORMER functions, including the CEL-backed "cel" condition (spec
// §4.9's escape hatch for boolean expressions the built-in predicate node
// kinds cannot express directly).
func RegisterBuiltins(fr *registry.FunctionRegistry) error {
	evaluator := condition.NewEvaluator()

	return fr.RegisterMany(
		&registry.Func{
			Name: "cel",
			Type: registry.FunctionCondition,
			Evaluate: func(args ...interface{}) (interface{}, error) {
				if len(args) < 1 {
					return nil, fmt.Errorf("cel: expects (expression, subject, scope)")
				}
				expr, ok := args[0].(string)
				if !ok {
					return nil, fmt.Errorf("cel: expression argument must be a string")
				}
				var subject interface{}
				if len(args) > 1 {
					subject = args[1]
				}
				var scope map[string]interface{}
				if len(args) > 2 {
					scope, _ = args[2].(map[string]interface{})
				}
				return evaluator.Evaluate(expr, subject, scope)
			},
		},
		&registry.Func{
			Name: "trim",
			Type: registry.FunctionTransformer,
			Evaluate: func(args ...interface{}) (interface{}, error) {
				s, err := requireString(args, "trim")
				if err != nil {
					return nil, err
				}
				return strings.TrimSpace(s), nil
			},
		},
		&registry.Func{
			Name: "toTitleCase",
			Type: registry.FunctionTransformer,
			Evaluate: func(args ...interface{}) (interface{}, error) {
				s, err := requireString(args, "toTitleCase")
				if err != nil {
					return nil, err
				}
				return strings.Title(strings.ToLower(s)), nil
			},
		},
		&registry.Func{
			Name: "toUpperCase",
			Type: registry.FunctionTransformer,
			Evaluate: func(args ...interface{}) (interface{}, error) {
				s, err := requireString(args, "toUpperCase")
				if err != nil {
					return nil, err
				}
				return strings.ToUpper(s), nil
			},
		},
		&registry.Func{
			Name: "isValidEmail",
			Type: registry.FunctionCondition,
			Evaluate: func(args ...interface{}) (interface{}, error) {
				s, err := requireString(args, "isValidEmail")
				if err != nil {
					return nil, err
				}
				return emailPattern.MatchString(s), nil
			},
		},
		&registry.Func{
			Name: "isBlank",
			Type: registry.FunctionCondition,
			Evaluate: func(args ...interface{}) (interface{}, error) {
				if len(args) < 1 || args[0] == nil {
					return true, nil
				}
				s, ok := args[0].(string)
				if !ok {
					return false, nil
				}
				return strings.TrimSpace(s) == "", nil
			},
		},
	)
}

func requireString(args []interface{}, name string) (string, error) {
	if len(args) < 1 {
		return "", fmt.Errorf("%s: expects one string argument", name)
	}
	s, ok := args[0].(string)
	if !ok {
		return "", fmt.Errorf("%s: argument must be a string, got %T", name, args[0])
	}
	return s, nil
}
