// Package condition provides a CEL-backed expression evaluator. It is not a
// parallel evaluation path for form definitions — the engine exposes it to
// authors only by registering it as the built-in "cel" CONDITION function
// (see stdfuncs), so a CEL expression is reachable exactly like any other
// registered function and nothing else.
package condition

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"
)

// Evaluator compiles and caches CEL programs keyed by their normalized
// expression text, mirroring the teacher's per-run condition cache.
type Evaluator struct {
	cache map[string]cel.Program
	mu    sync.RWMutex
}

// NewEvaluator creates a new CEL evaluator with an empty program cache.
func NewEvaluator() *Evaluator {
	return &Evaluator{
		cache: make(map[string]cel.Program),
	}
}

// Evaluate runs a CEL boolean expression against a subject value and an
// auxiliary scope map (the current scope-stack frame flattened to a single
// map). "$." is accepted as shorthand for "subject." so form authors can
// write "$.score > 80" instead of "subject.score > 80".
func (e *Evaluator) Evaluate(expr string, subject interface{}, scope map[string]interface{}) (bool, error) {
	normalized := strings.ReplaceAll(expr, "$.", "subject.")

	e.mu.RLock()
	prg, exists := e.cache[normalized]
	e.mu.RUnlock()

	if !exists {
		var err error
		prg, err = e.compile(normalized)
		if err != nil {
			return false, err
		}
		e.mu.Lock()
		e.cache[normalized] = prg
		e.mu.Unlock()
	}

	out, _, err := prg.Eval(map[string]interface{}{
		"subject": subject,
		"scope":   scope,
	})
	if err != nil {
		return false, fmt.Errorf("cel evaluation error: %w", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("cel expression did not return a boolean, got %T", out.Value())
	}

	return result, nil
}

func (e *Evaluator) compile(expr string) (cel.Program, error) {
	env, err := cel.NewEnv(
		cel.Variable("subject", cel.DynType),
		cel.Variable("scope", cel.DynType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cel env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("cel compilation error: %w", issues.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create cel program: %w", err)
	}

	return prg, nil
}

// ClearCache clears the compiled-program cache.
func (e *Evaluator) ClearCache() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache = make(map[string]cel.Program)
}

// CacheSize returns the number of cached programs.
func (e *Evaluator) CacheSize() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.cache)
}
