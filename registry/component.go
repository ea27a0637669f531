package registry

import (
	"fmt"
	"sync"
)

// EvaluatedBlock is the output of evaluating a BASIC or FIELD block (spec §4.5
// Block handler): enough for a renderer to produce HTML without touching the
// AST. The core constructs these; it never reads them back.
type EvaluatedBlock struct {
	ID         string
	Type       string
	BlockType  string
	Variant    string
	Properties map[string]interface{}
}

// ComponentRenderer renders one evaluated block to HTML. It is consumed by
// the template layer (out of scope here) and is never invoked by the core.
type ComponentRenderer struct {
	Variant string
	Render  func(block EvaluatedBlock) (string, error)
}

// ComponentRegistry maps a variant name to its renderer.
type ComponentRegistry struct {
	mu         sync.RWMutex
	renderers  map[string]*ComponentRenderer
}

// NewComponentRegistry creates an empty registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		renderers: make(map[string]*ComponentRenderer),
	}
}

// Register adds a renderer for a variant, rejecting duplicates.
func (r *ComponentRegistry) Register(variant string, render func(block EvaluatedBlock) (string, error)) error {
	if variant == "" {
		return fmt.Errorf("registry: component variant is required")
	}
	if render == nil {
		return fmt.Errorf("registry: component %q has no render function", variant)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.renderers[variant]; exists {
		return fmt.Errorf("registry: duplicate component registration for variant %q", variant)
	}
	r.renderers[variant] = &ComponentRenderer{Variant: variant, Render: render}
	return nil
}

// Get looks up a renderer by variant name.
func (r *ComponentRegistry) Get(variant string) (*ComponentRenderer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	renderer, ok := r.renderers[variant]
	return renderer, ok
}

// Variants lists every registered variant name.
func (r *ComponentRegistry) Variants() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.renderers))
	for v := range r.renderers {
		out = append(out, v)
	}
	return out
}
