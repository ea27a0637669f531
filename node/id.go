// Package node defines the IR's node model: NodeId allocation, the tagged
// ASTNode and PseudoNode sums, the node registries, and the NodeFactory that
// turns a declarative JSON tree into typed nodes with unique ids.
package node

import (
	"fmt"
	"sync/atomic"
)

// Origin distinguishes nodes allocated at compile time from nodes
// materialized later by an overlay.Overlay.
type Origin string

const (
	OriginCompile Origin = "compile"
	OriginRuntime Origin = "runtime"
)

// Category distinguishes an AST node from a pseudo-node within an Origin.
type Category string

const (
	CategoryAST    Category = "ast"
	CategoryPseudo Category = "pseudo"
)

// ID is an opaque tagged identifier of the form "{origin}_{category}:<seq>".
type ID string

// String implements fmt.Stringer.
func (id ID) String() string {
	return string(id)
}

// IDGenerator allocates monotonic, uniquely tagged ids. Overlays allocate
// from a separate OriginRuntime generator with its own counter, so runtime
// ids never collide with compile-time ids.
type IDGenerator struct {
	origin  Origin
	counter int64
}

// NewIDGenerator creates a generator for the given origin.
func NewIDGenerator(origin Origin) *IDGenerator {
	return &IDGenerator{origin: origin}
}

// Next allocates the next id in the given category.
func (g *IDGenerator) Next(category Category) ID {
	seq := atomic.AddInt64(&g.counter, 1)
	return ID(fmt.Sprintf("%s_%s:%d", g.origin, category, seq))
}

// Origin reports the generator's origin tag.
func (g *IDGenerator) Origin() Origin {
	return g.origin
}

// NewOverlayGenerator returns a fresh OriginRuntime generator. Its ids are
// disjoint from every OriginCompile id by their tag; two runtime generators
// share the tag and each counts from 1.
func NewOverlayGenerator() *IDGenerator {
	return NewIDGenerator(OriginRuntime)
}
