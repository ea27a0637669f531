package node

import (
	"sync"

	engerrors "github.com/lyzr/formengine/errors"
)

// Registry holds both the AST and pseudo-node tables for a compilation scope
// (spec §4.1, §4.3). An overlay.Overlay registers the nodes it materializes
// directly into the Registry it was given; there is no overlay-local layer.
type Registry struct {
	mu      sync.RWMutex
	nodes   map[ID]*ASTNode
	pseudos map[ID]*PseudoNode
	// scopeIndex maps a pseudo-node's (namespace,key) scope string to the id
	// already allocated for it, so synthesis can share one pseudo-node
	// across every reference to the same source in a compilation scope.
	scopeIndex map[string]ID
	// path records each node's structural path, set by the registration
	// traverser, used for error breadcrumbs.
	path map[ID]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		nodes:      make(map[ID]*ASTNode),
		pseudos:    make(map[ID]*PseudoNode),
		scopeIndex: make(map[string]ID),
		path:       make(map[ID]string),
	}
}

// RegisterNode inserts an AST node, rejecting a duplicate id.
func (r *Registry) RegisterNode(n *ASTNode, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.nodes[n.ID]; exists {
		return engerrors.At(engerrors.DuplicateRegistration, string(n.ID), "duplicate node registration")
	}
	r.nodes[n.ID] = n
	r.path[n.ID] = path
	return nil
}

// RegisterPseudo inserts a pseudo-node under its scope key, returning the
// existing node if one was already registered for that (namespace, key).
func (r *Registry) RegisterPseudo(p *PseudoNode) (*PseudoNode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	scopeKey := p.ScopeKey()
	if existingID, ok := r.scopeIndex[scopeKey]; ok {
		return r.pseudos[existingID], nil
	}
	if _, exists := r.pseudos[p.ID]; exists {
		return nil, engerrors.At(engerrors.DuplicateRegistration, string(p.ID), "duplicate pseudo-node registration")
	}
	r.pseudos[p.ID] = p
	r.scopeIndex[scopeKey] = p.ID
	return p, nil
}

// Node looks up an AST node by id.
func (r *Registry) Node(id ID) (*ASTNode, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.nodes[id]
	return n, ok
}

// Pseudo looks up a pseudo-node by id.
func (r *Registry) Pseudo(id ID) (*PseudoNode, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.pseudos[id]
	return p, ok
}

// PseudoByScope looks up a pseudo-node previously registered for (kind, key).
func (r *Registry) PseudoByScope(kind PseudoKind, key string) (*PseudoNode, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.scopeIndex[string(kind)+":"+key]
	if !ok {
		return nil, false
	}
	p, ok := r.pseudos[id]
	return p, ok
}

// Path returns the structural path recorded for a node id.
func (r *Registry) Path(id ID) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.path[id]
}

// AllNodeIDs returns every registered AST node id.
func (r *Registry) AllNodeIDs() []ID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ID, 0, len(r.nodes))
	for id := range r.nodes {
		out = append(out, id)
	}
	return out
}

// AllPseudoIDs returns every registered pseudo-node id.
func (r *Registry) AllPseudoIDs() []ID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ID, 0, len(r.pseudos))
	for id := range r.pseudos {
		out = append(out, id)
	}
	return out
}

// Size reports the number of AST nodes and pseudo-nodes registered.
func (r *Registry) Size() (nodes int, pseudos int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.nodes), len(r.pseudos)
}
