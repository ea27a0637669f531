package thunk

import (
	"fmt"
	"sync"

	"github.com/lyzr/formengine/node"
)

// HandlerRegistry maps a node id to its compiled Handler plus the isAsync
// flag the compile-time async pass computed for it.
type HandlerRegistry struct {
	mu       sync.RWMutex
	handlers map[node.ID]Handler
	isAsync  map[node.ID]bool
}

// NewHandlerRegistry creates an empty registry.
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{
		handlers: make(map[node.ID]Handler),
		isAsync:  make(map[node.ID]bool),
	}
}

// Register adds a handler, rejecting a duplicate node id.
func (r *HandlerRegistry) Register(h Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[h.NodeID()]; exists {
		return fmt.Errorf("thunk: duplicate handler registration for node %s", h.NodeID())
	}
	r.handlers[h.NodeID()] = h
	return nil
}

// Get looks up a handler by node id.
func (r *HandlerRegistry) Get(id node.ID) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[id]
	return h, ok
}

// SetAsync records the computed isAsync flag for a node id.
func (r *HandlerRegistry) SetAsync(id node.ID, async bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.isAsync[id] = async
}

// IsAsync reports the computed isAsync flag for a node id.
func (r *HandlerRegistry) IsAsync(id node.ID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.isAsync[id]
}

// IDs returns every node id with a registered handler.
func (r *HandlerRegistry) IDs() []node.ID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]node.ID, 0, len(r.handlers))
	for id := range r.handlers {
		out = append(out, id)
	}
	return out
}
