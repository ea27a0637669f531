package eval

import (
	"sync"

	"github.com/lyzr/formengine/node"
)

// Cache memoizes handler results per request, keyed by (nodeId, scope
// fingerprint) (spec §5 "Caching"). It has no TTL and is scoped to a single
// request — distinct from the process-wide compiled-form cache in
// common/cache.
type Cache struct {
	mu      sync.Mutex
	results map[string]Result
	keysOf  map[node.ID]map[string]bool // nodeID -> set of composite keys, for invalidation
}

// NewCache creates an empty per-request cache.
func NewCache() *Cache {
	return &Cache{
		results: make(map[string]Result),
		keysOf:  make(map[node.ID]map[string]bool),
	}
}

func compositeKey(id node.ID, fingerprint string) string {
	return string(id) + "|" + fingerprint
}

// Get returns the cached result for (id, fingerprint), if present.
func (c *Cache) Get(id node.ID, fingerprint string) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.results[compositeKey(id, fingerprint)]
	return r, ok
}

// Set stores a result for (id, fingerprint).
func (c *Cache) Set(id node.ID, fingerprint string, r Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := compositeKey(id, fingerprint)
	c.results[key] = r
	if c.keysOf[id] == nil {
		c.keysOf[id] = make(map[string]bool)
	}
	c.keysOf[id][key] = true
}

// Invalidate drops every cached result for the given node ids, across every
// scope fingerprint. Context.SetAnswer calls it with the pseudo-node ids its
// caller passes; the Iterate handler calls it with the ids materialized for
// an item once that item has been evaluated. Neither caller invalidates the
// dependents of those ids.
func (c *Cache) Invalidate(ids []node.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		for key := range c.keysOf[id] {
			delete(c.results, key)
		}
		delete(c.keysOf, id)
	}
}

// InvalidateCascade invalidates ids and every node reachable from them by
// DATA_FLOW dependents, as described for overlay cascades (spec §4.10, §9
// open questions: "invalidate every newly registered id and every existing
// consumer reached by DATA_FLOW").
func (c *Cache) InvalidateCascade(ids []node.ID, dependentsOf func(node.ID) []node.ID) {
	seen := make(map[node.ID]bool)
	var queue []node.ID
	queue = append(queue, ids...)
	var all []node.ID
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if seen[id] {
			continue
		}
		seen[id] = true
		all = append(all, id)
		queue = append(queue, dependentsOf(id)...)
	}
	c.Invalidate(all)
}
