package node

import "fmt"

// RegisterTree walks root and every descendant ASTNode reachable through its
// Properties (spec §4.1's RegistrationTraverser), inserting each into reg
// with its structural path.
func RegisterTree(reg *Registry, root *ASTNode, path string) error {
	if root == nil {
		return nil
	}
	if err := reg.RegisterNode(root, path); err != nil {
		return err
	}
	for key, val := range root.Properties {
		if err := registerValue(reg, val, fmt.Sprintf("%s.%s", path, key)); err != nil {
			return err
		}
	}
	return nil
}

func registerValue(reg *Registry, v interface{}, path string) error {
	switch val := v.(type) {
	case *ASTNode:
		return RegisterTree(reg, val, path)
	case []interface{}:
		for i, item := range val {
			if err := registerValue(reg, item, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
	case map[string]interface{}:
		for key, nested := range val {
			if err := registerValue(reg, nested, fmt.Sprintf("%s.%s", path, key)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Metadata records a node's relationship to the requested step — the
// MetadataTraverser's output (spec §2 step 5). Handlers consult this to
// decide what to fully evaluate versus what to evaluate only for its
// validation-relevant subset (spec §4.5 Block handler).
type Metadata struct {
	ParentID     ID
	OnTargetStep bool
	IsAncestor   bool
	IsDescendant bool
}

// MetadataRegistry maps a node id to its Metadata.
type MetadataRegistry struct {
	entries map[ID]*Metadata
}

// NewMetadataRegistry creates an empty metadata registry.
func NewMetadataRegistry() *MetadataRegistry {
	return &MetadataRegistry{entries: make(map[ID]*Metadata)}
}

// Set records metadata for a node id.
func (m *MetadataRegistry) Set(id ID, md *Metadata) {
	m.entries[id] = md
}

// Get looks up metadata for a node id.
func (m *MetadataRegistry) Get(id ID) (*Metadata, bool) {
	md, ok := m.entries[id]
	return md, ok
}

// MarkStepSubtree marks every node in root's subtree as on-target-step with
// the given parent chain, used by the MetadataTraverser when walking into
// the step the request targets.
func MarkStepSubtree(meta *MetadataRegistry, root *ASTNode, parentID ID, onTarget bool) {
	if root == nil {
		return
	}
	meta.Set(root.ID, &Metadata{ParentID: parentID, OnTargetStep: onTarget})
	for _, val := range root.Properties {
		markValue(meta, val, root.ID, onTarget)
	}
}

func markValue(meta *MetadataRegistry, v interface{}, parentID ID, onTarget bool) {
	switch val := v.(type) {
	case *ASTNode:
		MarkStepSubtree(meta, val, parentID, onTarget)
	case []interface{}:
		for _, item := range val {
			markValue(meta, item, parentID, onTarget)
		}
	case map[string]interface{}:
		for _, nested := range val {
			markValue(meta, nested, parentID, onTarget)
		}
	}
}

// MarkAncestorChain finds the path from root down to the node with
// targetID and marks every node on that path (the target's structural
// ancestors — typically nested Journeys, plus Steps other than the target
// that merely route to it) as IsAncestor in meta, merging with whatever
// OnTargetStep/ParentID MarkStepSubtree already recorded. It does not mark
// the target node itself. Returns false if targetID was not found under
// root.
func MarkAncestorChain(meta *MetadataRegistry, root *ASTNode, targetID ID) bool {
	_, found := markAncestors(meta, root, targetID)
	return found
}

func markAncestors(meta *MetadataRegistry, n *ASTNode, targetID ID) (onPath bool, found bool) {
	if n == nil {
		return false, false
	}
	if n.ID == targetID {
		return false, true
	}
	childFound := false
	for _, val := range n.Properties {
		if valueContains(val, targetID, meta) {
			childFound = true
		}
	}
	if childFound {
		md, ok := meta.Get(n.ID)
		if !ok {
			md = &Metadata{}
		}
		md.IsAncestor = true
		meta.Set(n.ID, md)
	}
	return childFound, childFound
}

func valueContains(v interface{}, targetID ID, meta *MetadataRegistry) bool {
	switch val := v.(type) {
	case *ASTNode:
		onPath, found := markAncestors(meta, val, targetID)
		return onPath || found
	case []interface{}:
		any := false
		for _, item := range val {
			if valueContains(item, targetID, meta) {
				any = true
			}
		}
		return any
	case map[string]interface{}:
		any := false
		for _, nested := range val {
			if valueContains(nested, targetID, meta) {
				any = true
			}
		}
		return any
	}
	return false
}
