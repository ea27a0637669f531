package node

// PseudoKind discriminates a PseudoNode (spec §3).
type PseudoKind string

const (
	PseudoPost         PseudoKind = "POST"
	PseudoQuery        PseudoKind = "QUERY"
	PseudoParams       PseudoKind = "PARAMS"
	PseudoData         PseudoKind = "DATA"
	PseudoAnswerLocal  PseudoKind = "ANSWER_LOCAL"
	PseudoAnswerRemote PseudoKind = "ANSWER_REMOTE"
)

// PseudoNode represents a request-time data source. Pseudo-nodes have no Raw
// back-reference — they exist only to be data-flow producers for references.
type PseudoNode struct {
	ID   ID
	Kind PseudoKind

	// BaseFieldCode / Key is the field code or param/query name this
	// pseudo-node was synthesized for. For POST/ANSWER_LOCAL this is the
	// field code; for QUERY/PARAMS it is the param name; for DATA it is
	// the context.data property name.
	Key string

	// FieldNodeID is set for POST and ANSWER_LOCAL: the node id of the
	// Block this pseudo-node belongs to, when that block is known.
	FieldNodeID ID
}

// ScopeKey returns the (namespace, key) pair pseudo-node synthesis
// deduplicates on.
func (p *PseudoNode) ScopeKey() string {
	return string(p.Kind) + ":" + p.Key
}
