package node

import "github.com/lyzr/formengine/registry"

// Type is the top-level discriminator of an ASTNode (spec §3).
type Type string

const (
	TypeJourney    Type = "Journey"
	TypeStep       Type = "Step"
	TypeBlock      Type = "Block"
	TypeExpression Type = "Expression"
	TypePredicate  Type = "Predicate"
	TypeTransition Type = "Transition"
	TypeOutcome    Type = "Outcome"
)

// BlockType discriminates a Block node.
type BlockType string

const (
	BlockField BlockType = "FIELD"
	BlockBasic BlockType = "BASIC"
)

// ExpressionType discriminates an Expression node.
type ExpressionType string

const (
	ExprReference   ExpressionType = "REFERENCE"
	ExprPipeline    ExpressionType = "PIPELINE"
	ExprFormat      ExpressionType = "FORMAT"
	ExprIterate     ExpressionType = "ITERATE"
	ExprConditional ExpressionType = "CONDITIONAL"
	ExprNext        ExpressionType = "NEXT"
	ExprValidation  ExpressionType = "VALIDATION"
	ExprFunction    ExpressionType = "FUNCTION"
)

// PredicateType discriminates a Predicate node.
type PredicateType string

const (
	PredicateTest PredicateType = "TEST"
	PredicateAnd  PredicateType = "AND"
	PredicateOr   PredicateType = "OR"
	PredicateXor  PredicateType = "XOR"
	PredicateNot  PredicateType = "NOT"
)

// TransitionType discriminates a Transition node.
type TransitionType string

const (
	TransitionLoad   TransitionType = "LOAD"
	TransitionAccess TransitionType = "ACCESS"
	TransitionAction TransitionType = "ACTION"
	TransitionSubmit TransitionType = "SUBMIT"
)

// OutcomeType discriminates an Outcome node.
type OutcomeType string

const (
	OutcomeRedirect    OutcomeType = "REDIRECT"
	OutcomeThrowError  OutcomeType = "THROW_ERROR"
)

// IteratorKind discriminates an ITERATE expression's iterator.
type IteratorKind string

const (
	IteratorMap    IteratorKind = "MAP"
	IteratorFilter IteratorKind = "FILTER"
	IteratorFind   IteratorKind = "FIND"
)

// FunctionCallType re-exports registry.FunctionType so FUNCTION expression
// nodes share one vocabulary with the registry they are looked up in.
type FunctionCallType = registry.FunctionType

const (
	FunctionCondition   = registry.FunctionCondition
	FunctionTransformer = registry.FunctionTransformer
	FunctionEffect      = registry.FunctionEffect
	FunctionGenerator   = registry.FunctionGenerator
)

// ASTNode is the tagged-sum node every factory produces (spec §3).
type ASTNode struct {
	ID         ID
	Type       Type
	Subtype    string
	Properties map[string]interface{}
	Raw        interface{}
}

// Prop returns a raw property value and whether it was present.
func (n *ASTNode) Prop(name string) (interface{}, bool) {
	v, ok := n.Properties[name]
	return v, ok
}

// NodeProp returns a property as *ASTNode when it is one.
func (n *ASTNode) NodeProp(name string) (*ASTNode, bool) {
	v, ok := n.Properties[name]
	if !ok || v == nil {
		return nil, false
	}
	child, ok := v.(*ASTNode)
	return child, ok
}

// NodeSliceProp returns a property as a []*ASTNode, skipping non-node entries.
func (n *ASTNode) NodeSliceProp(name string) []*ASTNode {
	v, ok := n.Properties[name]
	if !ok || v == nil {
		return nil
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]*ASTNode, 0, len(raw))
	for _, item := range raw {
		if child, ok := item.(*ASTNode); ok {
			out = append(out, child)
		}
	}
	return out
}

// StringProp returns a property as a string, with an empty-string default.
func (n *ASTNode) StringProp(name string) string {
	v, ok := n.Properties[name]
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

// BoolProp returns a property as a bool, with a false default.
func (n *ASTNode) BoolProp(name string) bool {
	v, ok := n.Properties[name]
	if !ok || v == nil {
		return false
	}
	b, _ := v.(bool)
	return b
}
