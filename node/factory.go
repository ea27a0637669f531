package node

import (
	"fmt"

	engerrors "github.com/lyzr/formengine/errors"
)

// Factory turns a declarative JSON tree into typed ASTNodes with unique ids
// (spec §4.1). One Factory is used per compilation; construct a fresh one
// per RuntimeOverlay so materialized subtrees allocate from the overlay's own
// generator.
type Factory struct {
	gen *IDGenerator
}

// NewFactory creates a factory that allocates ids from gen.
func NewFactory(gen *IDGenerator) *Factory {
	return &Factory{gen: gen}
}

// CreateNode transforms one tagged JSON record into an ASTNode, recursively
// transforming its children. raw must carry a "type" field matching one of
// the Type constants.
func (f *Factory) CreateNode(raw map[string]interface{}, path string) (*ASTNode, error) {
	typRaw, ok := raw["type"]
	if !ok {
		return nil, engerrors.New(engerrors.InvalidNode, "missing \"type\" at "+path)
	}
	typStr, ok := typRaw.(string)
	if !ok {
		return nil, engerrors.New(engerrors.InvalidNode, "\"type\" must be a string at "+path)
	}

	typ := Type(typStr)
	n := &ASTNode{
		ID:         f.gen.Next(CategoryAST),
		Type:       typ,
		Raw:        raw,
		Properties: make(map[string]interface{}, len(raw)),
	}

	switch typ {
	case TypeBlock:
		n.Subtype, _ = raw["blockType"].(string)
	case TypeExpression:
		n.Subtype, _ = raw["expressionType"].(string)
	case TypePredicate:
		n.Subtype, _ = raw["predicateType"].(string)
	case TypeTransition:
		n.Subtype, _ = raw["transitionType"].(string)
	case TypeOutcome:
		n.Subtype, _ = raw["outcomeType"].(string)
	case TypeJourney, TypeStep:
		// no subtype discriminator
	default:
		return nil, engerrors.At(engerrors.UnknownNodeType, "", fmt.Sprintf("unknown node type %q at %s", typStr, path))
	}

	for key, val := range raw {
		if key == "type" {
			continue
		}
		// Iterate's yield/predicate templates stay raw JSON (spec §4.1
		// "Iterate subtlety") so the overlay can instantiate them per item.
		if typ == TypeExpression && n.Subtype == string(ExprIterate) && key == "iterator" {
			n.Properties[key] = val
			continue
		}
		transformed, err := f.transformValue(val, fmt.Sprintf("%s.%s", path, key))
		if err != nil {
			return nil, err
		}
		n.Properties[key] = transformed
	}

	if err := f.validateRequired(n, path); err != nil {
		return nil, err
	}

	return n, nil
}

// transformValue returns a child ASTNode if v is a tagged record, recurses
// through arrays, and returns literals unchanged.
func (f *Factory) transformValue(v interface{}, path string) (interface{}, error) {
	switch val := v.(type) {
	case map[string]interface{}:
		if _, tagged := val["type"]; tagged {
			return f.CreateNode(val, path)
		}
		// Untagged maps (e.g. a SUBMIT transition's onValid/onInvalid/
		// onAlways record) are not themselves nodes, but their values may
		// still contain tagged nodes and must be transformed recursively.
		out := make(map[string]interface{}, len(val))
		for key, nested := range val {
			transformed, err := f.transformValue(nested, fmt.Sprintf("%s.%s", path, key))
			if err != nil {
				return nil, err
			}
			out[key] = transformed
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			transformed, err := f.transformValue(item, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out[i] = transformed
		}
		return out, nil
	default:
		return v, nil
	}
}

// requiredFields lists the properties each subtype must carry.
var requiredFields = map[string][]string{
	string(ExprReference):   {"path"},
	string(ExprPipeline):    {"input", "steps"},
	string(ExprFormat):      {"template", "arguments"},
	string(ExprIterate):     {"input", "iterator"},
	string(ExprConditional): {"predicate"},
	string(ExprNext):        {"goto"},
	string(ExprValidation):  {"when", "message"},
	string(ExprFunction):    {"name", "functionType"},
	string(PredicateTest):   {"subject", "condition"},
	string(PredicateAnd):    {"operands"},
	string(PredicateOr):     {"operands"},
	string(PredicateXor):    {"operands"},
	string(PredicateNot):    {"operand"},
	string(TransitionLoad):   {"effects"},
	string(TransitionAccess): {},
	string(TransitionAction): {"when", "effects"},
	string(TransitionSubmit): {"validate"},
	string(OutcomeRedirect):   {"goto"},
	string(OutcomeThrowError): {"status", "message"},
}

func (f *Factory) validateRequired(n *ASTNode, path string) error {
	fields, ok := requiredFields[n.Subtype]
	if !ok {
		return nil
	}
	for _, field := range fields {
		if _, present := n.Properties[field]; !present {
			return engerrors.At(engerrors.InvalidNode, string(n.ID),
				fmt.Sprintf("%s node missing required field %q at %s", n.Subtype, field, path))
		}
	}
	return nil
}
