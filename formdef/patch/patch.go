// Package patch implements incremental RFC6902 JSON Patch editing of a
// journey's raw (pre-factory) JSON — the "incremental authoring" feature
// supplemented beyond spec.md (SPEC_FULL.md §4), grounded on the teacher's
// common/validation.PatchValidator retargeted from workflow nodes to
// journey steps.
package patch

import (
	"encoding/json"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch/v5"

	engerrors "github.com/lyzr/formengine/errors"
	"github.com/lyzr/formengine/node"
)

// maxOperations caps how many ops a single patch document may contain,
// mirroring the teacher's per-patch agent-node cap (there: 5 agent nodes;
// here: one cap on the whole document, since a journey patch has no single
// node kind worth singling out the way the teacher's workflow patches do).
const maxOperations = 50

// Operation is one decoded RFC6902 patch operation.
type Operation struct {
	Op    string      `json:"op"`
	Path  string      `json:"path"`
	Value interface{} `json:"value,omitempty"`
	From  string      `json:"from,omitempty"`
}

// Validate checks structural well-formedness of a patch document before it
// is ever applied: every operation has a recognized op and a path, and
// add/replace operations carry a value. It does not inspect the target
// journey — that only happens once Apply re-factory-builds the result.
func Validate(ops []Operation) error {
	if len(ops) == 0 {
		return engerrors.New(engerrors.SchemaError, "patch document has no operations")
	}
	if len(ops) > maxOperations {
		return engerrors.New(engerrors.SchemaError,
			fmt.Sprintf("patch document exceeds %d operations (got %d)", maxOperations, len(ops)))
	}
	for i, op := range ops {
		if err := validateOperation(op, i); err != nil {
			return err
		}
	}
	return nil
}

func validateOperation(op Operation, index int) error {
	switch op.Op {
	case "add", "replace":
		if op.Value == nil {
			return engerrors.New(engerrors.SchemaError,
				fmt.Sprintf("operation %d: %q requires a value", index, op.Op))
		}
	case "remove":
		// no value required
	case "move", "copy":
		if op.From == "" {
			return engerrors.New(engerrors.SchemaError,
				fmt.Sprintf("operation %d: %q requires \"from\"", index, op.Op))
		}
	case "test":
		// no additional structural requirement
	default:
		return engerrors.New(engerrors.SchemaError,
			fmt.Sprintf("operation %d: unsupported op %q", index, op.Op))
	}
	if op.Path == "" {
		return engerrors.New(engerrors.SchemaError,
			fmt.Sprintf("operation %d: missing \"path\"", index))
	}
	return nil
}

// Apply validates ops, applies them to journeyJSON via RFC6902, and
// confirms the patched result still factory-builds into a valid ASTNode
// tree before returning it. A patch is never partially accepted: if either
// validation or the post-patch factory build fails, journeyJSON is
// returned unmodified alongside the error.
func Apply(journeyJSON []byte, ops []Operation) ([]byte, error) {
	if err := Validate(ops); err != nil {
		return journeyJSON, err
	}

	opsJSON, err := json.Marshal(ops)
	if err != nil {
		return journeyJSON, engerrors.Wrap(engerrors.SchemaError, "", "marshal patch operations", err)
	}
	decoded, err := jsonpatch.DecodePatch(opsJSON)
	if err != nil {
		return journeyJSON, engerrors.Wrap(engerrors.SchemaError, "", "decode RFC6902 patch", err)
	}

	patched, err := decoded.Apply(journeyJSON)
	if err != nil {
		return journeyJSON, engerrors.Wrap(engerrors.SchemaError, "", "apply RFC6902 patch", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(patched, &raw); err != nil {
		return journeyJSON, engerrors.Wrap(engerrors.SchemaError, "", "decode patched journey", err)
	}

	gen := node.NewIDGenerator(node.OriginCompile)
	factory := node.NewFactory(gen)
	if _, err := factory.CreateNode(raw, "$"); err != nil {
		return journeyJSON, engerrors.Wrap(engerrors.SchemaError, "", "patched journey failed to compile", err)
	}

	return patched, nil
}
