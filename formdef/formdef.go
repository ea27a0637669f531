// Package formdef holds the raw, uncompiled representation of a journey
// (the decoded JSON tree a node.Factory consumes) and the operations that
// work on it before compilation — currently just incremental patching
// (see formdef/patch).
package formdef

import "encoding/json"

// Journey is a decoded, not-yet-factory-built journey definition.
type Journey = map[string]interface{}

// Decode unmarshals raw journey JSON into a Journey tree.
func Decode(raw []byte) (Journey, error) {
	var j Journey
	if err := json.Unmarshal(raw, &j); err != nil {
		return nil, err
	}
	return j, nil
}

// Encode marshals a Journey tree back to JSON.
func Encode(j Journey) ([]byte, error) {
	return json.Marshal(j)
}
