// Package facts turns a nested inspection answer document into a flat
// path → value fact table.
package facts

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ppiankov/riskline/internal/model"
)

// maxEnvelopeDepth bounds how many nested {value, status} envelopes are unwrapped
const maxEnvelopeDepth = 2

// Flatten walks answers and returns a fact table keyed by dot-joined paths.
// Answer envelopes are unwrapped; arrays are stored as-is.
func Flatten(answers map[string]any) model.Facts {
	out := make(model.Facts)
	walk(answers, "", out)
	return out
}

func walk(node map[string]any, prefix string, out model.Facts) {
	for key, raw := range node {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		value, wrapped := Unwrap(raw)
		if obj, ok := value.(map[string]any); ok && !wrapped {
			walk(obj, path, out)
			continue
		}
		out[path] = value
	}
}

// Unwrap strips up to maxEnvelopeDepth answer envelopes from v.
// The boolean reports whether at least one envelope was removed.
func Unwrap(v any) (any, bool) {
	wrapped := false
	for i := 0; i < maxEnvelopeDepth; i++ {
		env, ok := asEnvelope(v)
		if !ok {
			break
		}
		v = env
		wrapped = true
	}
	return v, wrapped
}

// asEnvelope returns the inner value when v is an object carrying both
// "value" and "status" keys
func asEnvelope(v any) (any, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	inner, hasValue := obj["value"]
	_, hasStatus := obj["status"]
	if !hasValue || !hasStatus {
		return nil, false
	}
	return inner, true
}

// FromJSON decodes an answer document, keeping numbers as json.Number
func FromJSON(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var answers map[string]any
	if err := dec.Decode(&answers); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	if answers == nil {
		return nil, fmt.Errorf("decode answers: document is not an object")
	}
	return answers, nil
}
