package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/reqm/internal/ir"
)

// marshalStrings converts a name list to canonical JSON TEXT. A nil list is
// stored as [].
func marshalStrings(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	data, err := ir.MarshalCanonical(list)
	if err != nil {
		return "", fmt.Errorf("marshal strings: %w", err)
	}
	return string(data), nil
}

// marshalPath converts a recorded path to canonical JSON TEXT.
func marshalPath(path []ir.StepRecord) (string, error) {
	steps := make([]any, len(path))
	for i, st := range path {
		steps[i] = st.CanonicalObject()
	}
	data, err := ir.MarshalCanonical(steps)
	if err != nil {
		return "", fmt.Errorf("marshal path: %w", err)
	}
	return string(data), nil
}

// marshalInput converts the requirement set to JSON TEXT. Rule IDs are part
// of the input, so the struct encoding is used rather than the hashed
// canonical object.
func marshalInput(rs ir.RequirementSet) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rs); err != nil {
		return "", fmt.Errorf("marshal input: %w", err)
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSpace(buf.String()), nil
}

// unmarshalStrings parses a stored name list. An empty list decodes to nil
// so that declarations read back the way they were written.
func unmarshalStrings(data string) ([]string, error) {
	if data == "" || data == "[]" {
		return nil, nil
	}
	var list []string
	if err := json.Unmarshal([]byte(data), &list); err != nil {
		return nil, fmt.Errorf("unmarshal strings: %w", err)
	}
	return list, nil
}

// unmarshalPath parses a stored path.
func unmarshalPath(data string) ([]ir.StepRecord, error) {
	path := []ir.StepRecord{}
	if data == "" {
		return path, nil
	}
	if err := json.Unmarshal([]byte(data), &path); err != nil {
		return nil, fmt.Errorf("unmarshal path: %w", err)
	}
	return path, nil
}

// unmarshalInput parses a stored requirement set.
func unmarshalInput(data string) (ir.RequirementSet, error) {
	var rs ir.RequirementSet
	if err := json.Unmarshal([]byte(data), &rs); err != nil {
		return ir.RequirementSet{}, fmt.Errorf("unmarshal input: %w", err)
	}
	return rs, nil
}
