package jsonmap

import (
	"encoding/json"
	"fmt"

	"github.com/pilacorp/go-claim-sdk/claim/common/dto"
	"github.com/pilacorp/go-claim-sdk/claim/common/processor"
)

// JSONMap represents a JSON object as a map.
type JSONMap map[string]interface{}

// FromValue converts any JSON-marshalable object into a JSONMap holding only
// generic JSON values.
func FromValue(v interface{}) (JSONMap, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal value: %w", err)
	}
	return Parse(data)
}

// Parse decodes a JSON object.
func Parse(data []byte) (JSONMap, error) {
	var m JSONMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON object: %w", err)
	}
	if m == nil {
		return nil, fmt.Errorf("JSON value is null")
	}
	return m, nil
}

// ToJSON serializes the JSONMap to JSON.
func (m *JSONMap) ToJSON() ([]byte, error) {
	if m == nil || *m == nil {
		return nil, fmt.Errorf("JSONMap is nil")
	}

	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSONMap: %w", err)
	}
	return data, nil
}

// Without returns a shallow copy of m lacking keys.
func (m JSONMap) Without(keys ...string) JSONMap {
	out := make(JSONMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// Proof decodes the attached proof.
func (m JSONMap) Proof() (*dto.Proof, error) {
	raw, ok := m[dto.ProofKey]
	if !ok {
		return nil, fmt.Errorf("JSONMap has no proof")
	}
	return dto.ParseProof(raw)
}

// AddProof attaches proof under dto.ProofKey, replacing any previous one.
func (m *JSONMap) AddProof(proof *dto.Proof) error {
	if m == nil || *m == nil {
		return fmt.Errorf("JSONMap is nil")
	}
	if proof == nil {
		return fmt.Errorf("proof is nil")
	}
	raw, err := FromValue(proof)
	if err != nil {
		return err
	}
	(*m)[dto.ProofKey] = map[string]interface{}(raw)
	return nil
}

// Canonicalize returns the canonical N-Quads of m, excluding the proof and
// the given keys.
func (m JSONMap) Canonicalize(exclude []string, opts ...processor.Opt) ([]byte, error) {
	doc := m.Without(append([]string{dto.ProofKey}, exclude...)...)
	return processor.CanonicalizeDocument(map[string]interface{}(doc), opts...)
}
