package dto

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// ProofKey is the top-level attribute holding the proof of a signed claim.
const ProofKey = "sec:proof"

// Proof is a detached JWS Linked Data signature.
type Proof struct {
	Type    string `json:"type" mapstructure:"type"`
	Created string `json:"created" mapstructure:"created"`
	Creator string `json:"creator" mapstructure:"creator"`
	Nonce   string `json:"nonce,omitempty" mapstructure:"nonce"`
	JWS     string `json:"jws" mapstructure:"jws"`
}

// Options returns the proof without its signature value, the part of the
// proof that is itself signed.
func (p *Proof) Options() map[string]interface{} {
	opts := map[string]interface{}{
		"type":    p.Type,
		"created": p.Created,
		"creator": p.Creator,
	}
	if p.Nonce != "" {
		opts["nonce"] = p.Nonce
	}
	return opts
}

// ParseProof decodes an untrusted proof value. Unknown attributes are ignored,
// wrongly typed ones are an error.
func ParseProof(raw interface{}) (*Proof, error) {
	if _, ok := raw.(map[string]interface{}); !ok {
		if p, ok := raw.(*Proof); ok && p != nil {
			return p, nil
		}
		return nil, fmt.Errorf("invalid proof format: expected map[string]interface{}, got %T", raw)
	}

	var proof Proof
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &proof,
		TagName: "mapstructure",
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid proof: %w", err)
	}
	return &proof, nil
}
