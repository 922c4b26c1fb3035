package vc

import (
	"encoding/json"
	"fmt"

	"github.com/pilacorp/go-claim-sdk/claim/common/dto"
	"github.com/pilacorp/go-claim-sdk/claim/common/ldcontext"
	"github.com/pilacorp/go-claim-sdk/claim/common/schema"
)

// ClaimType re-exports the claim type tags.
type ClaimType = ldcontext.ClaimType

const (
	Identity = ldcontext.Identity
	Work     = ldcontext.Work
)

// BaseVerifiableClaim is a typed claim before it gets its identifier.
type BaseVerifiableClaim struct {
	Context      ldcontext.Context      `json:"@context,omitempty"`
	Type         ClaimType              `json:"type"`
	Issuer       string                 `json:"issuer"`
	IssuanceDate string                 `json:"issuanceDate"`
	Claim        map[string]interface{} `json:"claim"`
}

// VerifiableClaim carries its content identifier.
type VerifiableClaim struct {
	BaseVerifiableClaim
	ID string `json:"id"`
}

// SignedVerifiableClaim carries a proof by its issuer.
type SignedVerifiableClaim struct {
	VerifiableClaim
	Proof *dto.Proof `json:"sec:proof"`
}

// ToJSON serializes the claim.
func (c *BaseVerifiableClaim) ToJSON() ([]byte, error) {
	return toJSON(c)
}

// ToJSON serializes the claim.
func (c *VerifiableClaim) ToJSON() ([]byte, error) {
	return toJSON(c)
}

// ToJSON serializes the claim.
func (c *SignedVerifiableClaim) ToJSON() ([]byte, error) {
	return toJSON(c)
}

func toJSON(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal claim: %w", err)
	}
	return data, nil
}

// ParseVerifiableClaim decodes and structurally validates a verifiable claim.
func ParseVerifiableClaim(data []byte) (*VerifiableClaim, error) {
	if err := schema.ValidateVerifiableClaim(data); err != nil {
		return nil, fmt.Errorf("failed to parse verifiable claim: %w", err)
	}
	var c VerifiableClaim
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse verifiable claim: %w", err)
	}
	return &c, nil
}

// ParseSignedVerifiableClaim decodes and structurally validates a signed claim.
func ParseSignedVerifiableClaim(data []byte) (*SignedVerifiableClaim, error) {
	if err := schema.ValidateSignedVerifiableClaim(data); err != nil {
		return nil, fmt.Errorf("failed to parse signed verifiable claim: %w", err)
	}
	var c SignedVerifiableClaim
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse signed verifiable claim: %w", err)
	}
	return &c, nil
}
