package vc

import (
	"fmt"

	"github.com/pilacorp/go-claim-sdk/claim/common/jsonmap"
	"github.com/pilacorp/go-claim-sdk/claim/common/ldcontext"
	"github.com/pilacorp/go-claim-sdk/claim/common/processor"
)

// contextualDocument is the JSON-LD document identifying c. The identifier
// and proof are never part of it.
func contextualDocument(c *BaseVerifiableClaim) map[string]interface{} {
	return map[string]interface{}{
		"@context":     c.effectiveContext(),
		"type":         string(c.Type),
		"issuer":       c.Issuer,
		"issuanceDate": c.IssuanceDate,
		"claim":        c.Claim,
	}
}

func (c *BaseVerifiableClaim) effectiveContext() ldcontext.Context {
	return ldcontext.Effective(c.Type, c.Context)
}

// signedDocument is contextualDocument plus the identifier: what a proof covers.
func signedDocument(c *VerifiableClaim) jsonmap.JSONMap {
	doc := jsonmap.JSONMap(contextualDocument(&c.BaseVerifiableClaim))
	doc["id"] = c.ID
	return doc
}

// Canonicalize returns the canonical N-Quads of c under its effective context.
// Attributes the context does not define are dropped.
func Canonicalize(c *BaseVerifiableClaim, opts ...Option) ([]byte, error) {
	return newOptions(opts).canonicalize(c)
}

// GenerateClaimID returns the lowercase hex SHA-256 of the canonical form of c.
func GenerateClaimID(c *BaseVerifiableClaim, opts ...Option) (string, error) {
	return newOptions(opts).claimID(c)
}

func (o *options) canonicalize(c *BaseVerifiableClaim) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: claim is nil", ErrCanonicalization)
	}
	canonical, err := processor.CanonicalizeDocument(contextualDocument(c), o.processorOpts(false)...)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize claim: %w", err)
	}
	return canonical, nil
}

func (o *options) claimID(c *BaseVerifiableClaim) (string, error) {
	canonical, err := o.canonicalize(c)
	if err != nil {
		return "", err
	}
	return processor.HexDigest(canonical), nil
}
