package vc

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/pilacorp/go-claim-sdk/claim/common/crypto"
	"github.com/pilacorp/go-claim-sdk/claim/common/dto"
)

// Signer attaches proofs to verifiable claims. It is safe for concurrent use.
type Signer struct {
	opts *options
}

// NewSigner creates a Signer.
func NewSigner(opts ...Option) *Signer {
	return &Signer{opts: newOptions(opts)}
}

// Sign proves that claim's issuer vouches for it. Every produced signature is
// verified before it is returned.
//
// Unless WithAllowUndefinedTerms is set, payload attributes missing from the
// claim context are an error rather than being left unsigned.
func (s *Signer) Sign(claim *VerifiableClaim, privateKey string, alg crypto.Algorithm) (*SignedVerifiableClaim, error) {
	if claim == nil || claim.ID == "" {
		return nil, illegalArgument(msgEmptyID)
	}

	id, err := s.opts.claimID(&claim.BaseVerifiableClaim)
	if err != nil {
		return nil, err
	}
	if id != claim.ID {
		return nil, illegalArgument(msgAlteredID)
	}

	if claim.Issuer == "" {
		return nil, illegalArgument(msgInvalidCreator)
	}
	params, err := s.opts.registry.NewSigningParameters(privateKey, alg)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare signing parameters: %w", err)
	}
	suite, err := s.opts.registry.Suite(params.Algorithm)
	if err != nil {
		return nil, err
	}

	doc := signedDocument(claim)
	proof := &dto.Proof{
		Type:    string(params.Algorithm),
		Created: s.opts.clock().UTC().Format(time.RFC3339),
		Creator: claim.Issuer,
		Nonce:   params.Nonce,
	}

	data, err := s.opts.verifyData(proof, doc, !s.opts.allowUndefinedTerms)
	if err != nil {
		return nil, err
	}
	header := encodeHeader(suite.JWSAlgorithm())
	sig, err := suite.Sign(params.PrivateKey, signingInput(header, data))
	if err != nil {
		return nil, fmt.Errorf("failed to sign claim: %w", err)
	}
	proof.JWS = header + ".." + base64.RawURLEncoding.EncodeToString(sig)

	if err := doc.AddProof(proof); err != nil {
		return nil, fmt.Errorf("failed to attach proof: %w", err)
	}
	signed, err := decodeSigned(doc)
	if err != nil {
		return nil, err
	}

	if err := s.opts.verifyProof(context.Background(), signed); err != nil {
		s.opts.logger.Error("freshly signed claim does not verify", "id", claim.ID, "error", err)
		return nil, illegalArgument(msgInvalidSignature)
	}
	s.opts.logger.Debug("signed verifiable claim", "id", claim.ID, "algorithm", params.Algorithm)

	return signed, nil
}
