package vc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/pilacorp/go-claim-sdk/claim/common/crypto"
	"github.com/pilacorp/go-claim-sdk/claim/common/dto"
	"github.com/pilacorp/go-claim-sdk/claim/common/jsonmap"
	"github.com/pilacorp/go-claim-sdk/claim/common/schema"
)

// Verifier checks signed claims. Every check reports failure as false and
// logs the reason at debug level. It is safe for concurrent use.
type Verifier struct {
	opts      *options
	validator *schema.Validator
}

// NewVerifier creates a Verifier.
func NewVerifier(opts ...Option) (*Verifier, error) {
	o := newOptions(opts)
	validator, err := schema.NewValidator(o.registry)
	if err != nil {
		return nil, err
	}
	return &Verifier{opts: o, validator: validator}, nil
}

// IsValidSignature reports whether the proof of claim was produced by the
// key its creator resolves to, over the claim's current content. claim may be
// a *SignedVerifiableClaim, a map or raw JSON.
func (v *Verifier) IsValidSignature(claim interface{}) bool {
	return v.isValidSignature(context.Background(), claim)
}

// IsValidSignedVerifiableClaim additionally requires a well-formed claim whose
// identifier matches its content. With WithRequireIssuerAsCreator the proof
// must also come from the claim's issuer.
func (v *Verifier) IsValidSignedVerifiableClaim(claim interface{}) bool {
	return v.isValidSignedVerifiableClaim(context.Background(), claim)
}

// VerifyAll runs IsValidSignedVerifiableClaim over claims in parallel.
// Claims not checked before ctx is done are reported invalid.
func (v *Verifier) VerifyAll(ctx context.Context, claims []interface{}) []bool {
	results := make([]bool, len(claims))

	g := new(errgroup.Group)
	g.SetLimit(v.opts.concurrency)
	for i, claim := range claims {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			results[i] = v.isValidSignedVerifiableClaim(ctx, claim)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (v *Verifier) isValidSignature(ctx context.Context, claim interface{}) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			v.opts.logger.ErrorContext(ctx, "signature verification panicked", "panic", r)
			ok = false
		}
	}()

	if err := v.verifySignature(ctx, claim); err != nil {
		v.opts.logger.DebugContext(ctx, "invalid claim signature", "error", err)
		return false
	}
	return true
}

func (v *Verifier) isValidSignedVerifiableClaim(ctx context.Context, claim interface{}) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			v.opts.logger.ErrorContext(ctx, "claim verification panicked", "panic", r)
			ok = false
		}
	}()

	if err := v.verifySignedVerifiableClaim(ctx, claim); err != nil {
		v.opts.logger.DebugContext(ctx, "invalid signed verifiable claim", "error", err)
		return false
	}
	return true
}

func (v *Verifier) verifySignedVerifiableClaim(ctx context.Context, claim interface{}) error {
	m, err := toJSONMap(claim)
	if err != nil {
		return err
	}
	if err := v.validator.ValidateSignedVerifiableClaim(m); err != nil {
		return err
	}

	signed, err := decodeSigned(m)
	if err != nil {
		return err
	}
	if v.opts.issuerAsCreator && signed.Proof.Creator != signed.Issuer {
		return fmt.Errorf("proof creator %q is not the claim issuer", signed.Proof.Creator)
	}
	if err := v.verifySignature(ctx, signed); err != nil {
		return err
	}

	id, err := v.opts.claimID(&signed.BaseVerifiableClaim)
	if err != nil {
		return err
	}
	if id != signed.ID {
		return fmt.Errorf("claim id %s does not match its content (%s)", signed.ID, id)
	}
	return nil
}

func (v *Verifier) verifySignature(ctx context.Context, claim interface{}) error {
	signed, ok := claim.(*SignedVerifiableClaim)
	if !ok || signed == nil {
		m, err := toJSONMap(claim)
		if err != nil {
			return err
		}
		if signed, err = decodeSigned(m); err != nil {
			return err
		}
	}
	return v.opts.verifyProof(ctx, signed)
}

func (o *options) verifyProof(ctx context.Context, c *SignedVerifiableClaim) error {
	proof := c.Proof
	if proof == nil {
		return errors.New("claim has no proof")
	}
	if proof.Creator == "" {
		return errors.New("proof has no creator")
	}

	suite, err := o.registry.Suite(crypto.Algorithm(proof.Type))
	if err != nil {
		return err
	}
	key, err := o.resolver.Resolve(ctx, proof.Creator)
	if err != nil {
		return err
	}
	if key.Algorithm != suite.Algorithm() {
		return fmt.Errorf("creator key is %s, proof is %s", key.Algorithm, suite.Algorithm())
	}

	header, jws, sig, err := parseDetachedJWS(proof.JWS)
	if err != nil {
		return err
	}
	if jws.Alg != suite.JWSAlgorithm() {
		return fmt.Errorf("jws alg %q does not match %s", jws.Alg, suite.Algorithm())
	}

	data, err := o.verifyData(proof, signedDocument(&c.VerifiableClaim), false)
	if err != nil {
		return err
	}
	return suite.Verify(key.PublicKey, signingInput(header, data), sig)
}

func toJSONMap(claim interface{}) (jsonmap.JSONMap, error) {
	switch c := claim.(type) {
	case nil:
		return nil, errors.New("claim is nil")
	case jsonmap.JSONMap:
		return c, nil
	case []byte:
		return jsonmap.Parse(c)
	case json.RawMessage:
		return jsonmap.Parse(c)
	case string:
		return jsonmap.Parse([]byte(c))
	default:
		return jsonmap.FromValue(c)
	}
}

// decodeSigned splits m into its proof and the claim the proof covers.
func decodeSigned(m jsonmap.JSONMap) (*SignedVerifiableClaim, error) {
	proof, err := m.Proof()
	if err != nil {
		return nil, err
	}

	content := m.Without(dto.ProofKey)
	data, err := content.ToJSON()
	if err != nil {
		return nil, err
	}
	var c VerifiableClaim
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("malformed signed claim: %w", err)
	}
	return &SignedVerifiableClaim{VerifiableClaim: c, Proof: proof}, nil
}
