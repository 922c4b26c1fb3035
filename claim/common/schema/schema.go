package schema

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/pilacorp/go-claim-sdk/claim/common/crypto"
	"github.com/pilacorp/go-claim-sdk/claim/common/dto"
	"github.com/pilacorp/go-claim-sdk/claim/common/jsonmap"
	"github.com/pilacorp/go-claim-sdk/claim/common/ldcontext"
)

const (
	idPattern = `^[a-zA-Z0-9]{64,}$`
	// http(s) references need an authority; the others a non-empty body.
	// Only characters RFC 3986 allows in a URI are accepted.
	issuerPattern = `^(?:https?://[A-Za-z0-9\-._~%!$&'()*+,;=:@\[\]]+(?:[/?#][A-Za-z0-9\-._~%!$&'()*+,;=:@/?#\[\]]*)?|(?:po\.et|did|data):[A-Za-z0-9\-._~%!$&'()*+,;=:@/?#\[\]]+)$`
)

// Validator checks the structure of verifiable claims. It is safe for
// concurrent use.
type Validator struct {
	unsigned *gojsonschema.Schema
	signed   *gojsonschema.Schema
}

// NewValidator compiles the claim schemas. Proof types are limited to the
// suites of registry.
func NewValidator(registry *crypto.Registry) (*Validator, error) {
	if registry == nil {
		registry = crypto.DefaultRegistry()
	}

	unsigned, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(verifiableClaimSchema()))
	if err != nil {
		return nil, fmt.Errorf("failed to compile verifiable claim schema: %w", err)
	}
	signed, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(signedVerifiableClaimSchema(registry.Algorithms())))
	if err != nil {
		return nil, fmt.Errorf("failed to compile signed verifiable claim schema: %w", err)
	}
	return &Validator{unsigned: unsigned, signed: signed}, nil
}

var defaultValidator = sync.OnceValues(func() (*Validator, error) {
	return NewValidator(crypto.DefaultRegistry())
})

// ValidateVerifiableClaim explains why obj is not a verifiable claim.
func (v *Validator) ValidateVerifiableClaim(obj interface{}) error {
	return validate(v.unsigned, obj)
}

// ValidateSignedVerifiableClaim explains why obj is not a signed verifiable claim.
func (v *Validator) ValidateSignedVerifiableClaim(obj interface{}) error {
	return validate(v.signed, obj)
}

// IsVerifiableClaim never panics; any failure is reported as false.
func (v *Validator) IsVerifiableClaim(obj interface{}) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return v.ValidateVerifiableClaim(obj) == nil
}

// IsSignedVerifiableClaim never panics; any failure is reported as false.
func (v *Validator) IsSignedVerifiableClaim(obj interface{}) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return v.ValidateSignedVerifiableClaim(obj) == nil
}

// IsVerifiableClaim checks obj against the verifiable claim schema of the
// built-in claim types.
func IsVerifiableClaim(obj interface{}) bool {
	v, err := defaultValidator()
	if err != nil {
		return false
	}
	return v.IsVerifiableClaim(obj)
}

// IsSignedVerifiableClaim additionally requires a well-formed proof by one of
// the built-in suites.
func IsSignedVerifiableClaim(obj interface{}) bool {
	v, err := defaultValidator()
	if err != nil {
		return false
	}
	return v.IsSignedVerifiableClaim(obj)
}

// ValidateVerifiableClaim is Validator.ValidateVerifiableClaim for the
// built-in claim types and suites.
func ValidateVerifiableClaim(obj interface{}) error {
	v, err := defaultValidator()
	if err != nil {
		return err
	}
	return v.ValidateVerifiableClaim(obj)
}

// ValidateSignedVerifiableClaim is Validator.ValidateSignedVerifiableClaim
// for the built-in claim types and suites.
func ValidateSignedVerifiableClaim(obj interface{}) error {
	v, err := defaultValidator()
	if err != nil {
		return err
	}
	return v.ValidateSignedVerifiableClaim(obj)
}

func validate(schema *gojsonschema.Schema, obj interface{}) error {
	doc, err := toDocument(obj)
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(map[string]interface{}(doc)))
	if err != nil {
		return fmt.Errorf("failed to validate schema: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("claim validation failed: %s", strings.Join(msgs, "; "))
	}
	return nil
}

func toDocument(obj interface{}) (jsonmap.JSONMap, error) {
	switch v := obj.(type) {
	case nil:
		return nil, fmt.Errorf("claim is nil")
	case []byte:
		return jsonmap.Parse(v)
	case json.RawMessage:
		return jsonmap.Parse(v)
	case string:
		return jsonmap.Parse([]byte(v))
	default:
		return jsonmap.FromValue(v)
	}
}

func claimTypes() []interface{} {
	types := ldcontext.ClaimTypes()
	out := make([]interface{}, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}

func verifiableClaimProperties() map[string]interface{} {
	return map[string]interface{}{
		"@context":     map[string]interface{}{"type": "object"},
		"id":           map[string]interface{}{"type": "string", "pattern": idPattern},
		"issuer":       map[string]interface{}{"type": "string", "pattern": issuerPattern},
		"issuanceDate": map[string]interface{}{"type": "string", "format": "date-time"},
		"type":         map[string]interface{}{"type": "string", "enum": claimTypes()},
		"claim":        map[string]interface{}{"type": "object"},
	}
}

func verifiableClaimSchema() map[string]interface{} {
	return map[string]interface{}{
		"$schema":              "http://json-schema.org/draft-07/schema#",
		"type":                 "object",
		"properties":           verifiableClaimProperties(),
		"required":             []interface{}{"id", "issuer", "issuanceDate", "type", "claim"},
		"additionalProperties": false,
	}
}

func signedVerifiableClaimSchema(algorithms []crypto.Algorithm) map[string]interface{} {
	suites := make([]interface{}, len(algorithms))
	for i, alg := range algorithms {
		suites[i] = string(alg)
	}

	properties := verifiableClaimProperties()
	properties[dto.ProofKey] = map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"type":    map[string]interface{}{"type": "string", "enum": suites},
			"created": map[string]interface{}{"type": "string", "format": "date-time"},
			"creator": map[string]interface{}{"type": "string", "pattern": issuerPattern},
			"nonce":   map[string]interface{}{"type": "string"},
			"jws":     map[string]interface{}{"type": "string", "minLength": 1},
		},
		"required":             []interface{}{"type", "created", "creator", "jws"},
		"additionalProperties": false,
	}

	return map[string]interface{}{
		"$schema":              "http://json-schema.org/draft-07/schema#",
		"type":                 "object",
		"properties":           properties,
		"required":             []interface{}{"id", "issuer", "issuanceDate", "type", "claim", dto.ProofKey},
		"additionalProperties": false,
	}
}
