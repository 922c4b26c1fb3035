package vc

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pilacorp/go-claim-sdk/claim/common/dto"
	"github.com/pilacorp/go-claim-sdk/claim/common/jsonmap"
	"github.com/pilacorp/go-claim-sdk/claim/common/processor"
)

// securityContext defines the proof option terms inline so proofs never need
// a remote context.
func securityContext() map[string]interface{} {
	return map[string]interface{}{
		"@vocab": "https://w3id.org/security#",
		"dc":     "http://purl.org/dc/terms/",
		"sec":    "https://w3id.org/security#",
		"xsd":    "http://www.w3.org/2001/XMLSchema#",

		"type":    "@type",
		"created": map[string]interface{}{"@id": "dc:created", "@type": "xsd:dateTime"},
		"creator": map[string]interface{}{"@id": "dc:creator", "@type": "@id"},
		"nonce":   "sec:nonce",
	}
}

// jwsHeader is the protected header of an unencoded-payload JWS (RFC 7797).
type jwsHeader struct {
	Alg  string   `json:"alg"`
	B64  bool     `json:"b64"`
	Crit []string `json:"crit"`
}

func encodeHeader(alg string) string {
	raw, _ := json.Marshal(jwsHeader{Alg: alg, B64: false, Crit: []string{"b64"}})
	return base64.RawURLEncoding.EncodeToString(raw)
}

// parseDetachedJWS splits "<header>..<signature>" and checks the header.
func parseDetachedJWS(jws string) (string, *jwsHeader, []byte, error) {
	parts := strings.Split(jws, ".")
	if len(parts) != 3 || parts[1] != "" {
		return "", nil, nil, errors.New("jws is not a detached compact serialization")
	}

	rawHeader, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", nil, nil, fmt.Errorf("jws header is not base64url: %w", err)
	}
	var header jwsHeader
	if err := json.Unmarshal(rawHeader, &header); err != nil {
		return "", nil, nil, fmt.Errorf("jws header is not JSON: %w", err)
	}
	if header.B64 || !contains(header.Crit, "b64") {
		return "", nil, nil, errors.New("jws payload must be unencoded")
	}

	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return "", nil, nil, fmt.Errorf("jws signature is not base64url: %w", err)
	}
	return parts[0], &header, sig, nil
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

// verifyData is sha256(canonical proof options) || sha256(canonical document).
// Strict rejects document attributes the claim context does not define.
func (o *options) verifyData(proof *dto.Proof, doc jsonmap.JSONMap, strict bool) ([]byte, error) {
	proofOptions := proof.Options()
	proofOptions["@context"] = securityContext()

	canonicalProof, err := processor.CanonicalizeDocument(proofOptions, o.processorOpts(false)...)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize proof options: %w", err)
	}
	canonicalDoc, err := doc.Canonicalize(nil, o.processorOpts(strict)...)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize claim: %w", err)
	}

	data := processor.ComputeDigest(canonicalProof)
	return append(data, processor.ComputeDigest(canonicalDoc)...), nil
}

func signingInput(header string, data []byte) []byte {
	return append([]byte(header+"."), data...)
}
