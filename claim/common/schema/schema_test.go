package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pilacorp/go-claim-sdk/claim/common/crypto"
)

const (
	testID     = "476fbab14fc2c96079f80e77ba3ac38d11aeacac30c23a7b883bdbc580b9e2ff"
	testIssuer = "data:;base64,eyJhbGdvcml0aG0iOiJFZDI1NTE5U2lnbmF0dXJlMjAxOCIsInB1YmxpY0tleSI6IkpBaTlZb3lEZGdCUUxlbnlWem9YV0g0QzI2d0tNekhyamVydHhWcmpMV1RlIn0="
)

func validClaim() map[string]interface{} {
	return map[string]interface{}{
		"@context":     map[string]interface{}{"name": "schema:name"},
		"id":           testID,
		"type":         "Work",
		"issuer":       testIssuer,
		"issuanceDate": "2017-11-13T15:00:00.000Z",
		"claim":        map[string]interface{}{"name": "The Raven"},
	}
}

func validSignedClaim() map[string]interface{} {
	c := validClaim()
	c["sec:proof"] = map[string]interface{}{
		"type":    "Ed25519Signature2018",
		"created": "2017-11-13T15:00:01Z",
		"creator": testIssuer,
		"nonce":   "0b8a5f0e-5c2f-4d8e-9d3a-6a0d7a0b1c2d",
		"jws":     "eyJhbGciOiJFZERTQSIsImI2NCI6ZmFsc2UsImNyaXQiOlsiYjY0Il19..c2ln",
	}
	return c
}

func with(c map[string]interface{}, key string, value interface{}) map[string]interface{} {
	if value == nil {
		delete(c, key)
		return c
	}
	c[key] = value
	return c
}

func withProof(key string, value interface{}) map[string]interface{} {
	c := validSignedClaim()
	proof := c["sec:proof"].(map[string]interface{})
	if value == nil {
		delete(proof, key)
	} else {
		proof[key] = value
	}
	return c
}

func TestIsVerifiableClaim(t *testing.T) {
	tests := []struct {
		name     string
		obj      interface{}
		expected bool
	}{
		{name: "Valid", obj: validClaim(), expected: true},
		{name: "Valid without context", obj: with(validClaim(), "@context", nil), expected: true},
		{name: "Signed claim has extra proof", obj: validSignedClaim(), expected: false},
		{name: "Unrelated object", obj: map[string]interface{}{"foo": "bar"}, expected: false},
		{name: "Missing id", obj: with(validClaim(), "id", nil), expected: false},
		{name: "Short id", obj: with(validClaim(), "id", "abc"), expected: false},
		{name: "Non alphanumeric id", obj: with(validClaim(), "id", testID[:63]+"-"), expected: false},
		{name: "Long id", obj: with(validClaim(), "id", testID+"00"), expected: true},
		{name: "HTTP issuer", obj: with(validClaim(), "issuer", "https://example.com/keys/1"), expected: true},
		{name: "po.et issuer", obj: with(validClaim(), "issuer", "po.et://abc"), expected: true},
		{name: "FTP issuer", obj: with(validClaim(), "issuer", "ftp://example.com"), expected: false},
		{name: "Issuer with spaces", obj: with(validClaim(), "issuer", "data:abc def"), expected: false},
		{name: "HTTP issuer without authority", obj: with(validClaim(), "issuer", "http:"), expected: false},
		{name: "HTTPS issuer with empty authority", obj: with(validClaim(), "issuer", "https://"), expected: false},
		{name: "HTTP issuer with opaque path", obj: with(validClaim(), "issuer", "http:example.com"), expected: false},
		{name: "Empty data issuer", obj: with(validClaim(), "issuer", "data:"), expected: false},
		{name: "Legacy data issuer", obj: with(validClaim(), "issuer", "data:,JAi9YoyDdgBQLenyVzoXWH4C26wKMzHrjertxVrjLWTe"), expected: true},
		{name: "Issuer with angle brackets", obj: with(validClaim(), "issuer", "did:example:<1>"), expected: false},
		{name: "Issuer with quote", obj: with(validClaim(), "issuer", `https://example.com/"key"`), expected: false},
		{name: "Bad date", obj: with(validClaim(), "issuanceDate", "yesterday"), expected: false},
		{name: "Unknown type", obj: with(validClaim(), "type", "Book"), expected: false},
		{name: "Claim not object", obj: with(validClaim(), "claim", "text"), expected: false},
		{name: "Context not object", obj: with(validClaim(), "@context", "https://schema.org"), expected: false},
		{name: "Unknown key", obj: with(validClaim(), "extra", 1), expected: false},
		{name: "JSON bytes", obj: []byte(`{"id":"` + testID + `","type":"Identity","issuer":"did:example:1","issuanceDate":"2017-11-13T15:00:00Z","claim":{}}`), expected: true},
		{name: "Malformed JSON", obj: []byte(`{"id":`), expected: false},
		{name: "Nil", obj: nil, expected: false},
		{name: "Number", obj: 42, expected: false},
		{name: "Channel", obj: make(chan int), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsVerifiableClaim(tt.obj))
		})
	}
}

func TestIsSignedVerifiableClaim(t *testing.T) {
	tests := []struct {
		name     string
		obj      interface{}
		expected bool
	}{
		{name: "Valid", obj: validSignedClaim(), expected: true},
		{name: "Without nonce", obj: withProof("nonce", nil), expected: true},
		{name: "Unsigned", obj: validClaim(), expected: false},
		{name: "Unknown suite", obj: withProof("type", "HmacSignature2018"), expected: false},
		{name: "Secp256k1 suite", obj: withProof("type", "EcdsaSecp256k1Signature2019"), expected: true},
		{name: "Bad created", obj: withProof("created", "soon"), expected: false},
		{name: "Bad creator", obj: withProof("creator", "mailto:poe@example.com"), expected: false},
		{name: "Missing jws", obj: withProof("jws", nil), expected: false},
		{name: "Empty jws", obj: withProof("jws", ""), expected: false},
		{name: "Extra proof key", obj: withProof("domain", "example.com"), expected: false},
		{name: "Proof not object", obj: with(validClaim(), "sec:proof", "sig"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsSignedVerifiableClaim(tt.obj))
		})
	}
}

func TestValidatorRegistry(t *testing.T) {
	v, err := NewValidator(crypto.NewRegistry(crypto.NewEd25519Suite()))
	require.NoError(t, err)

	assert.True(t, v.IsSignedVerifiableClaim(validSignedClaim()))
	assert.False(t, v.IsSignedVerifiableClaim(withProof("type", "RsaSignature2018")))

	err = v.ValidateVerifiableClaim(with(validClaim(), "type", "Book"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "type")
}

func TestStructInput(t *testing.T) {
	type claim struct {
		ID           string                 `json:"id"`
		Type         string                 `json:"type"`
		Issuer       string                 `json:"issuer"`
		IssuanceDate string                 `json:"issuanceDate"`
		Claim        map[string]interface{} `json:"claim"`
	}

	assert.True(t, IsVerifiableClaim(claim{
		ID:           testID,
		Type:         "Work",
		Issuer:       testIssuer,
		IssuanceDate: "2017-11-13T15:00:00.000Z",
		Claim:        map[string]interface{}{},
	}))
	assert.False(t, IsVerifiableClaim(claim{ID: testID}))
}
