package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPrivateKey = "LWgo1jraJrCB2QT64UVgRemepsNopBF3eJaYMPYVTxpEoFx7sSzCb1QysHeJkH2fnGFgHirgVR35Hz5A1PpXuH6"
	testIssuer     = "data:;base64,eyJhbGdvcml0aG0iOiJFZDI1NTE5U2lnbmF0dXJlMjAxOCIsInB1YmxpY0tleSI6IkpBaTlZb3lEZGdCUUxlbnlWem9YV0g0QzI2d0tNekhyamVydHhWcmpMV1RlIn0="
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(viper.New())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--offline"}, args...))
	err := cmd.Execute()
	return strings.TrimSpace(out.String()), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestIssuer(t *testing.T) {
	out, err := run(t, "", "issuer", "--private-key", testPrivateKey)
	require.NoError(t, err)
	assert.Equal(t, testIssuer, out)

	t.Setenv("CLAIMCTL_PRIVATE_KEY", testPrivateKey)
	out, err = run(t, "", "issuer")
	require.NoError(t, err)
	assert.Equal(t, testIssuer, out)

	_, err = run(t, "", "issuer", "--algorithm", "Foo", "--public-key", "abc")
	assert.ErrorContains(t, err, "Unsupported Signing Algorithm Foo")
}

func TestKeygen(t *testing.T) {
	seed := strings.Repeat("07", 32)
	first, err := run(t, "", "keygen", "--seed", seed)
	require.NoError(t, err)
	second, err := run(t, "", "keygen", "--seed", seed)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var keys keyOutput
	require.NoError(t, json.Unmarshal([]byte(first), &keys))
	assert.Equal(t, "Ed25519Signature2018", string(keys.Algorithm))
	assert.True(t, strings.HasPrefix(keys.Issuer, "data:;base64,"))

	out, err := run(t, "", "keygen", "--algorithm", "EcdsaSecp256k1Signature2019")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &keys))
	assert.Len(t, keys.PublicKey, 66)

	_, err = run(t, "", "keygen", "--seed", "zz")
	assert.Error(t, err)
}

func TestCreateSignVerify(t *testing.T) {
	payload := writeFile(t, "payload.json", `{"name":"The Raven","author":"Edgar Allan Poe"}`)

	claim, err := run(t, "", "create", "--issuer", testIssuer, payload)
	require.NoError(t, err)

	id, err := run(t, claim, "id")
	require.NoError(t, err)
	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(claim), &parsed))
	assert.Equal(t, parsed["id"], id)

	signed, err := run(t, claim, "sign", "--private-key", testPrivateKey)
	require.NoError(t, err)
	assert.Contains(t, signed, `"sec:proof"`)

	out, err := run(t, signed, "verify", "-")
	require.NoError(t, err)
	assert.Equal(t, "valid", out)

	tampered := strings.Replace(signed, "The Raven", "The Crow", 1)
	out, err = run(t, tampered, "verify")
	assert.ErrorIs(t, err, errInvalidClaim)
	assert.Equal(t, "invalid", out)
}

func TestVerifyFlags(t *testing.T) {
	payload := writeFile(t, "payload.json", `{"name":"The Raven","isbn":"9781942099130"}`)
	ctx := writeFile(t, "context.json", `{"isbn":"http://schema.org/is>bn"}`)

	claim, err := run(t, "", "create", "--issuer", testIssuer, "--context", ctx, payload)
	require.NoError(t, err)
	signed, err := run(t, claim, "sign", "--private-key", testPrivateKey)
	require.NoError(t, err)

	tests := []struct {
		name  string
		flags []string
		valid bool
	}{
		{name: "Defaults", valid: true},
		{name: "Issuer as creator", flags: []string{"--require-issuer-as-creator"}, valid: true},
		{name: "Validate RDF", flags: []string{"--validate-rdf"}, valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, signed, append([]string{"verify"}, tt.flags...)...)
			if tt.valid {
				require.NoError(t, err)
				assert.Equal(t, "valid", out)
				return
			}
			assert.ErrorIs(t, err, errInvalidClaim)
			assert.Equal(t, "invalid", out)
		})
	}
}

func TestCreateWithContext(t *testing.T) {
	payload := writeFile(t, "payload.json", `{"name":"The Raven","isbn":"9781942099130"}`)
	ctx := writeFile(t, "context.json", `{"isbn":"http://schema.org/isbn"}`)

	plain, err := run(t, "", "create", "--issuer", testIssuer, payload)
	require.NoError(t, err)
	_, err = run(t, plain, "sign", "--private-key", testPrivateKey)
	assert.ErrorContains(t, err, `The property "isbn" in the input was not defined in the context.`)

	_, err = run(t, plain, "sign", "--private-key", testPrivateKey, "--allow-undefined-terms")
	assert.NoError(t, err)

	extended, err := run(t, "", "create", "--issuer", testIssuer, "--context", ctx, payload)
	require.NoError(t, err)
	_, err = run(t, extended, "sign", "--private-key", testPrivateKey)
	assert.NoError(t, err)
}

func TestCreateErrors(t *testing.T) {
	_, err := run(t, `{}`, "create", "--issuer", testIssuer, "--type", "Book")
	assert.ErrorContains(t, err, "unsupported claim type Book")

	_, err = run(t, `{}`, "create")
	assert.ErrorContains(t, err, "--issuer is required")

	_, err = run(t, `[1]`, "create", "--issuer", testIssuer)
	assert.ErrorContains(t, err, "payload must be a JSON object")
}

func TestConfigFile(t *testing.T) {
	config := writeFile(t, "claimctl.yaml", "log-level: debug\nlog-format: json\n")
	_, err := run(t, "", "--config", config, "issuer", "--private-key", testPrivateKey)
	assert.NoError(t, err)

	bad := writeFile(t, "claimctl.yaml", "log-level: loud\n")
	_, err = run(t, "", "--config", bad, "issuer", "--private-key", testPrivateKey)
	assert.ErrorContains(t, err, "invalid log level")
}
